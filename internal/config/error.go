package config

import (
	"fmt"
	"strings"
)

// ConfigError collects every problem found while loading one file so a
// single run reports all of them.
type ConfigError struct {
	Path    string
	Missing []string // ${VAR} references with no value in the environment
	Errors  []string // "field: problem" validation messages
}

func (e *ConfigError) Error() string {
	if !e.HasErrors() {
		return ""
	}
	var b strings.Builder
	if e.Path != "" {
		fmt.Fprintf(&b, "config %s:\n", e.Path)
	}
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, "missing environment variables: %s\n", strings.Join(e.Missing, ", "))
	}
	if len(e.Errors) > 0 {
		b.WriteString("validation failed:\n")
		for _, msg := range e.Errors {
			fmt.Fprintf(&b, "  - %s\n", msg)
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// HasErrors reports whether anything was recorded.
func (e *ConfigError) HasErrors() bool {
	return len(e.Missing)+len(e.Errors) > 0
}
