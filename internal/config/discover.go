package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvConfig names the variable that overrides config discovery.
const EnvConfig = "MEDIARR_CONFIG"

// DefaultPath returns the XDG-compliant default config path.
func DefaultPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "./config.toml"
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "mediarr", "config.toml")
}

// Discover finds the config file using the standard search order:
//  1. MEDIARR_CONFIG environment variable
//  2. ./config.toml
//  3. $XDG_CONFIG_HOME/mediarr/config.toml
//  4. /etc/mediarr/config.toml
func Discover() (string, error) {
	if envPath := os.Getenv(EnvConfig); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("%s=%s: %w", EnvConfig, envPath, err)
		}
		return envPath, nil
	}

	paths := []string{
		"./config.toml",
		DefaultPath(),
		"/etc/mediarr/config.toml",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("config not found, checked: %s", strings.Join(paths, ", "))
}
