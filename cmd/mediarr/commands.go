package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/vmunix/mediarr/internal/config"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// loadLocalConfig reads the config for commands that run without the
// daemon. With no --config and nothing discovered, the defaults apply.
func loadLocalConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		found, err := config.Discover()
		if err != nil {
			if os.Getenv(config.EnvConfig) != "" {
				return nil, err
			}
			return config.Default(), nil
		}
		path = found
	}
	return config.LoadWithoutValidation(path)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid library ID: %s", s)
	}
	return id, nil
}
