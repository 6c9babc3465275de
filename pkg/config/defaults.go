package config

import (
	"os"
	"path/filepath"
)

// DefaultInstance is the instance used when none is requested or the
// requested one is unknown.
const DefaultInstance = "default"

// DefaultPaths returns the configuration file search list, first
// readable file wins.
func DefaultPaths() []string {
	paths := []string{"sipcli.toml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".sipcli.toml"))
	}
	return append(paths, "/etc/sipcli/sipcli.toml")
}

func defaultValues() map[string]string {
	historyFile := ".sipcli.history"
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, ".sipcli.history")
	}

	return map[string]string{
		// shell settings
		"prompt_name":       "sipctl",
		"prompt_intro":      "Welcome to the SIP proxy command line interface!",
		"history_file":      historyFile,
		"history_file_size": "1000",
		"log_level":         "INFO",
		"modules_dir":       "/usr/share/sipcli/modules",

		// management interface
		"comm_type":       "http",
		"url":             "http://127.0.0.1:8888/mi",
		"datagram_target": "127.0.0.1:8080",
	}
}
