// Package config reads the application settings from viper and the
// environment.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}

// DatabasePath returns the local database location: database.path when set,
// otherwise $HOME/.local/share/buildtrack/buildtrack.db.
func DatabasePath(v Getter) string {
	if p := v.GetString("database.path"); p != "" {
		return ExpandPath(p)
	}
	return ExpandPath("~/.local/share/buildtrack/buildtrack.db")
}

// Getter is the subset of *viper.Viper the loaders read from.
type Getter interface {
	GetString(key string) string
	GetInt(key string) int
	GetDuration(key string) time.Duration
	GetStringSlice(key string) []string
}
