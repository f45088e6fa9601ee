// Package xdg resolves XDG Base Directory paths for zentaoctl.
// Configuration lives under the config dir; the last query, the audit log
// and other runtime state live under the state dir.
package xdg

import (
	"os"
	"path/filepath"
)

// AppName is the directory name used under every XDG base.
const AppName = "zentaoctl"

// ConfigDir returns the config directory, creating it with 0700 if missing.
// It falls back to ~/.config/zentaoctl when XDG_CONFIG_HOME is unset.
func ConfigDir() (string, error) {
	return ensure("XDG_CONFIG_HOME", ".config")
}

// StateDir returns the state directory, creating it with 0700 if missing.
// It falls back to ~/.local/state/zentaoctl when XDG_STATE_HOME is unset.
func StateDir() (string, error) {
	return ensure("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

func ensure(env, homeRel string) (string, error) {
	base := os.Getenv(env)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, homeRel)
	}
	dir := filepath.Join(base, AppName)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}
