package utils

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
)

// ConfigDirCandidates lists where app keeps its config, most preferred first:
// $XDG_CONFIG_HOME/app, ~/.config/app, the platform location
// (Application Support on macOS, %APPDATA% on Windows), and finally the
// executable's directory.
func ConfigDirCandidates(app string) []string {
	var dirs []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dirs = append(dirs, filepath.Join(xdg, app))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", app))
		switch runtime.GOOS {
		case "darwin":
			dirs = append(dirs, filepath.Join(home, "Library", "Application Support", app))
		case "windows":
			if appData := os.Getenv("APPDATA"); appData != "" {
				dirs = append(dirs, filepath.Join(appData, app))
			}
		}
	} else {
		log.Warnf("Could not determine home directory: %v", err)
	}
	if execDir, err := GetExecutableDir(); err == nil {
		dirs = append(dirs, execDir)
	}
	return dirs
}

// WritableConfigDir returns the first candidate that exists, or can be
// created, and accepts writes.
func WritableConfigDir(app string) (string, error) {
	candidates := ConfigDirCandidates(app)
	for _, dir := range candidates {
		if CheckDirStatus(dir).Writable {
			return dir, nil
		}
		log.Debugf("Config directory candidate not writable: %s", dir)
	}
	return "", &os.PathError{Op: "config dir", Path: app, Err: os.ErrPermission}
}

// ResolvePath makes a relative path absolute against base. Absolute paths and
// the sqlite ":memory:" name are returned unchanged.
func ResolvePath(base, path string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
