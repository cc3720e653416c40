// Package paths resolves where socialdb looks for its configuration.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// Names used under the configuration directory.
const (
	AppDirName     = "socialdb"
	ConfigFileName = "config.yaml"
	EnvFileName    = ".env"
)

// EnvConfigDir overrides the configuration directory.
const EnvConfigDir = "SOCIALDB_CONFIG_DIR"

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/socialdb (fallback ~/.config/socialdb)
// macOS:   ~/Library/Application Support/socialdb
// Windows: %APPDATA%/socialdb
func DefaultConfigDir() (string, error) {
	if runtime.GOOS == "linux" {
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, AppDirName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", AppDirName), nil
	}
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppDirName), nil
}

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > SOCIALDB_CONFIG_DIR env > DefaultConfigDir().
// Explicit values are made absolute.
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ConfigFile returns the path of config.yaml inside dir.
func ConfigFile(dir string) string {
	return filepath.Join(dir, ConfigFileName)
}

// EnvFiles returns the .env files to load, working directory first so that
// it takes precedence over the one in the configuration directory.
func EnvFiles(dir string) []string {
	return []string{EnvFileName, filepath.Join(dir, EnvFileName)}
}
