// Package paths resolves configuration, data and export directory
// locations.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the per-user directories.
const AppName = "notereel"

// ExportDirName is the export directory below the data directory.
const ExportDirName = "exports"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "NOTEREEL_CONFIG_DIR"
	EnvDataDir   = "NOTEREEL_DATA_DIR"
	EnvExportDir = "NOTEREEL_EXPORT_DIR"
)

// platform is swapped in tests.
var platform = struct {
	goos          string
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	goos:          runtime.GOOS,
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/notereel (fallback ~/.config/notereel)
// macOS:   ~/Library/Application Support/notereel
// Windows: %APPDATA%/notereel
func DefaultConfigDir() (string, error) {
	return userDir("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the platform-specific default data directory.
// Outside Linux it is the configuration directory.
//
// Linux:   $XDG_DATA_HOME/notereel (fallback ~/.local/share/notereel)
func DefaultDataDir() (string, error) {
	return userDir("XDG_DATA_HOME", ".local", "share")
}

// userDir applies the XDG rules on Linux and os.UserConfigDir elsewhere.
func userDir(xdgEnv string, homeRel ...string) (string, error) {
	if platform.goos != "linux" {
		dir, err := platform.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppName), nil
	}
	if xdg := os.Getenv(xdgEnv); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := platform.homeDir()
	if err != nil {
		return "", err
	}
	parts := append([]string{home}, homeRel...)
	return filepath.Join(append(parts, AppName)...), nil
}

// ResolveConfigDir returns the configuration directory:
// flag > NOTEREEL_CONFIG_DIR > DefaultConfigDir.
func ResolveConfigDir(flag string) (string, error) {
	return firstOf(DefaultConfigDir, flag, os.Getenv(EnvConfigDir))
}

// ResolveDataDir returns the data directory:
// flag > data_dir in config.yaml > NOTEREEL_DATA_DIR > DefaultDataDir.
func ResolveDataDir(flag, configValue string) (string, error) {
	return firstOf(DefaultDataDir, flag, configValue, os.Getenv(EnvDataDir))
}

// ResolveExportDir returns where exports are written:
// export_dir in config.yaml > NOTEREEL_EXPORT_DIR > <dataDir>/exports.
func ResolveExportDir(configValue, dataDir string) (string, error) {
	return firstOf(func() (string, error) {
		return filepath.Join(dataDir, ExportDirName), nil
	}, configValue, os.Getenv(EnvExportDir))
}

// firstOf returns the first non-empty candidate as an absolute path, or
// the fallback.
func firstOf(fallback func() (string, error), candidates ...string) (string, error) {
	for _, c := range candidates {
		if c != "" {
			return filepath.Abs(c)
		}
	}
	return fallback()
}
