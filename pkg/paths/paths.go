// Package paths centralizes the well-known file locations unpakt uses:
// the installation record inside the install root and the log file under
// the XDG state directory.
package paths

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

const (
	// AppDirName is the directory name for unpakt-specific files
	AppDirName = "unpakt"

	// RecordFileName is the name of the installation record file,
	// written at the top of the installation root.
	RecordFileName = ".installinfo.toml"

	// ConfigFileName is the name of the engine configuration file
	ConfigFileName = "unpakt.toml"

	// LogFileName is the name of the log file
	LogFileName = "unpakt.log"
)

// RecordFile returns the installation record path for an install root
func RecordFile(installRoot string) string {
	return filepath.Join(installRoot, RecordFileName)
}

// LogFile returns the log file path under the XDG state directory
func LogFile() string {
	return filepath.Join(xdg.StateHome, AppDirName, LogFileName)
}

// ConfigFile returns the engine configuration path under the XDG
// config directory.
func ConfigFile() string {
	return filepath.Join(xdg.ConfigHome, AppDirName, ConfigFileName)
}
