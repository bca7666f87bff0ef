package types

import (
	"io/fs"
)

// FS is the filesystem interface required for unpakt operations
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	Lstat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Directory operations
	Mkdir(path string, perm fs.FileMode) error
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Other operations
	Remove(name string) error
	RemoveAll(path string) error
	Rename(oldpath, newpath string) error
}

// ProgressHandler is the callback surface the engine reports through.
// Implementations live outside the core (CLI, GUI, automation); the
// engine only ever calls these three methods.
type ProgressHandler interface {
	// EmitError reports a condition that prevents correct completion.
	EmitError(title, message string)

	// EmitNotification reports a diagnostic that does not stop processing.
	EmitNotification(message string)

	// StopAction asks the driver to halt the overall extraction.
	StopAction()
}
