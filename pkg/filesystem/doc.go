// Package filesystem provides implementations of the types.FS interface.
// NewOS is used in production; NewAfero wraps any afero filesystem and is
// primarily used with MemMapFs in tests.
package filesystem
