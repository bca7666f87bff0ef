package types

import "path/filepath"

// Pack represents one installable unit of the payload
type Pack struct {
	// Name is the pack name (usually the payload directory name)
	Name string `toml:"name" koanf:"name"`

	// Description is an optional human-readable summary
	Description string `toml:"description,omitempty" koanf:"description"`

	// Required marks packs the operator cannot deselect
	Required bool `toml:"required,omitempty" koanf:"required"`
}

// PackFile describes a single file of a pack during extraction.
// TargetPath is always absolute once the driver has resolved it
// against the installation root.
type PackFile struct {
	// TargetPath is the absolute destination path of the file
	TargetPath string

	// RelativePath is the path of the file inside its pack
	RelativePath string

	// Pack is the pack this file belongs to
	Pack Pack

	// Size is the payload size in bytes
	Size int64
}

// Dir returns the directory the file will be written into
func (f PackFile) Dir() string {
	return filepath.Dir(f.TargetPath)
}

// UpdateCheck is one reconciliation rule: files under the installation
// root matching an include pattern and no exclude pattern are candidates
// for stale-file deletion. Patterns use ant fileset syntax and may
// contain ${name} variable references.
type UpdateCheck struct {
	Includes []string `toml:"includes" koanf:"includes"`
	Excludes []string `toml:"excludes" koanf:"excludes"`
}
