package unpack

import (
	"path/filepath"

	"github.com/unpakt/unpakt/pkg/errors"
	"github.com/unpakt/unpakt/pkg/events"
	"github.com/unpakt/unpakt/pkg/types"
)

// Materializer recursively creates directories, bracketing each created
// level with before/after directory events. Notification order is
// pre-order: ancestors before the target; the after event for a level
// always follows its own before event but may be skipped when the
// recursion aborts, so listeners must treat it as best-effort.
type Materializer struct {
	FS      types.FS
	Events  *events.Dispatcher
	Handler types.ProgressHandler
}

// MakeDirs ensures target and all missing ancestors exist. On
// unrecoverable failure it reports the error through the handler,
// requests a halt of the overall extraction and returns a DIR_CREATE
// error.
func (m *Materializer) MakeDirs(target string, pf types.PackFile) error {
	if m.makeDirs(target, pf) {
		return nil
	}
	m.Handler.EmitError("Error creating directories", "Could not create directory\n"+target)
	m.Handler.StopAction()
	return errors.Newf(errors.ErrDirCreate, "could not create directory %s", target)
}

func (m *Materializer) makeDirs(target string, pf types.PackFile) bool {
	if target == "" {
		return false
	}
	if _, err := m.FS.Stat(target); err == nil {
		return true
	}

	parent := filepath.Dir(target)
	if parent == target {
		// hit the filesystem root without finding an existing ancestor
		return false
	}

	// The before event fires only when the parent already exists: in a
	// deep creation the innermost missing ancestor is announced first.
	if _, err := m.FS.Stat(parent); err == nil {
		m.Events.Dispatch(events.BeforeDirEvent{Dir: target, File: pf})
	}

	resolved := true
	if err := m.FS.Mkdir(target, 0755); err != nil {
		m.makeDirs(parent, pf)
		if err := m.FS.Mkdir(target, 0755); err != nil {
			resolved = false
		}
	}

	dir := target
	if !resolved {
		dir = ""
	}
	m.Events.Dispatch(events.AfterDirEvent{Dir: dir, File: pf})
	return resolved
}
