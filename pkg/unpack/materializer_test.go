package unpack

import (
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unpakt/unpakt/pkg/errors"
	"github.com/unpakt/unpakt/pkg/events"
	"github.com/unpakt/unpakt/pkg/testutil"
	"github.com/unpakt/unpakt/pkg/types"
)

// strictMkdirFS makes Mkdir behave like a real filesystem: creating a
// directory under a missing parent fails. MemMapFs is lenient there.
type strictMkdirFS struct {
	types.FS
}

func (s *strictMkdirFS) Mkdir(path string, perm fs.FileMode) error {
	if _, err := s.FS.Stat(filepath.Dir(path)); err != nil {
		return &fs.PathError{Op: "mkdir", Path: path, Err: fs.ErrNotExist}
	}
	return s.FS.Mkdir(path, perm)
}

// failingMkdirFS refuses all directory creation
type failingMkdirFS struct {
	types.FS
}

func (f *failingMkdirFS) Mkdir(path string, perm fs.FileMode) error {
	return &fs.PathError{Op: "mkdir", Path: path, Err: fs.ErrPermission}
}

func newMaterializer(fsys types.FS) (*Materializer, *testutil.RecordingListener, *testutil.RecordingHandler) {
	listener := &testutil.RecordingListener{}
	handler := &testutil.RecordingHandler{}
	dispatcher := events.NewDispatcher([]events.Listener{listener}, nil)
	return &Materializer{FS: fsys, Events: dispatcher, Handler: handler}, listener, handler
}

func TestMakeDirsExistingTarget(t *testing.T) {
	fsys := testutil.NewMemoryFS()
	require.NoError(t, fsys.MkdirAll("/install/data", 0755))

	m, listener, handler := newMaterializer(fsys)

	err := m.MakeDirs("/install/data", types.PackFile{})
	assert.NoError(t, err)
	assert.Empty(t, listener.Events)
	assert.False(t, handler.Stopped)
}

func TestMakeDirsSingleLevel(t *testing.T) {
	fsys := testutil.NewMemoryFS()
	require.NoError(t, fsys.MkdirAll("/install", 0755))

	m, listener, _ := newMaterializer(&strictMkdirFS{FS: fsys})

	err := m.MakeDirs("/install/data", types.PackFile{})
	require.NoError(t, err)
	assert.True(t, testutil.Exists(fsys, "/install/data"))
	assert.Equal(t, []string{
		"before-dir:/install/data",
		"after-dir:/install/data",
	}, listener.Events)
}

func TestMakeDirsCreatesAncestorsPreOrder(t *testing.T) {
	fsys := testutil.NewMemoryFS()
	require.NoError(t, fsys.MkdirAll("/install", 0755))

	m, listener, handler := newMaterializer(&strictMkdirFS{FS: fsys})

	err := m.MakeDirs("/install/a/b", types.PackFile{})
	require.NoError(t, err)
	assert.True(t, testutil.Exists(fsys, "/install/a/b"))

	// the innermost missing ancestor gets its before event (its parent
	// existed); after events run ancestors-first
	assert.Equal(t, []string{
		"before-dir:/install/a",
		"after-dir:/install/a",
		"after-dir:/install/a/b",
	}, listener.Events)
	assert.False(t, handler.Stopped)
}

func TestMakeDirsFailureStopsAction(t *testing.T) {
	fsys := testutil.NewMemoryFS()
	require.NoError(t, fsys.MkdirAll("/install", 0755))

	m, listener, handler := newMaterializer(&failingMkdirFS{FS: fsys})

	err := m.MakeDirs("/install/data", types.PackFile{})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrDirCreate))

	assert.True(t, handler.Stopped)
	require.Len(t, handler.Errors, 1)
	assert.Contains(t, handler.Errors[0], "/install/data")

	// the after event still fired, with an empty directory reference
	assert.Contains(t, listener.Events, "after-dir:")
}
