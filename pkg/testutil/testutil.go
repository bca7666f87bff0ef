// Package testutil provides shared test doubles: an in-memory
// filesystem, a recording progress handler and a recording listener.
package testutil

import (
	"io/fs"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/unpakt/unpakt/pkg/filesystem"
	"github.com/unpakt/unpakt/pkg/types"
)

// NewMemoryFS returns an empty in-memory types.FS
func NewMemoryFS() types.FS {
	return filesystem.NewAfero(afero.NewMemMapFs())
}

// WriteFiles populates fs with the given path->content entries,
// creating parent directories as needed.
func WriteFiles(t *testing.T, fsys types.FS, files map[string]string) {
	t.Helper()
	for path, content := range files {
		dir := parentDir(path)
		if dir != "" {
			require.NoError(t, fsys.MkdirAll(dir, 0755))
		}
		require.NoError(t, fsys.WriteFile(path, []byte(content), 0644))
	}
}

func parentDir(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return ""
}

// Exists reports whether path exists in fsys
func Exists(fsys types.FS, path string) bool {
	_, err := fsys.Stat(path)
	return err == nil
}

// RecordingHandler captures every progress callback for assertions
type RecordingHandler struct {
	mu            sync.Mutex
	Errors        []string
	Notifications []string
	Stopped       bool
}

func (h *RecordingHandler) EmitError(title, message string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Errors = append(h.Errors, title+": "+message)
}

func (h *RecordingHandler) EmitNotification(message string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Notifications = append(h.Notifications, message)
}

func (h *RecordingHandler) StopAction() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Stopped = true
}

// RecordingListener records the order of lifecycle checkpoints as
// "kind:payload" strings.
type RecordingListener struct {
	mu     sync.Mutex
	Events []string
}

func (l *RecordingListener) record(ev string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Events = append(l.Events, ev)
}

func (l *RecordingListener) BeforeFile(f types.PackFile) { l.record("before-file:" + f.TargetPath) }
func (l *RecordingListener) AfterFile(f types.PackFile)  { l.record("after-file:" + f.TargetPath) }
func (l *RecordingListener) BeforeDir(dir string, f types.PackFile) {
	l.record("before-dir:" + dir)
}
func (l *RecordingListener) AfterDir(dir string, f types.PackFile) {
	l.record("after-dir:" + dir)
}
func (l *RecordingListener) BeforePack(p types.Pack, index int) { l.record("before-pack:" + p.Name) }
func (l *RecordingListener) AfterPack(p types.Pack, index int)  { l.record("after-pack:" + p.Name) }
func (l *RecordingListener) BeforePacks(count int)              { l.record("before-packs") }
func (l *RecordingListener) AfterPacks()                        { l.record("after-packs") }

// FailingFS wraps a types.FS and fails ReadDir for one path, used to
// exercise scan-abort behavior.
type FailingFS struct {
	types.FS
	FailReadDir string
}

func (f *FailingFS) ReadDir(name string) ([]fs.DirEntry, error) {
	if name == f.FailReadDir {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrPermission}
	}
	return f.FS.ReadDir(name)
}
