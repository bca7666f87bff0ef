// Package unpack implements the extraction side of the engine: the
// unpack session with its cooperative cancellation poll points, the
// directory materializer and the payload extraction driver.
package unpack

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/unpakt/unpakt/pkg/events"
	"github.com/unpakt/unpakt/pkg/interrupt"
	"github.com/unpakt/unpakt/pkg/logging"
	"github.com/unpakt/unpakt/pkg/types"
)

// Options configures a session. FS, Registry and Handler are required;
// Listeners may be empty.
type Options struct {
	FS          types.FS
	Registry    *interrupt.Registry
	Handler     types.ProgressHandler
	Listeners   []events.Listener
	InstallRoot string
}

// Session is one unpack run. It is owned by the driver that created it
// and registered in the interrupt registry for the duration of Extract.
// A session is not safe for concurrent use; each session runs on its
// own goroutine.
type Session struct {
	id       string
	fs       types.FS
	registry *interrupt.Registry
	handler  types.ProgressHandler
	events   *events.Dispatcher
	mat      *Materializer
	root     string
	logger   zerolog.Logger

	failed atomic.Bool

	mu           sync.Mutex
	installed    []string
	installedSet map[string]struct{}
}

// NewSession creates a session for the given installation root
func NewSession(opts Options) *Session {
	s := &Session{
		id:           uuid.New().String(),
		fs:           opts.FS,
		registry:     opts.Registry,
		handler:      opts.Handler,
		root:         opts.InstallRoot,
		installedSet: make(map[string]struct{}),
	}
	s.logger = logging.GetLogger("unpack").With().Str("session", s.id).Logger()
	s.events = events.NewDispatcher(opts.Listeners, func() bool {
		return opts.Registry.ShouldStop(s)
	})
	s.mat = &Materializer{FS: opts.FS, Events: s.events, Handler: opts.Handler}
	return s
}

// SessionID returns the unique session identity
func (s *Session) SessionID() string {
	return s.id
}

// MarkFailed records that the session's final result is failure. Called
// by the interrupt registry when the session observes cancellation, and
// by the session itself on fatal extraction errors.
func (s *Session) MarkFailed() {
	s.failed.Store(true)
}

// Result reports whether the run completed successfully
func (s *Session) Result() bool {
	return !s.failed.Load()
}

// InstalledFiles returns the absolute paths written by this session, in
// extraction order. The slice feeds reconciliation, which must never
// delete files of the current run.
func (s *Session) InstalledFiles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.installed))
	copy(out, s.installed)
	return out
}

func (s *Session) addInstalled(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.installedSet[path]; dup {
		return
	}
	s.installedSet[path] = struct{}{}
	s.installed = append(s.installed, path)
}
