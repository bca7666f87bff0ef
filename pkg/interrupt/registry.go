// Package interrupt implements the process-wide registry that lets any
// number of concurrently running unpack sessions be cancelled as a
// group. Cancellation is cooperative: broadcasting only flips per-session
// flags, and each session observes them at its own poll points.
package interrupt

import (
	"sync"
	"time"

	"github.com/unpakt/unpakt/pkg/logging"
)

// State is the cancellation state of a registered session. States only
// move forward Alive -> InterruptRequested -> Interrupted, never
// backward, except a full reset when a session re-registers.
type State string

const (
	StateAlive              State = "alive"
	StateInterruptRequested State = "interrupt-requested"
	StateInterrupted        State = "interrupted"
)

// DefaultPollInterval is the sleep between convergence checks in
// InterruptAll.
const DefaultPollInterval = 100 * time.Millisecond

// Session is the contract a registered session must satisfy. A session
// is identified by its pointer identity; MarkFailed is invoked under the
// registry lock when the session observes its own cancellation.
type Session interface {
	SessionID() string
	MarkFailed()
}

// Registry tracks every executing session and its cancellation state.
// A single mutex guards all registry state; every operation holds it
// for its full duration.
type Registry struct {
	mu               sync.Mutex
	sessions         map[Session]State
	interruptDesired bool
	discardInterrupt bool

	// injectable for tests
	pollInterval time.Duration
	sleep        func(time.Duration)
	now          func() time.Time
}

// NewRegistry creates an empty registry with the default poll interval
func NewRegistry() *Registry {
	return &Registry{
		sessions:     make(map[Session]State),
		pollInterval: DefaultPollInterval,
		sleep:        time.Sleep,
		now:          time.Now,
	}
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the shared process-wide registry. Sessions take a
// registry at construction; Default is only the composition-root
// convenience for "one cancel button reaches everything".
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// Register inserts the session with state Alive. Re-registering an
// existing session resets it to Alive.
func (r *Registry) Register(s Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s] = StateAlive
}

// Unregister removes the session. No-op if absent.
func (r *Registry) Unregister(s Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, s)
}

// State returns the session's current state and whether it is registered
func (r *Registry) State(s Session) (State, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.sessions[s]
	return st, ok
}

// Len returns the number of registered sessions
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// BroadcastInterrupt moves every Alive session to InterruptRequested and
// sets the interrupt-desired flag. It does not block: the transition to
// Interrupted is performed by the sessions themselves at their poll
// points.
func (r *Registry) BroadcastInterrupt() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broadcastLocked()
}

func (r *Registry) broadcastLocked() {
	for s, st := range r.sessions {
		if st == StateAlive {
			r.sessions[s] = StateInterruptRequested
		}
	}
	// The flag is process-wide so collaborators outside the registry
	// can detect a pending interrupt without holding a session.
	r.interruptDesired = true
}

// InterruptAll requests cancellation of every registered session and
// waits, polling, until all of them reached Interrupted or the timeout
// elapsed. It returns false immediately when the discard-interrupt flag
// is set, true otherwise — including on timeout. True means
// "cancellation was requested", not "all sessions actually stopped".
func (r *Registry) InterruptAll(timeout time.Duration) bool {
	logger := logging.GetLogger("interrupt")

	start := r.now()
	if r.DiscardInterrupt() {
		logger.Debug().Msg("Interrupt discarded by operator opt-out")
		return false
	}

	r.BroadcastInterrupt()

	for !r.allInterrupted() {
		if r.now().Sub(start) > timeout {
			logger.Warn().Dur("timeout", timeout).Msg("Interrupt convergence wait timed out")
			return true
		}
		r.sleep(r.pollInterval)
	}
	logger.Debug().Msg("All sessions interrupted")
	return true
}

func (r *Registry) allInterrupted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, st := range r.sessions {
		if st != StateInterrupted {
			return false
		}
	}
	return true
}

// PollSelf is called from within a session's own execution between
// units of work. If cancellation is pending for the session it flips
// the state to Interrupted, marks the session failed and returns true;
// the caller must unwind and stop. Idempotent.
func (r *Registry) PollSelf(s Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.sessions[s]
	if ok && (st == StateInterruptRequested || st == StateInterrupted) {
		r.sessions[s] = StateInterrupted
		s.MarkFailed()
		return true
	}
	return false
}

// ShouldStop is the non-mutating equivalent of PollSelf, used by the
// event dispatcher to short-circuit listener iteration without flipping
// state twice.
func (r *Registry) ShouldStop(s Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.sessions[s]
	return ok && (st == StateInterruptRequested || st == StateInterrupted)
}

// SetDiscardInterrupt toggles the operator opt-out. Setting it true
// also clears the interrupt-desired flag.
func (r *Registry) SetDiscardInterrupt(discard bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.discardInterrupt = discard
	if discard {
		r.interruptDesired = false
	}
}

// DiscardInterrupt returns whether interrupt requests are discarded
func (r *Registry) DiscardInterrupt() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.discardInterrupt
}

// InterruptDesired reports whether a broadcast has been issued since the
// last discard reset.
func (r *Registry) InterruptDesired() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.interruptDesired
}
