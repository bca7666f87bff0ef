package interrupt

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSession satisfies Session without dragging in the unpack package
type fakeSession struct {
	id     string
	mu     sync.Mutex
	failed bool
}

func newFakeSession(id string) *fakeSession {
	return &fakeSession{id: id}
}

func (s *fakeSession) SessionID() string { return s.id }

func (s *fakeSession) MarkFailed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed = true
}

func (s *fakeSession) Failed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failed
}

// withFakeClock rewires the registry's sleep so that each poll advances
// a synthetic clock and runs a callback, keeping convergence tests
// deterministic.
func withFakeClock(r *Registry, onPoll func()) {
	var elapsed time.Duration
	base := time.Now()
	r.now = func() time.Time { return base.Add(elapsed) }
	r.sleep = func(d time.Duration) {
		elapsed += d
		if onPoll != nil {
			onPoll()
		}
	}
}

func TestRegisterStates(t *testing.T) {
	r := NewRegistry()
	s := newFakeSession("s1")

	_, ok := r.State(s)
	assert.False(t, ok)

	r.Register(s)
	st, ok := r.State(s)
	require.True(t, ok)
	assert.Equal(t, StateAlive, st)

	r.Unregister(s)
	_, ok = r.State(s)
	assert.False(t, ok)

	// unregistering twice is a no-op
	r.Unregister(s)
	assert.Equal(t, 0, r.Len())
}

func TestReRegisterResetsState(t *testing.T) {
	r := NewRegistry()
	s := newFakeSession("s1")

	r.Register(s)
	r.BroadcastInterrupt()
	st, _ := r.State(s)
	require.Equal(t, StateInterruptRequested, st)

	r.Register(s)
	st, _ = r.State(s)
	assert.Equal(t, StateAlive, st)
}

func TestBroadcastInterrupt(t *testing.T) {
	r := NewRegistry()
	s1 := newFakeSession("s1")
	s2 := newFakeSession("s2")
	r.Register(s1)
	r.Register(s2)

	assert.False(t, r.InterruptDesired())
	r.BroadcastInterrupt()
	assert.True(t, r.InterruptDesired())

	for _, s := range []*fakeSession{s1, s2} {
		st, _ := r.State(s)
		assert.Equal(t, StateInterruptRequested, st)
	}
}

func TestBroadcastLeavesInterruptedAlone(t *testing.T) {
	r := NewRegistry()
	s := newFakeSession("s1")
	r.Register(s)
	r.BroadcastInterrupt()
	require.True(t, r.PollSelf(s))

	r.BroadcastInterrupt()
	st, _ := r.State(s)
	assert.Equal(t, StateInterrupted, st)
}

func TestPollSelf(t *testing.T) {
	r := NewRegistry()
	s := newFakeSession("s1")
	r.Register(s)

	// alive sessions keep running
	assert.False(t, r.PollSelf(s))
	assert.False(t, s.Failed())

	r.BroadcastInterrupt()
	assert.True(t, r.PollSelf(s))
	assert.True(t, s.Failed())
	st, _ := r.State(s)
	assert.Equal(t, StateInterrupted, st)

	// idempotent
	assert.True(t, r.PollSelf(s))

	// unregistered sessions never report pending cancellation
	other := newFakeSession("s2")
	assert.False(t, r.PollSelf(other))
}

func TestShouldStopDoesNotMutate(t *testing.T) {
	r := NewRegistry()
	s := newFakeSession("s1")
	r.Register(s)

	assert.False(t, r.ShouldStop(s))

	r.BroadcastInterrupt()
	assert.True(t, r.ShouldStop(s))

	// state stays InterruptRequested until the session polls itself
	st, _ := r.State(s)
	assert.Equal(t, StateInterruptRequested, st)
	assert.False(t, s.Failed())
}

func TestInterruptAllConvergence(t *testing.T) {
	r := NewRegistry()

	sessions := make([]*fakeSession, 3)
	for i := range sessions {
		sessions[i] = newFakeSession(fmt.Sprintf("s%d", i))
		r.Register(sessions[i])
	}

	// each poll tick, one more session observes its cancellation
	next := 0
	withFakeClock(r, func() {
		if next < len(sessions) {
			r.PollSelf(sessions[next])
			next++
		}
	})

	assert.True(t, r.InterruptAll(2*time.Second))

	for _, s := range sessions {
		st, ok := r.State(s)
		require.True(t, ok)
		assert.Equal(t, StateInterrupted, st)
		assert.True(t, s.Failed())
	}
}

func TestInterruptAllTimesOut(t *testing.T) {
	r := NewRegistry()
	s := newFakeSession("stuck")
	r.Register(s)

	withFakeClock(r, nil)

	// true even though the session never converged: the request stands
	assert.True(t, r.InterruptAll(500*time.Millisecond))
	st, _ := r.State(s)
	assert.Equal(t, StateInterruptRequested, st)
}

func TestInterruptAllEmptyRegistry(t *testing.T) {
	r := NewRegistry()
	withFakeClock(r, nil)
	assert.True(t, r.InterruptAll(time.Second))
}

func TestDiscardInterrupt(t *testing.T) {
	r := NewRegistry()
	s := newFakeSession("s1")
	r.Register(s)
	withFakeClock(r, nil)

	r.SetDiscardInterrupt(true)
	assert.False(t, r.InterruptAll(time.Second))

	// no state was touched
	st, _ := r.State(s)
	assert.Equal(t, StateAlive, st)
	assert.False(t, r.InterruptDesired())

	// enabling discard clears a previously desired interrupt
	r.SetDiscardInterrupt(false)
	r.BroadcastInterrupt()
	require.True(t, r.InterruptDesired())
	r.SetDiscardInterrupt(true)
	assert.False(t, r.InterruptDesired())
}

func TestDefaultIsShared(t *testing.T) {
	assert.Same(t, Default(), Default())
}
