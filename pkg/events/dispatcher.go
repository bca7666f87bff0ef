package events

// Dispatcher routes events to an ordered list of listeners. For file
// and directory events only, the pending-cancellation check runs before
// each listener call and remaining listeners are skipped once it
// reports true. Pack and pack-set events always reach every listener:
// pack-level bookkeeping completes once started.
type Dispatcher struct {
	listeners  []Listener
	shouldStop func() bool
}

// NewDispatcher creates a dispatcher over listeners. shouldStop is the
// session's non-mutating cancellation check; nil means never stop.
func NewDispatcher(listeners []Listener, shouldStop func() bool) *Dispatcher {
	if shouldStop == nil {
		shouldStop = func() bool { return false }
	}
	return &Dispatcher{listeners: listeners, shouldStop: shouldStop}
}

// Dispatch delivers one event to the listeners in registration order
func (d *Dispatcher) Dispatch(ev Event) {
	switch e := ev.(type) {
	case BeforeFileEvent:
		for _, l := range d.listeners {
			if d.shouldStop() {
				return
			}
			l.BeforeFile(e.File)
		}
	case AfterFileEvent:
		for _, l := range d.listeners {
			if d.shouldStop() {
				return
			}
			l.AfterFile(e.File)
		}
	case BeforeDirEvent:
		for _, l := range d.listeners {
			if d.shouldStop() {
				return
			}
			l.BeforeDir(e.Dir, e.File)
		}
	case AfterDirEvent:
		for _, l := range d.listeners {
			if d.shouldStop() {
				return
			}
			l.AfterDir(e.Dir, e.File)
		}
	case BeforePackEvent:
		for _, l := range d.listeners {
			l.BeforePack(e.Pack, e.Index)
		}
	case AfterPackEvent:
		for _, l := range d.listeners {
			l.AfterPack(e.Pack, e.Index)
		}
	case BeforePacksEvent:
		for _, l := range d.listeners {
			l.BeforePacks(e.Count)
		}
	case AfterPacksEvent:
		for _, l := range d.listeners {
			l.AfterPacks()
		}
	}
}
