package tap

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ItzR3NO/R3VIB3-MacOS/internal/hotkey"
)

// DefaultCommitDelay is the settle window before an Fn-only gesture commits.
// Firing immediately on every Fn assertion causes false triggers while Fn is
// transiently held as part of composing another chord.
const DefaultCommitDelay = 200 * time.Millisecond

// Callbacks receives edge-triggered action notifications. All callbacks are
// marshaled onto the dispatch context before they run; none of them execute
// on the event-delivery goroutine.
type Callbacks struct {
	// Start fires once when an action activates. For edge-triggered actions
	// this is the whole trigger.
	Start func(hotkey.Action)
	// End fires when a hold-type action deactivates.
	End func(hotkey.Action)
	// Keystroke fires on every real key-down, regardless of matching. The
	// orchestrator uses it to clear the paste-ready indicator.
	Keystroke func()
}

// Machine tracks press state per action over a live input event stream and
// emits edge-triggered start/end callbacks. All state is mutated under a
// single lock; events are expected in arrival order from one goroutine, with
// the Fn debounce timer as the only other entry point.
type Machine struct {
	mu          sync.Mutex
	bindings    map[hotkey.Action]hotkey.Hotkey
	pressed     map[hotkey.Action]bool
	fnEligible  bool
	fnTimer     *time.Timer
	fnGen       uint64
	disabled    bool
	commitDelay time.Duration
	dispatch    func(func())
	cb          Callbacks
	log         *zap.SugaredLogger
}

// NewMachine builds a machine. dispatch marshals callbacks onto the
// UI-owning execution context.
func NewMachine(bindings map[hotkey.Action]hotkey.Hotkey, cb Callbacks, dispatch func(func()), log *zap.SugaredLogger) *Machine {
	m := &Machine{
		bindings:    make(map[hotkey.Action]hotkey.Hotkey, len(bindings)),
		pressed:     make(map[hotkey.Action]bool),
		commitDelay: DefaultCommitDelay,
		dispatch:    dispatch,
		cb:          cb,
		log:         log,
	}
	for a, h := range bindings {
		m.bindings[a] = h
	}
	return m
}

// SetBindings replaces all bindings wholesale. Press state and any pending
// Fn commit are cleared so no stale binding can fire through the swap.
func (m *Machine) SetBindings(bindings map[hotkey.Action]hotkey.Hotkey) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelFnCommitLocked()
	m.pressed = make(map[hotkey.Action]bool)
	m.bindings = make(map[hotkey.Action]hotkey.Hotkey, len(bindings))
	for a, h := range bindings {
		m.bindings[a] = h
	}
}

// SetCommitDelay overrides the Fn-only debounce interval. Tests shorten it.
func (m *Machine) SetCommitDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commitDelay = d
}

// Run consumes events until the channel closes.
func (m *Machine) Run(events <-chan Event) {
	for ev := range events {
		m.HandleEvent(ev)
	}
}

// HandleEvent processes one input event.
func (m *Machine) HandleEvent(ev Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disabled {
		return
	}
	switch ev.Kind {
	case KeyDown:
		m.handleKeyDownLocked(ev)
	case KeyUp:
		m.handleKeyUpLocked(ev)
	case FlagsChanged:
		m.handleFlagsLocked(ev)
	}
}

// Disable puts the machine in its terminal disabled state. Used when the
// underlying tap could not be installed; the machine never retries on its
// own — the caller requests Reactivate after permission is confirmed.
func (m *Machine) Disable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disabled = true
	m.cancelFnCommitLocked()
	m.pressed = make(map[hotkey.Action]bool)
	m.fnEligible = false
	m.log.Warnw("event tap disabled")
}

// Disabled reports whether the machine is in its disabled state.
func (m *Machine) Disabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disabled
}

// Reactivate leaves the disabled state. Callers restart the Source
// themselves once permission has been granted.
func (m *Machine) Reactivate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disabled = false
}

func (m *Machine) handleKeyDownLocked(ev Event) {
	// A real key event always outranks an ambiguous Fn-only gesture.
	m.cancelFnCommitLocked()

	if m.cb.Keystroke != nil {
		m.dispatch(m.cb.Keystroke)
	}

	for _, a := range hotkey.Actions {
		h, ok := m.bindings[a]
		if !ok || h.IsZero() || !h.Matches(ev.KeyCode, ev.Mods) {
			continue
		}
		if m.pressed[a] {
			// OS key-repeat; the press edge already fired.
			continue
		}
		m.pressed[a] = true
		m.fireStartLocked(a)
	}
}

func (m *Machine) handleKeyUpLocked(ev Event) {
	for _, a := range hotkey.Actions {
		if !m.pressed[a] {
			continue
		}
		h := m.bindings[a]
		if h.FnOnly || h.KeyCode != ev.KeyCode {
			continue
		}
		delete(m.pressed, a)
		if !a.EdgeTriggered() {
			m.fireEndLocked(a)
		}
	}
}

func (m *Machine) handleFlagsLocked(ev Event) {
	fnOnly := hotkey.IsFnOnlyState(ev.Mods)
	if fnOnly == m.fnEligible {
		return
	}
	m.fnEligible = fnOnly

	if fnOnly {
		if m.hasFnOnlyBindingLocked() {
			m.scheduleFnCommitLocked()
		}
		return
	}

	m.cancelFnCommitLocked()
	for _, a := range hotkey.Actions {
		if !m.pressed[a] || !m.bindings[a].FnOnly {
			continue
		}
		delete(m.pressed, a)
		if !a.EdgeTriggered() {
			m.fireEndLocked(a)
		}
	}
}

func (m *Machine) hasFnOnlyBindingLocked() bool {
	for _, h := range m.bindings {
		if h.FnOnly {
			return true
		}
	}
	return false
}

func (m *Machine) scheduleFnCommitLocked() {
	m.cancelFnCommitLocked()
	gen := m.fnGen
	m.fnTimer = time.AfterFunc(m.commitDelay, func() {
		m.commitFn(gen)
	})
}

// cancelFnCommitLocked guarantees a superseded or cancelled timer can never
// commit: bumping the generation invalidates any timer goroutine that has
// already started firing but not yet taken the lock.
func (m *Machine) cancelFnCommitLocked() {
	m.fnGen++
	if m.fnTimer != nil {
		m.fnTimer.Stop()
		m.fnTimer = nil
	}
}

func (m *Machine) commitFn(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	// Check-then-act: current eligibility must hold at commit time.
	if gen != m.fnGen || !m.fnEligible || m.disabled {
		return
	}
	m.fnTimer = nil
	for _, a := range hotkey.Actions {
		h := m.bindings[a]
		if !h.FnOnly || m.pressed[a] {
			continue
		}
		m.pressed[a] = true
		m.fireStartLocked(a)
	}
}

func (m *Machine) fireStartLocked(a hotkey.Action) {
	m.log.Debugw("action start", "action", a.String())
	if m.cb.Start != nil {
		m.dispatch(func() { m.cb.Start(a) })
	}
}

func (m *Machine) fireEndLocked(a hotkey.Action) {
	m.log.Debugw("action end", "action", a.String())
	if m.cb.End != nil {
		m.dispatch(func() { m.cb.End(a) })
	}
}
