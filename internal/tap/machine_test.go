package tap

import (
	"sync"
	"testing"
	"time"

	"github.com/ItzR3NO/R3VIB3-MacOS/internal/hotkey"
	"github.com/ItzR3NO/R3VIB3-MacOS/internal/logging"
)

const testCommitDelay = 30 * time.Millisecond

// recorder collects dispatched callbacks. The dispatch func runs callbacks
// inline, which is safe because they only touch the recorder.
type recorder struct {
	mu         sync.Mutex
	starts     []hotkey.Action
	ends       []hotkey.Action
	keystrokes int
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		Start: func(a hotkey.Action) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.starts = append(r.starts, a)
		},
		End: func(a hotkey.Action) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.ends = append(r.ends, a)
		},
		Keystroke: func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.keystrokes++
		},
	}
}

func (r *recorder) counts() (starts, ends int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.starts), len(r.ends)
}

func newTestMachine(t *testing.T, bindings map[hotkey.Action]hotkey.Hotkey) (*Machine, *recorder) {
	t.Helper()
	rec := &recorder{}
	m := NewMachine(bindings, rec.callbacks(), func(fn func()) { fn() }, logging.Nop())
	m.SetCommitDelay(testCommitDelay)
	return m, rec
}

func TestKeyDownIdempotentAgainstRepeat(t *testing.T) {
	m, rec := newTestMachine(t, map[hotkey.Action]hotkey.Hotkey{
		hotkey.ActionHold: {KeyCode: 'D', Modifiers: hotkey.ModCtrl},
	})

	down := Event{Kind: KeyDown, KeyCode: 'D', Mods: hotkey.ModCtrl}
	m.HandleEvent(down)
	m.HandleEvent(down) // OS key-repeat
	m.HandleEvent(down)

	starts, ends := rec.counts()
	if starts != 1 {
		t.Fatalf("expected exactly one start, got %d", starts)
	}
	if ends != 0 {
		t.Fatalf("expected no end before key-up, got %d", ends)
	}

	m.HandleEvent(Event{Kind: KeyUp, KeyCode: 'D', Mods: hotkey.ModCtrl})
	if _, ends = rec.counts(); ends != 1 {
		t.Fatalf("expected exactly one end after key-up, got %d", ends)
	}
}

func TestEdgeTriggeredActionHasNoEnd(t *testing.T) {
	m, rec := newTestMachine(t, map[hotkey.Action]hotkey.Hotkey{
		hotkey.ActionToggle: {KeyCode: 'T', Modifiers: hotkey.ModCmd},
	})

	m.HandleEvent(Event{Kind: KeyDown, KeyCode: 'T', Mods: hotkey.ModCmd})
	m.HandleEvent(Event{Kind: KeyUp, KeyCode: 'T', Mods: hotkey.ModCmd})

	starts, ends := rec.counts()
	if starts != 1 || ends != 0 {
		t.Fatalf("expected one start and zero ends, got %d/%d", starts, ends)
	}

	// A second press fires again: the press state cleared on key-up.
	m.HandleEvent(Event{Kind: KeyDown, KeyCode: 'T', Mods: hotkey.ModCmd})
	if starts, _ = rec.counts(); starts != 2 {
		t.Fatalf("expected second start after release, got %d", starts)
	}
}

func TestFnOnlyCommitAfterDebounce(t *testing.T) {
	m, rec := newTestMachine(t, map[hotkey.Action]hotkey.Hotkey{
		hotkey.ActionToggle: {UsesFn: true, FnOnly: true},
	})

	m.HandleEvent(Event{Kind: FlagsChanged, Mods: hotkey.ModFn})
	time.Sleep(4 * testCommitDelay)

	starts, _ := rec.counts()
	if starts != 1 {
		t.Fatalf("expected exactly one commit, got %d", starts)
	}

	// Held past the interval: no repeat commit.
	time.Sleep(2 * testCommitDelay)
	if starts, _ = rec.counts(); starts != 1 {
		t.Fatalf("commit repeated while Fn held: %d", starts)
	}
}

func TestFnOnlyReleasedBeforeDebounceCommitsNothing(t *testing.T) {
	m, rec := newTestMachine(t, map[hotkey.Action]hotkey.Hotkey{
		hotkey.ActionToggle: {UsesFn: true, FnOnly: true},
	})

	m.HandleEvent(Event{Kind: FlagsChanged, Mods: hotkey.ModFn})
	m.HandleEvent(Event{Kind: FlagsChanged, Mods: 0})
	time.Sleep(4 * testCommitDelay)

	if starts, _ := rec.counts(); starts != 0 {
		t.Fatalf("expected zero commits after early release, got %d", starts)
	}
}

func TestRealKeyDownCancelsPendingFnCommit(t *testing.T) {
	m, rec := newTestMachine(t, map[hotkey.Action]hotkey.Hotkey{
		hotkey.ActionToggle: {UsesFn: true, FnOnly: true},
	})

	m.HandleEvent(Event{Kind: FlagsChanged, Mods: hotkey.ModFn})
	// Unrelated key arrives inside the settle window.
	m.HandleEvent(Event{Kind: KeyDown, KeyCode: 'X', Mods: hotkey.ModFn})
	time.Sleep(4 * testCommitDelay)

	rec.mu.Lock()
	starts, keystrokes := len(rec.starts), rec.keystrokes
	rec.mu.Unlock()
	if starts != 0 {
		t.Fatalf("stale Fn commit fired after real keypress: %d", starts)
	}
	if keystrokes != 1 {
		t.Fatalf("expected keystroke observation, got %d", keystrokes)
	}
}

func TestFnOnlyHoldEndsOnEligibilityLoss(t *testing.T) {
	m, rec := newTestMachine(t, map[hotkey.Action]hotkey.Hotkey{
		hotkey.ActionHold: {UsesFn: true, FnOnly: true},
	})

	m.HandleEvent(Event{Kind: FlagsChanged, Mods: hotkey.ModFn})
	time.Sleep(4 * testCommitDelay)
	m.HandleEvent(Event{Kind: FlagsChanged, Mods: 0})

	starts, ends := rec.counts()
	if starts != 1 || ends != 1 {
		t.Fatalf("expected one start and one end, got %d/%d", starts, ends)
	}
}

func TestFnWithOtherModifierIsNotEligible(t *testing.T) {
	m, rec := newTestMachine(t, map[hotkey.Action]hotkey.Hotkey{
		hotkey.ActionToggle: {UsesFn: true, FnOnly: true},
	})

	m.HandleEvent(Event{Kind: FlagsChanged, Mods: hotkey.ModFn | hotkey.ModShift})
	time.Sleep(4 * testCommitDelay)

	if starts, _ := rec.counts(); starts != 0 {
		t.Fatalf("Fn+Shift must not commit an Fn-only action, got %d", starts)
	}
}

func TestDisabledMachineIgnoresEvents(t *testing.T) {
	m, rec := newTestMachine(t, map[hotkey.Action]hotkey.Hotkey{
		hotkey.ActionToggle: {KeyCode: 'T', Modifiers: hotkey.ModCmd},
	})

	m.Disable()
	m.HandleEvent(Event{Kind: KeyDown, KeyCode: 'T', Mods: hotkey.ModCmd})
	if starts, _ := rec.counts(); starts != 0 {
		t.Fatalf("disabled machine fired: %d", starts)
	}
	if !m.Disabled() {
		t.Fatalf("machine should report disabled")
	}

	m.Reactivate()
	m.HandleEvent(Event{Kind: KeyDown, KeyCode: 'T', Mods: hotkey.ModCmd})
	if starts, _ := rec.counts(); starts != 1 {
		t.Fatalf("reactivated machine did not fire: %d", starts)
	}
}

func TestSetBindingsClearsPressState(t *testing.T) {
	m, rec := newTestMachine(t, map[hotkey.Action]hotkey.Hotkey{
		hotkey.ActionHold: {KeyCode: 'D', Modifiers: hotkey.ModCtrl},
	})

	m.HandleEvent(Event{Kind: KeyDown, KeyCode: 'D', Mods: hotkey.ModCtrl})
	m.SetBindings(map[hotkey.Action]hotkey.Hotkey{
		hotkey.ActionHold: {KeyCode: 'H', Modifiers: hotkey.ModCtrl},
	})

	// Release of the old binding after the swap must not fire an end.
	m.HandleEvent(Event{Kind: KeyUp, KeyCode: 'D', Mods: hotkey.ModCtrl})
	if _, ends := rec.counts(); ends != 0 {
		t.Fatalf("stale binding fired end after rebind: %d", ends)
	}
}
