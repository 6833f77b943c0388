package tap

import (
	"fmt"

	hook "github.com/robotn/gohook"
)

// HookSource adapts the robotn/gohook global input hook to the Source
// interface. This is the only place the process touches the OS-level tap;
// everything above it consumes normalized Events.
//
// gohook delivers modifier keys as ordinary key events; the source folds
// them into a running modifier mask and re-emits them as FlagsChanged so the
// state machine sees modifier-state transitions, never modifier keystrokes.
type HookSource struct {
	mods uint32
	out  chan Event
}

// NewHookSource creates an uninstalled source.
func NewHookSource() *HookSource {
	return &HookSource{}
}

// Start installs the global hook and begins translating events. The returned
// channel is closed when the hook shuts down.
func (s *HookSource) Start() (<-chan Event, error) {
	raw := hook.Start()
	if raw == nil {
		return nil, fmt.Errorf("global input hook could not be installed")
	}
	s.out = make(chan Event, 64)
	go s.translate(raw)
	return s.out, nil
}

// Stop uninstalls the hook. The event channel closes once the underlying
// stream drains.
func (s *HookSource) Stop() {
	hook.End()
}

func (s *HookSource) translate(raw chan hook.Event) {
	defer close(s.out)
	for ev := range raw {
		switch ev.Kind {
		case hook.KeyDown, hook.KeyHold:
			if bit, ok := modifierBit(ev.Rawcode); ok {
				if ev.Kind == hook.KeyHold {
					continue
				}
				if s.mods&bit != 0 {
					continue
				}
				s.mods |= bit
				s.out <- Event{Kind: FlagsChanged, Mods: s.mods}
				continue
			}
			// KeyHold is the OS repeat; forward it as KeyDown, the machine's
			// press-state idempotence absorbs it.
			s.out <- Event{Kind: KeyDown, KeyCode: normalizeKey(ev.Rawcode), Mods: s.mods}
		case hook.KeyUp:
			if bit, ok := modifierBit(ev.Rawcode); ok {
				if s.mods&bit == 0 {
					continue
				}
				s.mods &^= bit
				s.out <- Event{Kind: FlagsChanged, Mods: s.mods}
				continue
			}
			s.out <- Event{Kind: KeyUp, KeyCode: normalizeKey(ev.Rawcode), Mods: s.mods}
		}
	}
}
