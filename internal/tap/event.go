package tap

// EventKind classifies a low-level input event.
type EventKind int

const (
	// KeyDown is a physical key press of a non-modifier key.
	KeyDown EventKind = iota
	// KeyUp is the matching release.
	KeyUp
	// FlagsChanged reports a change in the asserted modifier set. Modifier
	// keys never arrive as KeyDown/KeyUp; the source folds them into the
	// modifier state instead.
	FlagsChanged
)

// Event is a normalized input event as delivered by a Source. KeyCode uses
// the same code space as hotkey bindings; Mods carries hotkey.Mod* bits.
type Event struct {
	Kind    EventKind
	KeyCode uint32
	Mods    uint32
}

// Source is the narrow seam over the OS-level global input tap. Start
// installs the tap and returns the event stream; it fails when the tap
// cannot be installed (missing input-monitoring trust, for example).
// Implementations must deliver events in arrival order on a single
// goroutine and close the channel after Stop.
type Source interface {
	Start() (<-chan Event, error)
	Stop()
}
