package hotkey

import (
	"fmt"
	"strconv"
	"strings"
)

// Modifier bits tracked for matching. Anything outside this set (caps lock,
// num lock, ...) is ignored by the matcher.
const (
	ModCtrl uint32 = 1 << iota
	ModOpt
	ModShift
	ModCmd
	ModFn
)

const modTracked = ModCtrl | ModOpt | ModShift | ModCmd | ModFn

// TrackedMods masks a modifier state down to the bits relevant for matching.
func TrackedMods(mods uint32) uint32 {
	return mods & modTracked
}

// IsFnOnlyState reports whether Fn is the only tracked modifier asserted.
func IsFnOnlyState(mods uint32) bool {
	return mods&modTracked == ModFn
}

// Action identifies what a hotkey binding triggers.
type Action int

const (
	ActionToggle Action = iota
	ActionHold
	ActionPaste
	ActionScreenshot
)

// Actions lists all bindable actions in a stable order.
var Actions = []Action{ActionToggle, ActionHold, ActionPaste, ActionScreenshot}

func (a Action) String() string {
	switch a {
	case ActionToggle:
		return "toggle"
	case ActionHold:
		return "hold"
	case ActionPaste:
		return "paste"
	case ActionScreenshot:
		return "screenshot"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// EdgeTriggered reports whether the action fires once on activation with no
// corresponding end behavior. Only hold-to-talk has end semantics.
func (a Action) EdgeTriggered() bool {
	return a != ActionHold
}

// Hotkey is an immutable key binding. FnOnly bindings are matched purely by
// modifier-state transitions; KeyCode is ignored for them.
type Hotkey struct {
	KeyCode   uint32 `json:"KEY_CODE"`
	Modifiers uint32 `json:"MODIFIER_MASK"`
	UsesFn    bool   `json:"USES_FN,omitempty"`
	FnOnly    bool   `json:"FN_ONLY,omitempty"`
}

// IsZero reports whether the binding is unset.
func (h Hotkey) IsZero() bool {
	return h == Hotkey{}
}

// Matches reports whether an observed key event activates this binding.
// Fn-only bindings never match key events; they are committed by the tap
// state machine on sustained Fn-only modifier state instead.
func (h Hotkey) Matches(keyCode uint32, mods uint32) bool {
	if h.FnOnly {
		return false
	}
	if h.KeyCode != keyCode {
		return false
	}
	return h.Modifiers&modTracked == mods&modTracked
}

// Label renders the canonical display form: Fn, Ctrl, Opt, Shift, Cmd, then
// the key name. Fn-only bindings render as exactly "Fn".
func (h Hotkey) Label() string {
	if h.FnOnly {
		return "Fn"
	}
	var parts []string
	if h.Modifiers&ModFn != 0 || h.UsesFn {
		parts = append(parts, "Fn")
	}
	if h.Modifiers&ModCtrl != 0 {
		parts = append(parts, "Ctrl")
	}
	if h.Modifiers&ModOpt != 0 {
		parts = append(parts, "Opt")
	}
	if h.Modifiers&ModShift != 0 {
		parts = append(parts, "Shift")
	}
	if h.Modifiers&ModCmd != 0 {
		parts = append(parts, "Cmd")
	}
	parts = append(parts, KeyName(h.KeyCode))
	return strings.Join(parts, "+")
}

// ParseSpec accepts strings like "ctrl+shift+d", "cmd+space", "f5" or the
// bare token "fn" (which yields an Fn-only binding) and returns a Hotkey.
func ParseSpec(s string) (Hotkey, error) {
	if strings.TrimSpace(s) == "" {
		return Hotkey{}, fmt.Errorf("empty hotkey spec")
	}
	parts := strings.Split(s, "+")
	for i := range parts {
		parts[i] = strings.TrimSpace(strings.ToLower(parts[i]))
	}

	if len(parts) == 1 && parts[0] == "fn" {
		return Hotkey{UsesFn: true, FnOnly: true}, nil
	}

	var h Hotkey
	keyToken := parts[len(parts)-1]
	for _, p := range parts[:len(parts)-1] {
		switch p {
		case "ctrl", "control":
			h.Modifiers |= ModCtrl
		case "opt", "option", "alt":
			h.Modifiers |= ModOpt
		case "shift":
			h.Modifiers |= ModShift
		case "cmd", "meta", "super", "win":
			h.Modifiers |= ModCmd
		case "fn":
			h.Modifiers |= ModFn
			h.UsesFn = true
		default:
			return Hotkey{}, fmt.Errorf("unknown modifier token '%s' in '%s'", p, s)
		}
	}

	code, err := keyCodeFor(keyToken)
	if err != nil {
		return Hotkey{}, fmt.Errorf("invalid hotkey '%s': %w", s, err)
	}
	h.KeyCode = code
	return h, nil
}

func keyCodeFor(token string) (uint32, error) {
	if token == "" {
		return 0, fmt.Errorf("empty key token")
	}
	if len(token) == 1 {
		ch := token[0]
		if ch >= 'a' && ch <= 'z' {
			return uint32(ch - 'a' + 'A'), nil
		}
		if ch >= '0' && ch <= '9' {
			return uint32(ch), nil
		}
	}
	if v, ok := namedKeys[token]; ok {
		return v, nil
	}
	if strings.HasPrefix(token, "f") {
		if n, err := strconv.Atoi(strings.TrimPrefix(token, "f")); err == nil && n >= 1 && n <= 24 {
			return keyF1 + uint32(n-1), nil
		}
	}
	return 0, fmt.Errorf("unsupported key token: %s", token)
}

const keyF1 uint32 = 0x70

var namedKeys = map[string]uint32{
	"esc":       0x1B,
	"escape":    0x1B,
	"space":     0x20,
	"enter":     0x0D,
	"return":    0x0D,
	"tab":       0x09,
	"backspace": 0x08,
	"insert":    0x2D,
	"delete":    0x2E,
	"home":      0x24,
	"end":       0x23,
	"pageup":    0x21,
	"pagedown":  0x22,
	"left":      0x25,
	"up":        0x26,
	"right":     0x27,
	"down":      0x28,
}

// KeyName returns a display name for a key code.
func KeyName(code uint32) string {
	if code >= 'A' && code <= 'Z' {
		return string(rune(code))
	}
	if code >= '0' && code <= '9' {
		return string(rune(code))
	}
	if code >= keyF1 && code < keyF1+24 {
		return fmt.Sprintf("F%d", code-keyF1+1)
	}
	switch code {
	case 0x1B:
		return "Esc"
	case 0x20:
		return "Space"
	case 0x0D:
		return "Return"
	case 0x09:
		return "Tab"
	case 0x08:
		return "Backspace"
	case 0x2D:
		return "Insert"
	case 0x2E:
		return "Delete"
	case 0x24:
		return "Home"
	case 0x23:
		return "End"
	case 0x21:
		return "PageUp"
	case 0x22:
		return "PageDown"
	case 0x25:
		return "Left"
	case 0x26:
		return "Up"
	case 0x27:
		return "Right"
	case 0x28:
		return "Down"
	}
	return fmt.Sprintf("Key(0x%X)", code)
}
