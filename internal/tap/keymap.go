package tap

import "github.com/ItzR3NO/R3VIB3-MacOS/internal/hotkey"

// modifierBit maps a raw modifier keycode to its hotkey.Mod* bit. Covers the
// macOS virtual keycodes gohook reports natively plus the X11 keysyms seen
// on Linux; the two ranges do not overlap.
func modifierBit(raw uint16) (uint32, bool) {
	switch raw {
	// macOS virtual keycodes
	case 59, 62: // control (left/right)
		return hotkey.ModCtrl, true
	case 58, 61: // option
		return hotkey.ModOpt, true
	case 56, 60: // shift
		return hotkey.ModShift, true
	case 55, 54: // command
		return hotkey.ModCmd, true
	case 63: // fn
		return hotkey.ModFn, true
	// X11 keysyms
	case 65507, 65508:
		return hotkey.ModCtrl, true
	case 65513, 65514:
		return hotkey.ModOpt, true
	case 65505, 65506:
		return hotkey.ModShift, true
	case 65515, 65516:
		return hotkey.ModCmd, true
	}
	return 0, false
}
