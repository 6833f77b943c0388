//go:build !darwin

package tap

// x11Keys covers the non-printable X11 keysyms.
var x11Keys = map[uint16]uint32{
	65293: 0x0D, 65289: 0x09, 65288: 0x08, 65307: 0x1B, 65535: 0x2E,
	65379: 0x2D, 65360: 0x24, 65367: 0x23, 65365: 0x21, 65366: 0x22,
	65361: 0x25, 65362: 0x26, 65363: 0x27, 65364: 0x28,
}

// normalizeKey maps a raw platform keycode to the binding code space.
// Printable X11 keysyms are ASCII. Unknown keys come back as 0; they still
// count as observed keystrokes but can never match a binding.
func normalizeKey(raw uint16) uint32 {
	if v, ok := x11Keys[raw]; ok {
		return v
	}
	if raw >= 'a' && raw <= 'z' {
		return uint32(raw - 'a' + 'A')
	}
	if raw >= '0' && raw <= '9' {
		return uint32(raw)
	}
	if raw >= 65470 && raw <= 65493 { // F1..F24
		return 0x70 + uint32(raw-65470)
	}
	return 0
}
