//go:build darwin

package tap

// macKeys translates macOS virtual keycodes into the binding code space
// (ASCII for printable keys, VK-style codes for the rest).
var macKeys = map[uint16]uint32{
	0: 'A', 11: 'B', 8: 'C', 2: 'D', 14: 'E', 3: 'F', 5: 'G', 4: 'H',
	34: 'I', 38: 'J', 40: 'K', 37: 'L', 46: 'M', 45: 'N', 31: 'O',
	35: 'P', 12: 'Q', 15: 'R', 1: 'S', 17: 'T', 32: 'U', 9: 'V',
	13: 'W', 7: 'X', 16: 'Y', 6: 'Z',
	29: '0', 18: '1', 19: '2', 20: '3', 21: '4', 23: '5', 22: '6',
	26: '7', 28: '8', 25: '9',
	36: 0x0D, 48: 0x09, 49: 0x20, 51: 0x08, 53: 0x1B, 117: 0x2E,
	115: 0x24, 119: 0x23, 116: 0x21, 121: 0x22,
	123: 0x25, 126: 0x26, 124: 0x27, 125: 0x28,
	122: 0x70, 120: 0x71, 99: 0x72, 118: 0x73, 96: 0x74, 97: 0x75,
	98: 0x76, 100: 0x77, 101: 0x78, 109: 0x79, 103: 0x7A, 111: 0x7B,
}

// normalizeKey maps a raw platform keycode to the binding code space.
// Unknown keys come back as 0; they still count as observed keystrokes but
// can never match a binding.
func normalizeKey(raw uint16) uint32 {
	return macKeys[raw]
}
