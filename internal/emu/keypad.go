package emu

// Keys is the state of the 16-key hex keypad, indexed by key value.
type Keys [16]bool

// KeypadLayout maps the left side of a QWERTY keyboard onto the COSMAC VIP keypad,
// indexed by keypad value:
//
//	1 2 3 4      1 2 3 C
//	Q W E R  ->  4 5 6 D
//	A S D F      7 8 9 E
//	Z X C V      A 0 B F
var KeypadLayout = [16]rune{
	0x0: 'x', 0x1: '1', 0x2: '2', 0x3: '3',
	0x4: 'q', 0x5: 'w', 0x6: 'e', 0x7: 'a',
	0x8: 's', 0x9: 'd', 0xA: 'z', 0xB: 'c',
	0xC: '4', 0xD: 'r', 0xE: 'f', 0xF: 'v',
}

// KeyForRune returns the keypad index bound to a typed character.
func KeyForRune(r rune) (int, bool) {
	if r >= 'A' && r <= 'Z' {
		r += 'a' - 'A'
	}
	for i, k := range KeypadLayout {
		if k == r {
			return i, true
		}
	}
	return 0, false
}
