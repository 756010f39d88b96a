package hotkey

// releaseKeys lists the key names that count as each modifier going up.
// Left and right variants both end the hold.
var releaseKeys = map[string][]string{
	"ctrl":  {"ctrl", "rctrl"},
	"shift": {"shift", "rshift"},
	"alt":   {"alt", "ralt"},
	"super": {"cmd", "rcmd"},
}

// extraKeycodes holds libuiohook virtual key codes for names gohook's table
// lacks.
var extraKeycodes = map[string]uint16{
	"rctrl": 0x0E1D, // VC_CONTROL_R
}

// modifierCodes resolves mod to the codes of its left and right keys, looking
// each name up in table and then in extraKeycodes.
func modifierCodes(mod string, table map[string]uint16) map[uint16]bool {
	codes := make(map[uint16]bool)
	for _, name := range releaseKeys[mod] {
		code, ok := table[name]
		if !ok || code == 0 {
			code = extraKeycodes[name]
		}
		if code != 0 {
			codes[code] = true
		}
	}
	return codes
}
