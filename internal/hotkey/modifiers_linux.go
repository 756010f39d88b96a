//go:build linux

package hotkey

import "golang.design/x/hotkey"

// modifierMap maps canonical modifiers to X11 masks.
var modifierMap = map[string]hotkey.Modifier{
	"ctrl":  hotkey.ModCtrl,
	"shift": hotkey.ModShift,
	"alt":   hotkey.Mod1,
	"super": hotkey.Mod4,
}
