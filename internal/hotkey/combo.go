package hotkey

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode"
)

// ErrInvalidCombo is returned for combo strings that do not name at least one
// modifier and exactly one known trigger key.
var ErrInvalidCombo = errors.New("invalid hotkey combo")

// None is the combo string that disables a binding.
const None = "none"

// Binding is a parsed combo: ordered modifier tokens plus one trigger key.
// The zero Binding means "disabled".
type Binding struct {
	Mods []string
	Key  string
}

var modAliases = map[string]string{
	"ctrl":    "ctrl",
	"control": "ctrl",
	"shift":   "shift",
	"alt":     "alt",
	"option":  "alt",
	"opt":     "alt",
	"super":   "super",
	"cmd":     "super",
	"command": "super",
	"win":     "super",
	"meta":    "super",
}

var keyAliases = map[string]string{
	"space":  "space",
	"tab":    "tab",
	"enter":  "enter",
	"return": "enter",
	"escape": "escape",
	"esc":    "escape",
	"delete": "delete",
	"del":    "delete",
	"up":     "up",
	"down":   "down",
	"left":   "left",
	"right":  "right",
}

// Parse turns a combo such as "Ctrl + Shift + Q" into a Binding. Whitespace
// is stripped and matching is case-insensitive. An empty string or "none"
// yields the zero Binding.
func Parse(combo string) (Binding, error) {
	s := strings.ToLower(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, combo))
	if s == "" || s == None {
		return Binding{}, nil
	}

	parts := strings.Split(s, "+")
	key, ok := canonicalKey(parts[len(parts)-1])
	if !ok {
		return Binding{}, fmt.Errorf("%w %q: unknown key %q", ErrInvalidCombo, combo, parts[len(parts)-1])
	}

	var mods []string
	for _, p := range parts[:len(parts)-1] {
		m, ok := modAliases[p]
		if !ok {
			return Binding{}, fmt.Errorf("%w %q: unknown modifier %q", ErrInvalidCombo, combo, p)
		}
		if !slices.Contains(mods, m) {
			mods = append(mods, m)
		}
	}
	if len(mods) == 0 {
		return Binding{}, fmt.Errorf("%w %q: at least one modifier is required", ErrInvalidCombo, combo)
	}
	return Binding{Mods: mods, Key: key}, nil
}

// IsZero reports whether the binding is disabled.
func (b Binding) IsZero() bool { return b.Key == "" }

// Primary returns the modifier whose release ends a hold gesture: the first
// modifier token of the combo.
func (b Binding) Primary() string {
	if len(b.Mods) == 0 {
		return "ctrl"
	}
	return b.Mods[0]
}

// String returns the canonical combo form, e.g. "ctrl+shift+q".
func (b Binding) String() string {
	if b.IsZero() {
		return None
	}
	return strings.Join(append(append([]string(nil), b.Mods...), b.Key), "+")
}

// Display returns the label form used in settings, e.g. "Ctrl + Shift + Q".
func (b Binding) Display() string {
	if b.IsZero() {
		return "None"
	}
	parts := make([]string, 0, len(b.Mods)+1)
	for _, t := range append(append([]string(nil), b.Mods...), b.Key) {
		parts = append(parts, strings.ToUpper(t[:1])+t[1:])
	}
	return strings.Join(parts, " + ")
}

// Equal reports whether two bindings name the same combo.
func (b Binding) Equal(o Binding) bool { return b.String() == o.String() }

func canonicalKey(k string) (string, bool) {
	if len(k) == 1 && (k[0] >= 'a' && k[0] <= 'z' || k[0] >= '0' && k[0] <= '9') {
		return k, true
	}
	if len(k) >= 2 && len(k) <= 3 && k[0] == 'f' {
		if n, err := strconv.Atoi(k[1:]); err == nil && n >= 1 && n <= 12 && strconv.Itoa(n) == k[1:] {
			return k, true
		}
	}
	named, ok := keyAliases[k]
	return named, ok
}
