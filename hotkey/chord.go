package hotkey

import (
	"fmt"
	"slices"
	"strings"

	"github.com/vcaesar/keycode"
)

var aliases = map[string]string{
	"control": "ctrl",
	"option":  "alt",
	"opt":     "alt",
	"super":   "cmd",
	"meta":    "cmd",
	"win":     "cmd",
	"command": "cmd",
	"return":  "enter",
	"esc":     "escape",
}

// Chord is a set of keys that must be held together.
type Chord struct {
	keys []string
}

// ParseChord parses "alt+shift+s" or "<alt>+<shift>+s". Key names are case
// insensitive and must be known to the key code table.
func ParseChord(s string) (Chord, error) {
	var keys []string
	for _, tok := range strings.Split(s, "+") {
		name := strings.ToLower(strings.TrimSpace(tok))
		name = strings.TrimSuffix(strings.TrimPrefix(name, "<"), ">")
		if a, ok := aliases[name]; ok {
			name = a
		}
		if name == "" {
			return Chord{}, fmt.Errorf("parse chord %q: empty key", s)
		}
		if len(codesFor(name)) == 0 {
			return Chord{}, fmt.Errorf("parse chord %q: unknown key %q", s, name)
		}
		if !slices.Contains(keys, name) {
			keys = append(keys, name)
		}
	}
	slices.Sort(keys)
	return Chord{keys: keys}, nil
}

// MustParseChord is like ParseChord but panics on error.
func MustParseChord(s string) Chord {
	c, err := ParseChord(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Chord) String() string { return strings.Join(c.keys, "+") }

// codesFor returns every key code that satisfies name. Modifiers match both
// their left and right variants.
func codesFor(name string) []uint16 {
	var codes []uint16
	for _, k := range []string{name, "l" + name, "r" + name} {
		if code, ok := keycode.Keycode[k]; ok && !slices.Contains(codes, code) {
			codes = append(codes, code)
		}
	}
	return codes
}

// compiled is a chord resolved to key codes: one group per key, any code of
// a group satisfies it.
type compiled struct {
	binding Binding
	groups  [][]uint16
}

func compile(b Binding) compiled {
	c := compiled{binding: b}
	for _, k := range b.Chord.keys {
		c.groups = append(c.groups, codesFor(k))
	}
	return c
}

func (c compiled) uses(code uint16) bool {
	for _, g := range c.groups {
		if slices.Contains(g, code) {
			return true
		}
	}
	return false
}

func (c compiled) heldIn(held map[uint16]bool) bool {
	for _, g := range c.groups {
		ok := false
		for _, code := range g {
			if held[code] {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}
