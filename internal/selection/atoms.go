package selection

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
)

const (
	atomClipboard  = "CLIPBOARD"
	atomTargets    = "TARGETS"
	atomUTF8String = "UTF8_STRING"
	atomTextPlain  = "text/plain;charset=utf-8"
	atomNetWMName  = "_NET_WM_NAME"
)

// Atoms holds the interned identifiers the owner compares events against.
type Atoms struct {
	Clipboard  xproto.Atom
	Targets    xproto.Atom
	UTF8String xproto.Atom
	TextPlain  xproto.Atom
	NetWMName  xproto.Atom
}

// ResolveAtoms interns every atom the owner needs.
func ResolveAtoms(in Interner) (Atoms, error) {
	var a Atoms
	for _, f := range []struct {
		name string
		dst  *xproto.Atom
	}{
		{atomClipboard, &a.Clipboard},
		{atomTargets, &a.Targets},
		{atomUTF8String, &a.UTF8String},
		{atomTextPlain, &a.TextPlain},
		{atomNetWMName, &a.NetWMName},
	} {
		atom, err := in.InternAtom(f.name)
		if err != nil {
			return Atoms{}, fmt.Errorf("intern atom %s: %w", f.name, err)
		}
		*f.dst = atom
	}
	return a, nil
}

// IsText reports whether target is a content type the secret can be
// delivered as.
func (a Atoms) IsText(target xproto.Atom) bool {
	return target != xproto.AtomNone && (target == a.UTF8String || target == a.TextPlain)
}
