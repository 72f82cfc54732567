package selection

import (
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

type replyKind int

const (
	replyAtoms replyKind = iota
	replyBytes
)

// Reply is a property payload: either a list of atoms (answering TARGETS) or
// raw bytes of a given type (answering a content request).
type Reply struct {
	kind  replyKind
	atoms []xproto.Atom
	typ   xproto.Atom
	data  []byte
}

// AtomsReply builds an ATOM-typed, 32-bit payload.
func AtomsReply(atoms ...xproto.Atom) Reply {
	return Reply{kind: replyAtoms, atoms: atoms, typ: xproto.AtomAtom}
}

// BytesReply builds an 8-bit payload of type typ.
func BytesReply(typ xproto.Atom, data []byte) Reply {
	return Reply{kind: replyBytes, typ: typ, data: data}
}

// encode returns the property type, format, element count and wire bytes.
func (r Reply) encode() (xproto.Atom, byte, uint32, []byte) {
	if r.kind == replyAtoms {
		buf := make([]byte, 4*len(r.atoms))
		for i, a := range r.atoms {
			xgb.Put32(buf[i*4:], uint32(a))
		}
		return r.typ, 32, uint32(len(r.atoms)), buf
	}
	return r.typ, 8, uint32(len(r.data)), r.data
}

// Responder answers SelectionRequest events.
type Responder struct {
	display Display
}

// NewResponder returns a Responder writing through d.
func NewResponder(d Display) *Responder {
	return &Responder{display: d}
}

// Reply stores r in ev.Property on the requestor and notifies it.
func (r *Responder) Reply(ev xproto.SelectionRequestEvent, reply Reply) error {
	typ, format, units, data := reply.encode()
	if err := r.display.ChangeProperty(ev.Requestor, ev.Property, typ, format, units, data); err != nil {
		return fmt.Errorf("write property on %#x: %w", ev.Requestor, err)
	}
	return r.notify(ev, ev.Property)
}

// Refuse tells the requestor the conversion failed.
func (r *Responder) Refuse(ev xproto.SelectionRequestEvent) error {
	return r.notify(ev, xproto.AtomNone)
}

func (r *Responder) notify(ev xproto.SelectionRequestEvent, prop xproto.Atom) error {
	n := xproto.SelectionNotifyEvent{
		Time:      ev.Time,
		Requestor: ev.Requestor,
		Selection: ev.Selection,
		Target:    ev.Target,
		Property:  prop,
	}
	if err := r.display.SendSelectionNotify(n); err != nil {
		return fmt.Errorf("send selection notify to %#x: %w", ev.Requestor, err)
	}
	return nil
}
