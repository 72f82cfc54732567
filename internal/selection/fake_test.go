package selection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"

	"go.klb.dev/clipotp/internal/policy"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type propWrite struct {
	Window xproto.Window
	Prop   xproto.Atom
	Type   xproto.Atom
	Format byte
	Units  uint32
	Data   []byte
}

// fakeDisplay records every outgoing write so tests can assert on exactly
// what a requestor would have seen.
type fakeDisplay struct {
	atoms  map[string]xproto.Atom
	names  map[xproto.Atom]string
	next   xproto.Atom
	titles map[xproto.Window]string

	claimErr  error
	writeErr  error
	notifyErr error

	claimed  xproto.Atom
	writes   []propWrite
	notifies []xproto.SelectionNotifyEvent
}

func newFakeDisplay() *fakeDisplay {
	d := &fakeDisplay{
		atoms:  make(map[string]xproto.Atom),
		names:  make(map[xproto.Atom]string),
		next:   300,
		titles: make(map[xproto.Window]string),
	}
	d.names[xproto.AtomWmName] = "WM_NAME"
	d.atoms["WM_NAME"] = xproto.AtomWmName
	return d
}

// atom interns name, as a client would before issuing a request.
func (d *fakeDisplay) atom(name string) xproto.Atom {
	a, _ := d.InternAtom(name)
	return a
}

func (d *fakeDisplay) InternAtom(name string) (xproto.Atom, error) {
	if a, ok := d.atoms[name]; ok {
		return a, nil
	}
	d.next++
	d.atoms[name] = d.next
	d.names[d.next] = name
	return d.next, nil
}

func (d *fakeDisplay) AtomName(atom xproto.Atom) (string, error) {
	name, ok := d.names[atom]
	if !ok {
		return "", fmt.Errorf("BadAtom %d", atom)
	}
	return name, nil
}

func (d *fakeDisplay) Claim(selection xproto.Atom) error {
	if d.claimErr != nil {
		return d.claimErr
	}
	d.claimed = selection
	return nil
}

func (d *fakeDisplay) Property(win xproto.Window, prop xproto.Atom) ([]byte, error) {
	if prop == d.atoms[atomNetWMName] {
		return []byte(d.titles[win]), nil
	}
	return nil, nil
}

func (d *fakeDisplay) ChangeProperty(win xproto.Window, prop, typ xproto.Atom, format byte, units uint32, data []byte) error {
	if d.writeErr != nil {
		return d.writeErr
	}
	d.writes = append(d.writes, propWrite{win, prop, typ, format, units, append([]byte(nil), data...)})
	return nil
}

func (d *fakeDisplay) SendSelectionNotify(ev xproto.SelectionNotifyEvent) error {
	if d.notifyErr != nil {
		return d.notifyErr
	}
	d.notifies = append(d.notifies, ev)
	return nil
}

// scriptWaiter replays a fixed event sequence and then reports the deadline
// as passed.
type scriptWaiter struct {
	events    []xgb.Event
	err       error
	calls     int
	deadlines []time.Time
}

func (w *scriptWaiter) Next(deadline time.Time) (xgb.Event, bool, error) {
	w.calls++
	w.deadlines = append(w.deadlines, deadline)
	if len(w.events) == 0 {
		if w.err != nil {
			return nil, false, w.err
		}
		return nil, false, nil
	}
	ev := w.events[0]
	w.events = w.events[1:]
	return ev, true, nil
}

type fakeIdentifier map[xproto.Window]string

func (f fakeIdentifier) Identify(win xproto.Window) (string, error) {
	id, ok := f[win]
	if !ok {
		return "", errors.New("no such client")
	}
	return id, nil
}

// scriptPrompter answers with decisions in order and records what it was
// asked.
type scriptPrompter struct {
	answers  []policy.Decision
	err      error
	asked    []policy.Request
	deadline []time.Time
}

func (p *scriptPrompter) Ask(ctx context.Context, req policy.Request) (policy.Decision, error) {
	p.asked = append(p.asked, req)
	dl, _ := ctx.Deadline()
	p.deadline = append(p.deadline, dl)
	if p.err != nil {
		return policy.Continue, p.err
	}
	if len(p.answers) == 0 {
		return policy.Continue, nil
	}
	d := p.answers[0]
	p.answers = p.answers[1:]
	return d, nil
}

type fakeXError struct{ msg string }

func (e fakeXError) SequenceId() uint16 { return 0 }
func (e fakeXError) BadId() uint32      { return 0 }
func (e fakeXError) Error() string      { return e.msg }
