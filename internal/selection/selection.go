// Package selection owns the X11 CLIPBOARD selection on behalf of a single
// secret and answers SelectionRequest events under a disclosure policy.
//
// The pieces are split so the state machine in Owner can be driven without a
// display server:
//
//	display.go    Display implementation over github.com/BurntSushi/xgb
//	atoms.go      interned atoms used by the protocol
//	identity*.go  requestor window -> executable path
//	waiter.go     deadline-aware event wait
//	responder.go  property writes and SelectionNotify replies
//	owner.go      the event loop
package selection

import (
	"errors"

	"github.com/BurntSushi/xgb/xproto"
)

var (
	// ErrNotOwner is returned when the server did not hand the selection to us.
	ErrNotOwner = errors.New("selection owner was not set")

	// ErrConnectionClosed is returned when the X11 connection goes away while
	// waiting for events.
	ErrConnectionClosed = errors.New("x11 connection closed")

	// ErrUnsupported is returned by identity lookups the platform cannot do.
	ErrUnsupported = errors.New("not supported on this platform")
)

// Interner resolves atom names.
type Interner interface {
	InternAtom(name string) (xproto.Atom, error)
}

// Display is the set of X11 round-trips the owner performs. Every method is
// synchronous: it returns once the server has processed the request.
type Display interface {
	Interner

	// AtomName returns the string an atom stands for.
	AtomName(atom xproto.Atom) (string, error)

	// Claim makes our window the owner of selection and verifies that the
	// server agrees.
	Claim(selection xproto.Atom) error

	// Property reads a property of win. A missing property yields an empty
	// value and no error.
	Property(win xproto.Window, prop xproto.Atom) ([]byte, error)

	// ChangeProperty replaces a property on win. units counts elements of the
	// given format, not bytes.
	ChangeProperty(win xproto.Window, prop, typ xproto.Atom, format byte, units uint32, data []byte) error

	// SendSelectionNotify delivers ev to ev.Requestor.
	SendSelectionNotify(ev xproto.SelectionNotifyEvent) error
}

// Outcome is the terminal state of a run.
type Outcome int

const (
	// Shared means the secret was handed to exactly one requestor.
	Shared Outcome = iota + 1
	// Cleared means the user asked to end the run without disclosing.
	Cleared
	// Lost means another client took the selection.
	Lost
	// TimedOut means the deadline passed with nothing disclosed.
	TimedOut
)

func (o Outcome) String() string {
	switch o {
	case Shared:
		return "shared"
	case Cleared:
		return "cleared"
	case Lost:
		return "lost"
	case TimedOut:
		return "timed out"
	default:
		return "unknown"
	}
}

// Result describes how a run ended.
type Result struct {
	Outcome Outcome

	// Recipient is the identity the secret was disclosed to. Empty unless
	// Outcome is Shared, and empty when the recipient could not be identified.
	Recipient string
}
