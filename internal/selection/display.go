package selection

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/res"
	"github.com/BurntSushi/xgb/xproto"
)

// maxPropertyLongs bounds property reads (in 32-bit units) for window titles
// and pids.
const maxPropertyLongs = 1024

// X11 is a Display backed by a live connection and a hidden 1x1 window that
// acts as the selection owner.
type X11 struct {
	conn     *xgb.Conn
	window   xproto.Window
	netWMPID xproto.Atom
	hasRes   bool
	log      *slog.Logger
}

// Open connects to display (empty means $DISPLAY) and creates the owner
// window. Every failure here is a setup error.
func Open(display string, log *slog.Logger) (*X11, error) {
	if log == nil {
		log = slog.Default()
	}

	conn, err := openConn(display)
	if err != nil {
		if display == "" {
			return nil, fmt.Errorf("connect to X11: %w", err)
		}
		return nil, fmt.Errorf("connect to X11 display %q: %w", display, err)
	}

	setup := xproto.Setup(conn)
	screen := setup.DefaultScreen(conn)
	if screen == nil {
		conn.Close()
		return nil, errors.New("x11: no default screen")
	}

	window, err := xproto.NewWindowId(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("new window id: %w", err)
	}

	err = xproto.CreateWindowChecked(
		conn,
		0,
		window,
		screen.Root,
		0, 0, 1, 1, 0,
		xproto.WindowClassInputOnly,
		screen.RootVisual,
		xproto.CwEventMask,
		[]uint32{xproto.EventMaskPropertyChange},
	).Check()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create window: %w", err)
	}

	x := &X11{conn: conn, window: window, log: log}

	// Client pid lookups degrade gracefully, so neither of these is fatal.
	if err := res.Init(conn); err != nil {
		log.Debug("X-Resource extension unavailable", "err", err)
	} else {
		x.hasRes = true
	}
	if x.netWMPID, err = x.InternAtom("_NET_WM_PID"); err != nil {
		log.Debug("intern _NET_WM_PID failed", "err", err)
	}

	log.Debug("x11 connected", "window", window, "root", screen.Root, "xres", x.hasRes)
	return x, nil
}

func openConn(display string) (*xgb.Conn, error) {
	if display == "" {
		return xgb.NewConn()
	}
	return xgb.NewConnDisplay(display)
}

// Window returns the owner window.
func (x *X11) Window() xproto.Window { return x.window }

// Close tears down the connection. The server destroys the window with it.
func (x *X11) Close() { x.conn.Close() }

// WaitForEvent blocks for the next event; see xgb.Conn.WaitForEvent.
func (x *X11) WaitForEvent() (xgb.Event, xgb.Error) { return x.conn.WaitForEvent() }

func (x *X11) InternAtom(name string) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(x.conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return xproto.AtomNone, err
	}
	return reply.Atom, nil
}

func (x *X11) AtomName(atom xproto.Atom) (string, error) {
	reply, err := xproto.GetAtomName(x.conn, atom).Reply()
	if err != nil {
		return "", fmt.Errorf("atom name %d: %w", atom, err)
	}
	return reply.Name, nil
}

func (x *X11) Claim(selection xproto.Atom) error {
	err := xproto.SetSelectionOwnerChecked(x.conn, x.window, selection, xproto.TimeCurrentTime).Check()
	if err != nil {
		return fmt.Errorf("set selection owner: %w", err)
	}
	reply, err := xproto.GetSelectionOwner(x.conn, selection).Reply()
	if err != nil {
		return fmt.Errorf("get selection owner: %w", err)
	}
	if reply.Owner != x.window {
		return fmt.Errorf("%w: owner is %#x", ErrNotOwner, reply.Owner)
	}
	return nil
}

func (x *X11) Property(win xproto.Window, prop xproto.Atom) ([]byte, error) {
	reply, err := xproto.GetProperty(x.conn, false, win, prop, xproto.AtomAny, 0, maxPropertyLongs).Reply()
	if err != nil {
		return nil, fmt.Errorf("get property %d of %#x: %w", prop, win, err)
	}
	return reply.Value, nil
}

func (x *X11) ChangeProperty(win xproto.Window, prop, typ xproto.Atom, format byte, units uint32, data []byte) error {
	return xproto.ChangePropertyChecked(x.conn, xproto.PropModeReplace, win, prop, typ, format, units, data).Check()
}

func (x *X11) SendSelectionNotify(ev xproto.SelectionNotifyEvent) error {
	return xproto.SendEventChecked(x.conn, false, ev.Requestor, xproto.EventMaskNoEvent, string(ev.Bytes())).Check()
}

// ClientPID returns the pid of the client that created win. It asks the
// X-Resource extension first and falls back to the _NET_WM_PID property,
// which is client-supplied and only trusted as a last resort.
func (x *X11) ClientPID(win xproto.Window) (uint32, error) {
	if x.hasRes {
		pid, err := x.resClientPID(win)
		if err == nil {
			return pid, nil
		}
		x.log.Debug("X-Resource pid lookup failed", "window", win, "err", err)
	}

	if x.netWMPID == xproto.AtomNone {
		return 0, errors.New("no pid source available")
	}
	value, err := x.Property(win, x.netWMPID)
	if err != nil {
		return 0, err
	}
	if len(value) < 4 {
		return 0, fmt.Errorf("window %#x has no _NET_WM_PID", win)
	}
	return xgb.Get32(value), nil
}

func (x *X11) resClientPID(win xproto.Window) (uint32, error) {
	spec := res.ClientIdSpec{Client: uint32(win), Mask: res.ClientIdMaskLocalClientPID}
	reply, err := res.QueryClientIds(x.conn, 1, []res.ClientIdSpec{spec}).Reply()
	if err != nil {
		return 0, err
	}
	for _, id := range reply.Ids {
		if id.Spec.Mask&res.ClientIdMaskLocalClientPID != 0 && len(id.Value) > 0 {
			return id.Value[0], nil
		}
	}
	return 0, fmt.Errorf("window %#x: client is not local", win)
}
