package selection

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/BurntSushi/xgb/xproto"

	"go.klb.dev/clipotp/internal/policy"
)

// reservedPropertyPrefix marks properties a compositor's clipboard manager
// uses for its own bookkeeping (mutter requests the selection into
// META_SELECTION* as soon as it changes hands). Those requests get no answer.
const reservedPropertyPrefix = "META_SELECTION"

// Prompter asks the user what to do with a request. Implementations return
// policy.Continue when the user made no choice before ctx ended.
type Prompter interface {
	Ask(ctx context.Context, req policy.Request) (policy.Decision, error)
}

// Options configures an Owner.
type Options struct {
	Display Display
	Waiter  Waiter

	// Identifier resolves requestors for policy matching. Nil leaves every
	// requestor unidentified, so every request goes to the prompt.
	Identifier Identifier

	// Prompter is consulted when the lists do not decide. Nil refuses such
	// requests.
	Prompter Prompter

	// Lists is owned by the Owner for the duration of Run; the deny-list
	// grows as the user rejects requestors.
	Lists *policy.Lists

	// Secret is the payload disclosed at most once.
	Secret []byte

	// Deadline ends the run with TimedOut. Zero means no deadline.
	Deadline time.Time

	Logger *slog.Logger
}

// Owner is the selection-owner state machine.
type Owner struct {
	display   Display
	waiter    Waiter
	ident     Identifier
	prompter  Prompter
	lists     *policy.Lists
	secret    []byte
	deadline  time.Time
	responder *Responder
	log       *slog.Logger
}

// NewOwner returns an Owner that has not claimed anything yet.
func NewOwner(opts Options) *Owner {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	lists := opts.Lists
	if lists == nil {
		lists = policy.NewLists(nil, nil)
	}
	return &Owner{
		display:   opts.Display,
		waiter:    opts.Waiter,
		ident:     opts.Identifier,
		prompter:  opts.Prompter,
		lists:     lists,
		secret:    opts.Secret,
		deadline:  opts.Deadline,
		responder: NewResponder(opts.Display),
		log:       log,
	}
}

// Run claims CLIPBOARD and serves requests until a terminal state is
// reached. Outcomes are not errors; an error means a setup or protocol
// failure and the returned Result is meaningless.
func (o *Owner) Run(ctx context.Context) (Result, error) {
	atoms, err := ResolveAtoms(o.display)
	if err != nil {
		return Result{}, err
	}
	if err := o.display.Claim(atoms.Clipboard); err != nil {
		return Result{}, fmt.Errorf("claim CLIPBOARD: %w", err)
	}
	o.log.Info("selection claimed", "deadline", o.deadline)

	for {
		ev, ok, err := o.waiter.Next(o.deadline)
		if err != nil {
			return Result{}, fmt.Errorf("wait for event: %w", err)
		}
		if !ok {
			o.log.Info("deadline reached")
			return Result{Outcome: TimedOut}, nil
		}

		switch ev := ev.(type) {
		case xproto.SelectionClearEvent:
			if ev.Selection != atoms.Clipboard {
				continue
			}
			o.log.Info("selection taken by another client")
			return Result{Outcome: Lost}, nil

		case xproto.SelectionRequestEvent:
			res, done, err := o.handle(ctx, atoms, ev)
			if err != nil {
				return Result{}, err
			}
			if done {
				return res, nil
			}

		default:
			o.log.Debug("ignoring event", "event", ev.String())
		}
	}
}

// handle serves one SelectionRequest. done reports whether the run is over.
func (o *Owner) handle(ctx context.Context, atoms Atoms, ev xproto.SelectionRequestEvent) (Result, bool, error) {
	if ev.Selection != atoms.Clipboard {
		return Result{}, false, o.responder.Refuse(ev)
	}
	// Obsolete requestors leave Property unset; ICCCM says use the target.
	if ev.Property == xproto.AtomNone {
		ev.Property = ev.Target
	}

	property, err := o.display.AtomName(ev.Property)
	if err != nil {
		return Result{}, false, err
	}
	if strings.HasPrefix(property, reservedPropertyPrefix) {
		o.log.Debug("ignoring clipboard manager request", "property", property)
		return Result{}, false, nil
	}

	switch {
	case ev.Target == atoms.Targets:
		o.log.Debug("answering TARGETS", "window", ev.Requestor)
		return Result{}, false, o.responder.Reply(ev, AtomsReply(atoms.UTF8String))

	case atoms.IsText(ev.Target):
		return o.handleText(ctx, atoms, ev, property)

	default:
		if o.log.Enabled(ctx, slog.LevelDebug) {
			target, _ := o.display.AtomName(ev.Target)
			o.log.Debug("refusing unsupported target", "window", ev.Requestor, "target", target)
		}
		return Result{}, false, o.responder.Refuse(ev)
	}
}

func (o *Owner) handleText(ctx context.Context, atoms Atoms, ev xproto.SelectionRequestEvent, property string) (Result, bool, error) {
	target := atomUTF8String
	if ev.Target == atoms.TextPlain {
		target = atomTextPlain
	}
	req := policy.Request{
		Title:     o.windowTitle(atoms, ev.Requestor),
		Target:    target,
		Requestor: uint32(ev.Requestor),
	}
	if o.ident != nil {
		id, err := o.ident.Identify(ev.Requestor)
		if err != nil {
			o.log.Debug("requestor identity unknown", "window", ev.Requestor, "err", err)
		} else {
			req.Identity, req.Known = id, true
		}
	}
	logRequest(ctx, o.log, ev, req, property)

	d := o.lists.Decide(req.Identity, req.Known, func() policy.Decision {
		return o.ask(ctx, req)
	})
	o.log.Info("request decided", "requestor", req.Describe(), "decision", d.String())

	switch d {
	case policy.Share:
		if err := o.responder.Reply(ev, BytesReply(ev.Target, o.secret)); err != nil {
			return Result{}, false, err
		}
		return Result{Outcome: Shared, Recipient: req.Identity}, true, nil
	case policy.Clear:
		return Result{Outcome: Cleared}, true, nil
	default:
		return Result{}, false, o.responder.Refuse(ev)
	}
}

// ask runs the prompt bounded by the deadline. Prompt failures are treated
// as "no decision" so an unavailable notification service refuses rather
// than shares.
func (o *Owner) ask(ctx context.Context, req policy.Request) policy.Decision {
	if o.prompter == nil {
		return policy.Continue
	}
	if !o.deadline.IsZero() {
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, o.deadline)
		defer cancel()
	}
	d, err := o.prompter.Ask(ctx, req)
	if err != nil {
		o.log.Warn("prompt failed, refusing request", "requestor", req.Describe(), "err", err)
		return policy.Continue
	}
	return d
}

// windowTitle prefers the UTF-8 _NET_WM_NAME and falls back to WM_NAME. It is
// cosmetic, so lookup failures yield an empty title.
func (o *Owner) windowTitle(atoms Atoms, win xproto.Window) string {
	for _, prop := range []xproto.Atom{atoms.NetWMName, xproto.AtomWmName} {
		if prop == xproto.AtomNone {
			continue
		}
		value, err := o.display.Property(win, prop)
		if err != nil {
			o.log.Debug("window title lookup failed", "window", win, "err", err)
			return ""
		}
		if len(value) > 0 {
			return string(value)
		}
	}
	return ""
}
