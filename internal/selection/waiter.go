package selection

import (
	"log/slog"
	"time"

	"github.com/BurntSushi/xgb"
)

// Waiter yields protocol events, honoring an optional absolute deadline.
type Waiter interface {
	// Next returns the next event. A zero deadline blocks until an event
	// arrives. With a deadline, ok is false once it has passed and no event
	// is pending. A non-nil error is fatal.
	Next(deadline time.Time) (ev xgb.Event, ok bool, err error)
}

// EventSource is the blocking half of an xgb connection.
type EventSource interface {
	WaitForEvent() (xgb.Event, xgb.Error)
}

// EventWaiter is a Waiter over an EventSource. A reader goroutine forwards
// events into a channel, and that channel is what Next waits on: buffered
// events are returned without blocking, and otherwise Next sleeps for exactly
// the time left until the deadline.
type EventWaiter struct {
	events chan xgb.Event
	closed chan struct{}
	stop   chan struct{}
	now    func() time.Time
	log    *slog.Logger
}

// NewEventWaiter starts draining src. Call Close to stop the reader.
func NewEventWaiter(src EventSource, log *slog.Logger) *EventWaiter {
	if log == nil {
		log = slog.Default()
	}
	w := &EventWaiter{
		events: make(chan xgb.Event),
		closed: make(chan struct{}),
		stop:   make(chan struct{}),
		now:    time.Now,
		log:    log,
	}
	go w.read(src)
	return w
}

func (w *EventWaiter) read(src EventSource) {
	defer close(w.closed)
	for {
		ev, xerr := src.WaitForEvent()
		if ev == nil && xerr == nil {
			return
		}
		if xerr != nil {
			// Replies to checked requests carry their own errors; anything
			// that lands here belongs to a request nobody is waiting on.
			w.log.Warn("x11 error on event stream", "err", xerr)
			continue
		}
		select {
		case w.events <- ev:
		case <-w.stop:
			return
		}
	}
}

// Close stops forwarding events. It does not close the underlying connection.
func (w *EventWaiter) Close() {
	select {
	case <-w.stop:
	default:
		close(w.stop)
	}
}

func (w *EventWaiter) Next(deadline time.Time) (xgb.Event, bool, error) {
	for {
		select {
		case ev := <-w.events:
			return ev, true, nil
		case <-w.closed:
			return nil, false, ErrConnectionClosed
		default:
		}

		if deadline.IsZero() {
			select {
			case ev := <-w.events:
				return ev, true, nil
			case <-w.closed:
				return nil, false, ErrConnectionClosed
			}
		}

		remaining := deadline.Sub(w.now())
		if remaining <= 0 {
			return nil, false, nil
		}

		timer := time.NewTimer(remaining)
		select {
		case ev := <-w.events:
			timer.Stop()
			return ev, true, nil
		case <-w.closed:
			timer.Stop()
			return nil, false, ErrConnectionClosed
		case <-timer.C:
		}
	}
}
