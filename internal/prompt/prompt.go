// Package prompt asks the desktop user, through the freedesktop notification
// service, whether a requestor may receive the secret.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"

	"github.com/godbus/dbus/v5"

	"go.klb.dev/clipotp/internal/policy"
)

const (
	busName    = "org.freedesktop.Notifications"
	objectPath = dbus.ObjectPath("/org/freedesktop/Notifications")
	iface      = busName

	signalActionInvoked      = iface + ".ActionInvoked"
	signalNotificationClosed = iface + ".NotificationClosed"
)

// actions is the flat key/label list the Notify method expects.
var actions = []string{
	"share", "Share",
	"clear", "Clear",
	"reject", "Reject",
}

// Notifier shows one notification per request and waits for the user.
type Notifier struct {
	conn    *dbus.Conn
	appName string
	log     *slog.Logger
}

// Connect opens a private session bus connection.
func Connect(log *slog.Logger) (*Notifier, error) {
	if log == nil {
		log = slog.Default()
	}
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &Notifier{conn: conn, appName: "clipotp", log: log}, nil
}

// Close releases the bus connection.
func (n *Notifier) Close() error { return n.conn.Close() }

// Ask shows a notification describing req and blocks until the user picks an
// action, the notification is closed, or ctx ends. Closing the notification
// without picking an action, and ctx ending, both yield policy.Continue.
func (n *Notifier) Ask(ctx context.Context, req policy.Request) (policy.Decision, error) {
	match := []dbus.MatchOption{
		dbus.WithMatchObjectPath(objectPath),
		dbus.WithMatchInterface(iface),
	}
	if err := n.conn.AddMatchSignalContext(ctx, match...); err != nil {
		return policy.Continue, fmt.Errorf("subscribe to notification signals: %w", err)
	}
	defer func() { _ = n.conn.RemoveMatchSignal(match...) }()

	// Registered before Notify so a fast click cannot be missed.
	signals := make(chan *dbus.Signal, 16)
	n.conn.Signal(signals)
	defer n.conn.RemoveSignal(signals)

	summary, body := Format(req)
	hints := map[string]dbus.Variant{
		"urgency":  dbus.MakeVariant(byte(2)),
		"resident": dbus.MakeVariant(true),
	}

	var id uint32
	err := n.conn.Object(busName, objectPath).CallWithContext(ctx, iface+".Notify", 0,
		n.appName, uint32(0), "dialog-password", summary, body, actions, hints, int32(0),
	).Store(&id)
	if err != nil {
		return policy.Continue, fmt.Errorf("show notification: %w", err)
	}
	n.log.Debug("prompt shown", "id", id, "requestor", req.Describe())

	for {
		select {
		case <-ctx.Done():
			n.dismiss(id)
			return policy.Continue, nil
		case sig, ok := <-signals:
			if !ok {
				return policy.Continue, errors.New("session bus connection closed")
			}
			d, done := decisionFor(sig, id)
			if !done {
				continue
			}
			if sig.Name == signalActionInvoked {
				n.dismiss(id)
			}
			n.log.Debug("prompt answered", "id", id, "decision", d.String())
			return d, nil
		}
	}
}

// dismiss closes a notification that is still on screen. Resident
// notifications stay up after an action is invoked.
func (n *Notifier) dismiss(id uint32) {
	err := n.conn.Object(busName, objectPath).Call(iface+".CloseNotification", 0, id).Err
	if err != nil {
		n.log.Debug("close notification failed", "id", id, "err", err)
	}
}

// decisionFor interprets a signal for notification id. done is false for
// signals about other notifications or of other kinds.
func decisionFor(sig *dbus.Signal, id uint32) (policy.Decision, bool) {
	if sig == nil || len(sig.Body) < 2 {
		return policy.Continue, false
	}
	if sigID, ok := sig.Body[0].(uint32); !ok || sigID != id {
		return policy.Continue, false
	}

	switch sig.Name {
	case signalActionInvoked:
		key, _ := sig.Body[1].(string)
		return policy.ParseDecision(key), true
	case signalNotificationClosed:
		return policy.Continue, true
	default:
		return policy.Continue, false
	}
}

// Format renders the notification summary and body for req. The body is
// escaped because notification servers may interpret it as markup.
func Format(req policy.Request) (summary, body string) {
	summary = "Clipboard secret requested"
	body = html.EscapeString(req.Describe())
	if req.Title != "" {
		body += "\n" + html.EscapeString(fmt.Sprintf("“%s”", req.Title))
	}
	body += "\nwants to paste the secret."
	return summary, body
}
