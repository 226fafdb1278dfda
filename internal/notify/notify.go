// Package notify sends best-effort desktop notifications over the
// session bus.
package notify

import (
	"log/slog"

	"github.com/godbus/dbus/v5"
)

const (
	notifyDestination = "org.freedesktop.Notifications"
	notifyPath        = "/org/freedesktop/Notifications"
	notifyInterface   = "org.freedesktop.Notifications.Notify"
	appName           = "hypr-layoutd"

	defaultTimeoutMS = 2000
)

// Sink sends desktop notifications via the session bus. A zero Sink is
// usable: Notify becomes a no-op until Dial succeeds.
type Sink struct {
	conn *dbus.Conn
}

// Dial connects to the session bus. Failure is not fatal to the caller:
// notifications should never fail visibly, so callers typically log the
// error and keep running with a disconnected Sink.
func Dial() (*Sink, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, err
	}
	return &Sink{conn: conn}, nil
}

// Close releases the underlying session bus connection.
func (s *Sink) Close() error {
	if s == nil || s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// Notify sends a desktop notification. timeoutMS of 0 uses the default
// of 2000ms. Errors are logged, never returned: this operation should
// never fail visibly to the rest of the daemon.
func (s *Sink) Notify(summary, body string, timeoutMS int) {
	if s == nil || s.conn == nil {
		return
	}
	if timeoutMS <= 0 {
		timeoutMS = defaultTimeoutMS
	}

	obj := s.conn.Object(notifyDestination, dbus.ObjectPath(notifyPath))
	call := obj.Call(notifyInterface, 0,
		appName,             // app_name
		uint32(0),           // replaces_id
		"",                  // app_icon
		summary,             // summary
		body,                // body
		[]string{},          // actions
		map[string]dbus.Variant{}, // hints
		int32(timeoutMS),    // expire_timeout
	)
	if call.Err != nil {
		slog.Debug("[notify] desktop notification failed", "error", call.Err)
	}
}
