// Package notify raises desktop notifications for operations that failed
// while the user was not looking at the tool.
package notify

import (
	"fmt"
	"runtime"

	"github.com/godbus/dbus/v5"
)

const (
	busName    = "org.freedesktop.Notifications"
	objectPath = "/org/freedesktop/Notifications"
	notifyCall = "org.freedesktop.Notifications.Notify"
)

type Notifier interface {
	Notify(title, body string) error
}

// Noop drops every notification.
type Noop struct{}

func (Noop) Notify(string, string) error { return nil }

// DBus sends notifications over the session bus.
type DBus struct {
	conn    *dbus.Conn
	appName string
	timeout int32
}

func NewDBus(appName string, timeoutMs int32) (*DBus, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect to session bus: %w", err)
	}
	return &DBus{conn: conn, appName: appName, timeout: timeoutMs}, nil
}

func (d *DBus) Notify(title, body string) error {
	obj := d.conn.Object(busName, objectPath)
	call := obj.Call(notifyCall, 0,
		d.appName,
		uint32(0),
		"dialog-error",
		title,
		body,
		[]string{},
		map[string]dbus.Variant{"urgency": dbus.MakeVariant(byte(2))},
		d.timeout,
	)
	if call.Err != nil {
		return fmt.Errorf("notify: %w", call.Err)
	}
	return nil
}

// New returns a D-Bus notifier on Linux when enabled, Noop otherwise. A
// missing session bus degrades to Noop.
func New(enabled bool, appName string, timeoutMs int32) Notifier {
	if !enabled || runtime.GOOS != "linux" {
		return Noop{}
	}
	n, err := NewDBus(appName, timeoutMs)
	if err != nil {
		return Noop{}
	}
	return n
}
