package notify

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"
)

const (
	notifService = "org.freedesktop.Notifications"
	notifPath    = "/org/freedesktop/Notifications"
	notifMethod  = "org.freedesktop.Notifications.Notify"
)

// Desktop delivers notifications over the session bus using the
// org.freedesktop.Notifications protocol.
type Desktop struct {
	conn *dbus.Conn
	log  zerolog.Logger
}

func NewDesktop(log zerolog.Logger) (*Desktop, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	return &Desktop{conn: conn, log: log}, nil
}

func (d *Desktop) Notify(ctx context.Context, n Notification) error {
	hints := map[string]dbus.Variant{}
	if n.Image != "" {
		hints["image-path"] = dbus.MakeVariant(n.Image)
	}
	if n.Sound != "" {
		hints["sound-file"] = dbus.MakeVariant(n.Sound)
	}

	obj := d.conn.Object(notifService, notifPath)
	call := obj.CallWithContext(ctx, notifMethod, 0,
		"fmn",     // app name
		uint32(0), // no notification to replace
		"",        // no app icon, Image goes through hints
		n.Summary,
		n.Body,
		[]string{}, // no actions
		hints,
		int32(-1), // server-default expiry
	)
	if call.Err != nil {
		return fmt.Errorf("desktop notification: %w", call.Err)
	}
	d.log.Debug().Str("summary", n.Summary).Msg("desktop notification sent")
	return nil
}

func (d *Desktop) Close() error { return d.conn.Close() }
