package events

import (
	"database/sql"
	"fmt"
	"log"
)

// Event names accepted by the dispatcher.
const (
	ConnectionRequestCreated = "app/connection-request"
	ConnectionAccepted       = "app/connection-accepted"
	NewMessage               = "app/new-message"
)

// Event is a named application event with its payload.
type Event struct {
	Name string
	Data map[string]string
}

// NotifyFunc pushes a realtime nudge to a connected user; best-effort.
type NotifyFunc func(userID, messageType string)

const insertNotificationQuery = `
	INSERT INTO notifications (user_id, type, content)
	VALUES ($1, $2, $3)
`

// Dispatcher turns application events into notification rows and
// websocket pushes. Delivery is fire-and-forget: a failed delivery is
// logged and never rolls back the write that triggered it.
type Dispatcher struct {
	db     *sql.DB
	notify NotifyFunc
}

func NewDispatcher(db *sql.DB, notify NotifyFunc) *Dispatcher {
	return &Dispatcher{db: db, notify: notify}
}

// Send dispatches the event asynchronously.
func (d *Dispatcher) Send(evt Event) {
	go func() {
		if err := d.Deliver(evt); err != nil {
			log.Printf("Error delivering event %s: %v", evt.Name, err)
		}
	}()
}

// Deliver processes one event synchronously.
func (d *Dispatcher) Deliver(evt Event) error {
	var (
		notificationType string
		content          string
	)
	switch evt.Name {
	case ConnectionRequestCreated:
		notificationType = "connection_request"
		content = "You have a new connection request"
	case ConnectionAccepted:
		notificationType = "connection_accepted"
		content = "Your connection request was accepted"
	case NewMessage:
		notificationType = "message"
		content = "You have a new message"
	default:
		return fmt.Errorf("unknown event %q", evt.Name)
	}

	target := evt.Data["to_user_id"]
	if target == "" {
		return fmt.Errorf("event %s missing to_user_id", evt.Name)
	}

	if _, err := d.db.Exec(insertNotificationQuery, target, notificationType, content); err != nil {
		return fmt.Errorf("error storing notification: %v", err)
	}

	if d.notify != nil {
		d.notify(target, notificationType)
	}
	return nil
}
