package connection

import "time"

// Request statuses. pending moves to accepted or declined; both are
// terminal, and a declined pair may be requested again.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusDeclined = "declined"
)

// maxRequestsPerDay caps connection requests created by one user in a
// trailing 24 hour window
const maxRequestsPerDay = 20

// Request represents a connection request between two users
type Request struct {
	ID         int       `json:"_id"`
	FromUserID string    `json:"from_user_id"`
	ToUserID   string    `json:"to_user_id"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
