package notifications

// Notification queries
const (
	// SelectNotificationsQuery retrieves a user's notifications, newest
	// first
	SelectNotificationsQuery = `
		SELECT id, type, content, created_at, read_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	// MarkNotificationsReadQuery stamps all unread notifications of a user
	MarkNotificationsReadQuery = `
		UPDATE notifications
		SET read_at = CURRENT_TIMESTAMP
		WHERE user_id = $1 AND read_at IS NULL
	`
)
