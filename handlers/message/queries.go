package message

// Message queries
const (
	// InsertMessageQuery stores a message
	InsertMessageQuery = `
		INSERT INTO messages (from_user_id, to_user_id, text, message_type, media_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	// SelectThreadQuery retrieves the conversation between two users,
	// oldest first
	SelectThreadQuery = `
		SELECT id, from_user_id, to_user_id, text, message_type, media_url, seen, created_at
		FROM messages
		WHERE (from_user_id = $1 AND to_user_id = $2)
			OR (from_user_id = $2 AND to_user_id = $1)
		ORDER BY created_at ASC
	`

	// MarkThreadSeenQuery stamps inbound messages of a thread as seen
	MarkThreadSeenQuery = `
		UPDATE messages
		SET seen = TRUE
		WHERE from_user_id = $2 AND to_user_id = $1 AND seen = FALSE
	`

	// SelectRecentMessagesQuery retrieves the caller's inbound messages
	// with senders resolved, newest first
	SelectRecentMessagesQuery = `
		SELECT m.id, m.from_user_id, m.to_user_id, m.text, m.message_type,
			m.media_url, m.seen, m.created_at,
			u.id, u.username, u.full_name, u.profile_picture
		FROM messages m
		JOIN users u ON u.id = m.from_user_id
		WHERE m.to_user_id = $1
		ORDER BY m.created_at DESC
	`
)
