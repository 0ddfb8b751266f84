package connection

// Connection queries
const (
	// CountRecentRequestsQuery counts requests a user created in the
	// trailing 24 hours
	CountRecentRequestsQuery = `
		SELECT COUNT(*)
		FROM connection_requests
		WHERE from_user_id = $1
		AND created_at > NOW() - INTERVAL '24 hours'
	`

	// FindPairRequestQuery finds the active request between an unordered
	// pair; declined rows do not block a new request
	FindPairRequestQuery = `
		SELECT id, from_user_id, to_user_id, status
		FROM connection_requests
		WHERE status <> 'declined'
		AND ((from_user_id = $1 AND to_user_id = $2)
			OR (from_user_id = $2 AND to_user_id = $1))
		ORDER BY created_at DESC
		LIMIT 1
	`

	// CreateRequestQuery creates a pending request
	CreateRequestQuery = `
		INSERT INTO connection_requests (from_user_id, to_user_id, status)
		VALUES ($1, $2, 'pending')
		RETURNING id, created_at
	`

	// AcceptRequestQuery resolves a pending request addressed to the
	// accepter; direction-sensitive on purpose
	AcceptRequestQuery = `
		UPDATE connection_requests
		SET status = 'accepted', updated_at = NOW()
		WHERE from_user_id = $1 AND to_user_id = $2 AND status = 'pending'
	`

	// DeclineRequestQuery resolves a pending request addressed to the
	// decliner
	DeclineRequestQuery = `
		UPDATE connection_requests
		SET status = 'declined', updated_at = NOW()
		WHERE from_user_id = $1 AND to_user_id = $2 AND status = 'pending'
	`

	// SelectConnectionsQuery resolves the accepted connections of a user
	// to full user records
	SelectConnectionsQuery = `
		SELECT` + userColumns + `
		FROM connection_requests cr
		JOIN users u ON u.id = CASE WHEN cr.from_user_id = $1 THEN cr.to_user_id ELSE cr.from_user_id END
		WHERE cr.status = 'accepted'
		AND (cr.from_user_id = $1 OR cr.to_user_id = $1)
		ORDER BY cr.updated_at DESC
	`

	// SelectFollowersQuery resolves a user's followers to full user records
	SelectFollowersQuery = `
		SELECT` + userColumns + `
		FROM follows f
		JOIN users u ON u.id = f.follower_id
		WHERE f.followee_id = $1
		ORDER BY f.created_at DESC
	`

	// SelectFollowingQuery resolves the users someone follows to full
	// user records
	SelectFollowingQuery = `
		SELECT` + userColumns + `
		FROM follows f
		JOIN users u ON u.id = f.followee_id
		WHERE f.follower_id = $1
		ORDER BY f.created_at DESC
	`

	// SelectPendingRequestersQuery resolves the senders of inbound
	// pending requests to full user records
	SelectPendingRequestersQuery = `
		SELECT` + userColumns + `
		FROM connection_requests cr
		JOIN users u ON u.id = cr.from_user_id
		WHERE cr.to_user_id = $1 AND cr.status = 'pending'
		ORDER BY cr.created_at DESC
	`
)

// userColumns mirrors the user package's scan list so these queries can
// be scanned with user.User records.
const userColumns = `
		u.id, u.email, u.username, u.full_name, u.bio, u.location,
		u.profile_picture, u.cover_photo, u.created_at,
		ARRAY(SELECT f2.follower_id FROM follows f2 WHERE f2.followee_id = u.id),
		ARRAY(SELECT f2.followee_id FROM follows f2 WHERE f2.follower_id = u.id),
		ARRAY(SELECT CASE WHEN cr2.from_user_id = u.id THEN cr2.to_user_id ELSE cr2.from_user_id END
			FROM connection_requests cr2
			WHERE cr2.status = 'accepted' AND (cr2.from_user_id = u.id OR cr2.to_user_id = u.id))`
