package user

// userColumns is the scan list shared by every query returning full
// user records; keep it in sync with scanUser.
const userColumns = `
		u.id, u.email, u.username, u.full_name, u.bio, u.location,
		u.profile_picture, u.cover_photo, u.created_at,
		ARRAY(SELECT f.follower_id FROM follows f WHERE f.followee_id = u.id),
		ARRAY(SELECT f.followee_id FROM follows f WHERE f.follower_id = u.id),
		ARRAY(SELECT CASE WHEN cr.from_user_id = u.id THEN cr.to_user_id ELSE cr.from_user_id END
			FROM connection_requests cr
			WHERE cr.status = 'accepted' AND (cr.from_user_id = u.id OR cr.to_user_id = u.id))`

// User queries
const (
	// SelectUserQuery retrieves a user with resolved relationship lists
	SelectUserQuery = `
		SELECT` + userColumns + `
		FROM users u
		WHERE u.id = $1
	`

	// SelectUserByUsernameQuery retrieves a user by username
	SelectUserByUsernameQuery = `
		SELECT` + userColumns + `
		FROM users u
		WHERE u.username = $1
	`

	// InsertUserIfAbsentQuery lazily materializes a user record from
	// token claims; a concurrent insert wins quietly
	InsertUserIfAbsentQuery = `
		INSERT INTO users (id, email, username, full_name, bio)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`

	// UpdateUserQuery applies a profile patch
	UpdateUserQuery = `
		UPDATE users
		SET username = $2, bio = $3, location = $4, full_name = $5,
			profile_picture = $6, cover_photo = $7
		WHERE id = $1
	`

	// UsernameTakenQuery checks whether another user holds a username
	UsernameTakenQuery = `
		SELECT EXISTS (
			SELECT 1 FROM users WHERE username = $1 AND id <> $2
		)
	`

	// DiscoverUsersQuery finds users by case-insensitive substring match,
	// excluding the caller
	DiscoverUsersQuery = `
		SELECT` + userColumns + `
		FROM users u
		WHERE u.id <> $1
		AND (u.username ILIKE '%' || $2 || '%'
			OR u.email ILIKE '%' || $2 || '%'
			OR u.full_name ILIKE '%' || $2 || '%'
			OR u.location ILIKE '%' || $2 || '%')
		ORDER BY u.created_at DESC
	`

	// FollowQuery records a directed follow edge; the composite primary
	// key makes a repeat follow a no-op
	FollowQuery = `
		INSERT INTO follows (follower_id, followee_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`

	// UnfollowQuery removes a follow edge; idempotent
	UnfollowQuery = `
		DELETE FROM follows
		WHERE follower_id = $1 AND followee_id = $2
	`

	// SelectAllUsersQuery lists users for the test endpoint
	SelectAllUsersQuery = `
		SELECT id, full_name, username
		FROM users
		ORDER BY created_at DESC
	`
)
