package post

// postColumns is the scan list shared by every query returning posts;
// keep it in sync with scanPost.
const postColumns = `
		p.id, p.content, p.image_urls, p.post_type, p.created_at,
		u.id, u.username, u.full_name, u.profile_picture,
		ARRAY(SELECT pl.user_id FROM post_likes pl WHERE pl.post_id = p.id)`

// Post queries
const (
	// InsertPostQuery creates a post
	InsertPostQuery = `
		INSERT INTO posts (user_id, content, image_urls, post_type)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	// SelectPostsByUserQuery retrieves a user's posts, newest first
	SelectPostsByUserQuery = `
		SELECT` + postColumns + `
		FROM posts p
		JOIN users u ON u.id = p.user_id
		WHERE p.user_id = $1
		ORDER BY p.created_at DESC
	`

	// SelectFeedPostsQuery retrieves posts by the caller, the users they
	// follow and their accepted connections, newest first
	SelectFeedPostsQuery = `
		SELECT` + postColumns + `
		FROM posts p
		JOIN users u ON u.id = p.user_id
		WHERE p.user_id = $1
		OR p.user_id IN (SELECT f.followee_id FROM follows f WHERE f.follower_id = $1)
		OR p.user_id IN (
			SELECT CASE WHEN cr.from_user_id = $1 THEN cr.to_user_id ELSE cr.from_user_id END
			FROM connection_requests cr
			WHERE cr.status = 'accepted' AND (cr.from_user_id = $1 OR cr.to_user_id = $1)
		)
		ORDER BY p.created_at DESC
	`

	// LikePostQuery records a like; the composite primary key makes a
	// repeat like a no-op
	LikePostQuery = `
		INSERT INTO post_likes (post_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`

	// UnlikePostQuery removes a like
	UnlikePostQuery = `
		DELETE FROM post_likes
		WHERE post_id = $1 AND user_id = $2
	`
)
