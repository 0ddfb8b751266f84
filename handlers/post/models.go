package post

import "time"

// Author is the subset of the user record embedded in post listings
type Author struct {
	ID             string `json:"_id"`
	Username       string `json:"username"`
	FullName       string `json:"full_name"`
	ProfilePicture string `json:"profile_picture"`
}

// Post represents a post with its author and like state
type Post struct {
	ID        int       `json:"_id"`
	User      Author    `json:"user"`
	Content   string    `json:"content"`
	ImageURLs []string  `json:"image_urls"`
	PostType  string    `json:"post_type"`
	Likes     []string  `json:"likes_count"`
	CreatedAt time.Time `json:"createdAt"`
}
