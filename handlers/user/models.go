package user

import "time"

// User represents a user record with its resolved relationship lists.
// Followers, following and connections are derived from the follows and
// connection_requests tables; they are never stored on the user row.
type User struct {
	ID             string    `json:"_id"`
	Email          string    `json:"email"`
	Username       string    `json:"username"`
	FullName       string    `json:"full_name"`
	Bio            string    `json:"bio"`
	Location       string    `json:"location"`
	ProfilePicture string    `json:"profile_picture"`
	CoverPhoto     string    `json:"cover_photo"`
	Followers      []string  `json:"followers"`
	Following      []string  `json:"following"`
	Connections    []string  `json:"connections"`
	CreatedAt      time.Time `json:"createdAt"`
}

// BasicUser represents the trimmed listing used by the test endpoints
type BasicUser struct {
	ID       string `json:"_id"`
	FullName string `json:"full_name"`
	Username string `json:"username"`
}

// DefaultBio is set on lazily created user records
const DefaultBio = "Hey there! I am using PingUp."
