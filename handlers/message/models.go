package message

import "time"

// Message represents a direct message between two users
type Message struct {
	ID          int       `json:"_id"`
	FromUserID  string    `json:"from_user_id"`
	ToUserID    string    `json:"to_user_id"`
	Text        string    `json:"text"`
	MessageType string    `json:"message_type"`
	MediaURL    string    `json:"media_url"`
	Seen        bool      `json:"seen"`
	CreatedAt   time.Time `json:"createdAt"`
}

// RecentMessage is an inbound message with its sender resolved
type RecentMessage struct {
	Message
	FromUser struct {
		ID             string `json:"_id"`
		Username       string `json:"username"`
		FullName       string `json:"full_name"`
		ProfilePicture string `json:"profile_picture"`
	} `json:"from_user"`
}
