package message

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"pingup/backend/handlers/api"
	"pingup/backend/handlers/auth"
	"pingup/backend/services/images"
)

var (
	upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
	messageConnections = make(map[string]*websocket.Conn)
	connLock           sync.Mutex
)

// SendMessageHandler stores a message and pushes it to the recipient's
// websocket when connected. The push is best-effort: a closed socket
// does not fail the send.
func SendMessageHandler(db *sql.DB, store *images.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := auth.GetUserIDFromToken(r)
		if err != nil {
			api.Fail(w, http.StatusUnauthorized, "Not Authenticated")
			return
		}

		if err := r.ParseMultipartForm(images.MaxFileSize); err != nil && err != http.ErrNotMultipart {
			api.Fail(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		toUserID := r.FormValue("to_user_id")
		text := r.FormValue("text")
		if toUserID == "" {
			api.Fail(w, http.StatusBadRequest, "Recipient is required")
			return
		}

		messageType := "text"
		mediaURL := ""
		if file, header, err := r.FormFile("image"); err == nil {
			defer file.Close()
			url, err := store.Save(file, header, 1280)
			if err != nil {
				api.Fail(w, http.StatusBadRequest, err.Error())
				return
			}
			mediaURL = url
			messageType = "image"
		}
		if text == "" && mediaURL == "" {
			api.Fail(w, http.StatusBadRequest, "Message cannot be empty")
			return
		}

		msg := Message{
			FromUserID:  userID,
			ToUserID:    toUserID,
			Text:        text,
			MessageType: messageType,
			MediaURL:    mediaURL,
		}
		err = db.QueryRow(InsertMessageQuery, userID, toUserID, text, messageType, mediaURL).
			Scan(&msg.ID, &msg.CreatedAt)
		if err != nil {
			log.Printf("Error storing message: %v", err)
			api.Fail(w, http.StatusInternalServerError, "Error sending message")
			return
		}

		pushMessage(toUserID, msg)

		api.JSON(w, http.StatusOK, api.Fields{"message": msg})
	}
}

// GetChatMessagesHandler returns the thread between the caller and the
// given user, marking inbound messages as seen
func GetChatMessagesHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := auth.GetUserIDFromToken(r)
		if err != nil {
			api.Fail(w, http.StatusUnauthorized, "Not Authenticated")
			return
		}

		var body struct {
			ToUserID string `json:"to_user_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ToUserID == "" {
			api.Fail(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		rows, err := db.Query(SelectThreadQuery, userID, body.ToUserID)
		if err != nil {
			log.Printf("Error querying messages: %v", err)
			api.Fail(w, http.StatusInternalServerError, "Database error")
			return
		}
		defer rows.Close()

		messages := []Message{}
		for rows.Next() {
			var m Message
			err := rows.Scan(&m.ID, &m.FromUserID, &m.ToUserID, &m.Text,
				&m.MessageType, &m.MediaURL, &m.Seen, &m.CreatedAt)
			if err != nil {
				log.Printf("Error scanning message: %v", err)
				api.Fail(w, http.StatusInternalServerError, "Database error")
				return
			}
			messages = append(messages, m)
		}
		if err := rows.Err(); err != nil {
			log.Printf("Error iterating over rows: %v", err)
			api.Fail(w, http.StatusInternalServerError, "Database error")
			return
		}

		if _, err := db.Exec(MarkThreadSeenQuery, userID, body.ToUserID); err != nil {
			log.Printf("Error marking messages seen: %v", err)
		}

		api.JSON(w, http.StatusOK, api.Fields{"messages": messages})
	}
}

// GetUserRecentMessagesHandler returns the caller's inbound messages
// with senders resolved, newest first
func GetUserRecentMessagesHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := auth.GetUserIDFromToken(r)
		if err != nil {
			api.Fail(w, http.StatusUnauthorized, "Not Authenticated")
			return
		}

		rows, err := db.Query(SelectRecentMessagesQuery, userID)
		if err != nil {
			log.Printf("Error querying recent messages: %v", err)
			api.Fail(w, http.StatusInternalServerError, "Database error")
			return
		}
		defer rows.Close()

		messages := []RecentMessage{}
		for rows.Next() {
			var m RecentMessage
			err := rows.Scan(&m.ID, &m.FromUserID, &m.ToUserID, &m.Text,
				&m.MessageType, &m.MediaURL, &m.Seen, &m.CreatedAt,
				&m.FromUser.ID, &m.FromUser.Username, &m.FromUser.FullName,
				&m.FromUser.ProfilePicture)
			if err != nil {
				log.Printf("Error scanning message: %v", err)
				api.Fail(w, http.StatusInternalServerError, "Database error")
				return
			}
			messages = append(messages, m)
		}
		if err := rows.Err(); err != nil {
			log.Printf("Error iterating over rows: %v", err)
			api.Fail(w, http.StatusInternalServerError, "Database error")
			return
		}

		api.JSON(w, http.StatusOK, api.Fields{"messages": messages})
	}
}

// HandleMessagesWebSocket registers a websocket connection for realtime
// message pushes
func HandleMessagesWebSocket() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "No token provided", http.StatusUnauthorized)
			return
		}

		claims, err := auth.ParseToken(token)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		userID := claims.UserID

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("Error upgrading connection: %v", err)
			return
		}

		defer func() {
			connLock.Lock()
			delete(messageConnections, userID)
			connLock.Unlock()
			conn.Close()
		}()

		connLock.Lock()
		messageConnections[userID] = conn
		connLock.Unlock()

		// pings are answered by the default ping handler; the read loop
		// only keeps the connection drained until it closes
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}
}

// pushMessage writes to the recipient's socket while holding connLock;
// the connection allows at most one concurrent writer.
func pushMessage(userID string, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	connLock.Lock()
	defer connLock.Unlock()
	if conn, exists := messageConnections[userID]; exists {
		conn.WriteMessage(websocket.TextMessage, data)
	}
}
