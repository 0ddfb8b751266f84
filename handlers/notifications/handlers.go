package notifications

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"pingup/backend/handlers/api"
	"pingup/backend/handlers/auth"
)

// Notification represents a stored notification
type Notification struct {
	ID        int        `json:"_id"`
	Type      string     `json:"type"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"createdAt"`
	ReadAt    *time.Time `json:"read_at"`
}

var notificationConnections = make(map[string]*websocket.Conn)
var notifLock sync.Mutex

// GetNotificationsHandler returns the caller's notifications, newest first
func GetNotificationsHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := auth.GetUserIDFromToken(r)
		if err != nil {
			api.Fail(w, http.StatusUnauthorized, "Not Authenticated")
			return
		}

		rows, err := db.Query(SelectNotificationsQuery, userID)
		if err != nil {
			log.Printf("Error querying notifications: %v", err)
			api.Fail(w, http.StatusInternalServerError, "Database error")
			return
		}
		defer rows.Close()

		notifications := []Notification{}
		for rows.Next() {
			var n Notification
			if err := rows.Scan(&n.ID, &n.Type, &n.Content, &n.CreatedAt, &n.ReadAt); err != nil {
				log.Printf("Error scanning notification: %v", err)
				api.Fail(w, http.StatusInternalServerError, "Database error")
				return
			}
			notifications = append(notifications, n)
		}
		if err := rows.Err(); err != nil {
			log.Printf("Error iterating over rows: %v", err)
			api.Fail(w, http.StatusInternalServerError, "Database error")
			return
		}

		api.JSON(w, http.StatusOK, api.Fields{"notifications": notifications})
	}
}

// MarkNotificationsAsReadHandler stamps all unread notifications
func MarkNotificationsAsReadHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := auth.GetUserIDFromToken(r)
		if err != nil {
			api.Fail(w, http.StatusUnauthorized, "Not Authenticated")
			return
		}

		_, err = db.Exec(MarkNotificationsReadQuery, userID)
		if err != nil {
			log.Printf("Error marking notifications read: %v", err)
			api.Fail(w, http.StatusInternalServerError, "Database error")
			return
		}

		api.Success(w, "Notifications marked as read")
	}
}

// HandleNotificationWebSocket registers a websocket connection for
// realtime notification pushes. The token rides the query string since
// browsers cannot set websocket headers.
func HandleNotificationWebSocket() http.HandlerFunc {
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

		upgrader := websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		// greet before registering so SendNotification can never write
		// concurrently with this frame
		data, _ := json.Marshal(map[string]string{"type": "connected"})
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			conn.Close()
			return
		}

		defer func() {
			notifLock.Lock()
			delete(notificationConnections, userID)
			notifLock.Unlock()
			conn.Close()
		}()

		notifLock.Lock()
		notificationConnections[userID] = conn
		notifLock.Unlock()

		// pings are answered by the default ping handler; the read loop
		// only keeps the connection drained until it closes
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}
}

// SendNotification pushes a notification type to a connected user;
// no-op when the user has no open socket. The write happens under
// notifLock, which serializes writers on the shared connection.
func SendNotification(userID string, messageType string) {
	data, err := json.Marshal(map[string]string{"type": messageType})
	if err != nil {
		return
	}

	notifLock.Lock()
	defer notifLock.Unlock()
	if conn, exists := notificationConnections[userID]; exists {
		conn.WriteMessage(websocket.TextMessage, data)
	}
}
