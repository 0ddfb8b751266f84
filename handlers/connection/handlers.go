package connection

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"pingup/backend/handlers/api"
	"pingup/backend/handlers/auth"
	"pingup/backend/handlers/user"
	"pingup/backend/services/events"
)

// SendConnectionRequestHandler creates a pending connection request
// toward the given user. Rate limited to 20 requests per trailing 24
// hours; the pair lookup is symmetric, so it does not matter which side
// initiated an existing request.
func SendConnectionRequestHandler(db *sql.DB, dispatcher *events.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := auth.GetUserIDFromToken(r)
		if err != nil {
			api.Fail(w, http.StatusUnauthorized, "Not Authenticated")
			return
		}

		var body struct {
			ID string `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ID == "" {
			api.Fail(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if body.ID == userID {
			api.Fail(w, http.StatusBadRequest, "You cannot connect with yourself")
			return
		}

		var recent int
		if err := db.QueryRow(CountRecentRequestsQuery, userID).Scan(&recent); err != nil {
			log.Printf("Error counting recent requests: %v", err)
			api.Fail(w, http.StatusInternalServerError, "Database error")
			return
		}
		if recent >= maxRequestsPerDay {
			api.Fail(w, http.StatusOK, "You have sent more than 20 connection requests in the last 24 hours")
			return
		}

		var existing Request
		err = db.QueryRow(FindPairRequestQuery, userID, body.ID).Scan(
			&existing.ID, &existing.FromUserID, &existing.ToUserID, &existing.Status,
		)
		if err == sql.ErrNoRows {
			var req Request
			err = db.QueryRow(CreateRequestQuery, userID, body.ID).Scan(&req.ID, &req.CreatedAt)
			if err != nil {
				log.Printf("Error creating connection request: %v", err)
				api.Fail(w, http.StatusInternalServerError, "Error creating connection request")
				return
			}

			dispatcher.Send(events.Event{
				Name: events.ConnectionRequestCreated,
				Data: map[string]string{
					"connectionId": strconv.Itoa(req.ID),
					"to_user_id":   body.ID,
				},
			})

			api.Success(w, "Connection request sent successfully")
			return
		} else if err != nil {
			log.Printf("Error checking existing request: %v", err)
			api.Fail(w, http.StatusInternalServerError, "Database error")
			return
		}

		if existing.Status == StatusAccepted {
			api.Fail(w, http.StatusOK, "You are already connected with this user")
			return
		}
		api.Fail(w, http.StatusOK, "Connection requests pending")
	}
}

// AcceptConnectionRequestHandler resolves a pending request addressed
// to the caller. Accepting is direction-sensitive: a request the caller
// sent cannot be accepted by the caller.
func AcceptConnectionRequestHandler(db *sql.DB, dispatcher *events.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := auth.GetUserIDFromToken(r)
		if err != nil {
			api.Fail(w, http.StatusUnauthorized, "Not Authenticated")
			return
		}

		var body struct {
			ID string `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ID == "" {
			api.Fail(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		result, err := db.Exec(AcceptRequestQuery, body.ID, userID)
		if err != nil {
			log.Printf("Error accepting connection request: %v", err)
			api.Fail(w, http.StatusInternalServerError, "Database error")
			return
		}

		affected, err := result.RowsAffected()
		if err != nil {
			log.Printf("Error reading result: %v", err)
			api.Fail(w, http.StatusInternalServerError, "Database error")
			return
		}
		if affected == 0 {
			api.Fail(w, http.StatusNotFound, "Connection not found")
			return
		}

		dispatcher.Send(events.Event{
			Name: events.ConnectionAccepted,
			Data: map[string]string{"to_user_id": body.ID},
		})

		api.Success(w, "Connection accepted successfully")
	}
}

// DeclineConnectionRequestHandler resolves a pending request addressed
// to the caller as declined. Declined is terminal; the pair may send a
// fresh request afterwards.
func DeclineConnectionRequestHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := auth.GetUserIDFromToken(r)
		if err != nil {
			api.Fail(w, http.StatusUnauthorized, "Not Authenticated")
			return
		}

		var body struct {
			ID string `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ID == "" {
			api.Fail(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		result, err := db.Exec(DeclineRequestQuery, body.ID, userID)
		if err != nil {
			log.Printf("Error declining connection request: %v", err)
			api.Fail(w, http.StatusInternalServerError, "Database error")
			return
		}

		affected, err := result.RowsAffected()
		if err != nil {
			log.Printf("Error reading result: %v", err)
			api.Fail(w, http.StatusInternalServerError, "Database error")
			return
		}
		if affected == 0 {
			api.Fail(w, http.StatusNotFound, "Connection not found")
			return
		}

		api.Success(w, "Connection declined")
	}
}

// GetUserConnectionsHandler returns the caller's connections, followers
// and following resolved to full user records, plus the senders of
// inbound pending requests
func GetUserConnectionsHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := auth.GetUserIDFromToken(r)
		if err != nil {
			api.Fail(w, http.StatusUnauthorized, "Not Authenticated")
			return
		}

		connections, err := listUsers(db, SelectConnectionsQuery, userID)
		if err != nil {
			log.Printf("Error querying connections: %v", err)
			api.Fail(w, http.StatusInternalServerError, "Database error")
			return
		}

		followers, err := listUsers(db, SelectFollowersQuery, userID)
		if err != nil {
			log.Printf("Error querying followers: %v", err)
			api.Fail(w, http.StatusInternalServerError, "Database error")
			return
		}

		following, err := listUsers(db, SelectFollowingQuery, userID)
		if err != nil {
			log.Printf("Error querying following: %v", err)
			api.Fail(w, http.StatusInternalServerError, "Database error")
			return
		}

		pending, err := listUsers(db, SelectPendingRequestersQuery, userID)
		if err != nil {
			log.Printf("Error querying pending requests: %v", err)
			api.Fail(w, http.StatusInternalServerError, "Database error")
			return
		}

		api.JSON(w, http.StatusOK, api.Fields{
			"connections":        connections,
			"followers":          followers,
			"following":          following,
			"pendingConnections": pending,
		})
	}
}

func listUsers(db *sql.DB, query, userID string) ([]user.User, error) {
	rows, err := db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []user.User{}
	for rows.Next() {
		u, err := user.ScanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
