// Note: To generate test data, use:
// curl -X POST "http://localhost:8080/api/test/generate-users?count=5" -H "Content-Type: application/json"

package handlers

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"pingup/backend/handlers/api"
)

// GenerateTestDataHandler creates fake users with follow edges and a
// few pending connection requests between them
func GenerateTestDataHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count := 10
		if countParam := r.URL.Query().Get("count"); countParam != "" {
			parsedCount, err := strconv.Atoi(countParam)
			if err != nil || parsedCount < 1 || parsedCount > 150 {
				api.Fail(w, http.StatusBadRequest, "Count must be between 1 and 150")
				return
			}
			count = parsedCount
		}

		tx, err := db.Begin()
		if err != nil {
			log.Printf("Error starting transaction: %v", err)
			api.Fail(w, http.StatusInternalServerError, "Could not start generating")
			return
		}
		defer tx.Rollback()

		// every generated account gets the same known password
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "Error hashing password")
			return
		}

		ids := make([]string, 0, count)
		for i := 0; i < count; i++ {
			id := uuid.NewString()
			username := strings.ToLower(gofakeit.Username())
			email := fmt.Sprintf("%s@%s", username, gofakeit.DomainName())
			fullName := gofakeit.Name()
			bio := gofakeit.Sentence(8)
			location := fmt.Sprintf("%s, %s", gofakeit.City(), gofakeit.StateAbr())

			_, err := tx.Exec(`
				INSERT INTO users (id, email, username, full_name, bio, location, password_hash)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			`, id, email, username, fullName, bio, location, string(hashedPassword))
			if err != nil {
				log.Printf("Error creating test user: %v", err)
				api.Fail(w, http.StatusInternalServerError, "Error creating test users")
				return
			}
			ids = append(ids, id)
		}

		// sprinkle follow edges between the generated users
		followEdges := 0
		for _, followerID := range ids {
			for _, followeeID := range ids {
				if followerID == followeeID || !gofakeit.Bool() {
					continue
				}
				if _, err := tx.Exec(`
					INSERT INTO follows (follower_id, followee_id)
					VALUES ($1, $2)
					ON CONFLICT DO NOTHING
				`, followerID, followeeID); err != nil {
					log.Printf("Error creating follow edge: %v", err)
					api.Fail(w, http.StatusInternalServerError, "Error creating test data")
					return
				}
				followEdges++
			}
		}

		// a pending connection request between consecutive users
		requests := 0
		for i := 0; i+1 < len(ids); i += 2 {
			if _, err := tx.Exec(`
				INSERT INTO connection_requests (from_user_id, to_user_id, status)
				VALUES ($1, $2, 'pending')
			`, ids[i], ids[i+1]); err != nil {
				log.Printf("Error creating connection request: %v", err)
				api.Fail(w, http.StatusInternalServerError, "Error creating test data")
				return
			}
			requests++
		}

		if err := tx.Commit(); err != nil {
			log.Printf("Error committing transaction: %v", err)
			api.Fail(w, http.StatusInternalServerError, "Error creating test data")
			return
		}

		api.JSON(w, http.StatusOK, api.Fields{
			"message":  fmt.Sprintf("Generated %d users", len(ids)),
			"users":    len(ids),
			"follows":  followEdges,
			"requests": requests,
		})
	}
}
