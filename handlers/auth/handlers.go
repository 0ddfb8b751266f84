package auth

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"pingup/backend/handlers/api"
)

// LoginResponse represents the response for signup and login requests
type LoginResponse struct {
	ID       string `json:"_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

// SignupHandler handles user registration
// Used by: /api/auth/signup
func SignupHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var signupRequest struct {
			Email    string `json:"email"`
			Password string `json:"password"`
			Username string `json:"username"`
			FullName string `json:"full_name"`
		}

		if err := json.NewDecoder(r.Body).Decode(&signupRequest); err != nil {
			api.Fail(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if signupRequest.Email == "" || signupRequest.Password == "" {
			api.Fail(w, http.StatusBadRequest, "Email and password are required")
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(signupRequest.Password), bcrypt.DefaultCost)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "Error hashing password")
			return
		}

		userID := uuid.NewString()
		_, err = db.Exec(InsertUserQuery,
			userID,
			signupRequest.Email,
			signupRequest.Username,
			signupRequest.FullName,
			string(hashedPassword),
		)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
				api.Fail(w, http.StatusConflict, "Email or username already exists")
				return
			}
			log.Printf("Error creating user: %v", err)
			api.Fail(w, http.StatusInternalServerError, "Error creating user")
			return
		}

		token, err := GenerateToken(Claims{
			UserID:   userID,
			Email:    signupRequest.Email,
			FullName: signupRequest.FullName,
			Username: signupRequest.Username,
		})
		if err != nil {
			log.Printf("Error generating token: %v", err)
			api.Fail(w, http.StatusInternalServerError, "Error generating token")
			return
		}

		api.JSON(w, http.StatusOK, api.Fields{"user": LoginResponse{
			ID:       userID,
			Email:    signupRequest.Email,
			Username: signupRequest.Username,
			Token:    token,
		}})
	}
}

// LoginHandler handles user authentication
// Used by: /api/auth/login
func LoginHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var loginRequest struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}

		if err := json.NewDecoder(r.Body).Decode(&loginRequest); err != nil {
			api.Fail(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		var (
			userID, email, username, fullName string
			hashedPassword                    string
		)
		err := db.QueryRow(SelectCredentialsQuery, loginRequest.Email).Scan(
			&userID, &email, &username, &fullName, &hashedPassword,
		)
		if err == sql.ErrNoRows {
			api.Fail(w, http.StatusUnauthorized, "Invalid credentials")
			return
		} else if err != nil {
			log.Printf("Error looking up user: %v", err)
			api.Fail(w, http.StatusInternalServerError, "Database error")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(loginRequest.Password)); err != nil {
			api.Fail(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		token, err := GenerateToken(Claims{
			UserID:   userID,
			Email:    email,
			FullName: fullName,
			Username: username,
		})
		if err != nil {
			log.Printf("Error generating token: %v", err)
			api.Fail(w, http.StatusInternalServerError, "Error generating token")
			return
		}

		api.JSON(w, http.StatusOK, api.Fields{"user": LoginResponse{
			ID:       userID,
			Email:    email,
			Username: username,
			Token:    token,
		}})
	}
}
