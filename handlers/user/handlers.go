package user

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"pingup/backend/handlers/api"
	"pingup/backend/handlers/auth"
	"pingup/backend/handlers/post"
	"pingup/backend/services/images"
)

// GetUserDataHandler returns the authenticated user's record, creating
// it from token claims on first access
func GetUserDataHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := auth.GetClaimsFromToken(r)
		if err != nil {
			api.Fail(w, http.StatusUnauthorized, "Not Authenticated")
			return
		}

		u, err := GetUserByID(db, claims.UserID)
		if err == sql.ErrNoRows {
			_, err = db.Exec(InsertUserIfAbsentQuery,
				claims.UserID, claims.Email, claims.Username, claims.FullName, DefaultBio)
			if err != nil {
				log.Printf("Error creating user %s: %v", claims.UserID, err)
				api.Fail(w, http.StatusInternalServerError, "Error creating user")
				return
			}
			u, err = GetUserByID(db, claims.UserID)
		}
		if err != nil {
			log.Printf("Error fetching user %s: %v", claims.UserID, err)
			api.Fail(w, http.StatusInternalServerError, "Database error")
			return
		}

		api.JSON(w, http.StatusOK, api.Fields{"user": u})
	}
}

// UpdateUserHandler applies a partial profile update. Username changes
// are silently reverted when the name is held by another user; profile
// and cover image parts go through the image store.
func UpdateUserHandler(db *sql.DB, store *images.Store) http.HandlerFunc {
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

		existing, err := GetUserByID(db, userID)
		if err == sql.ErrNoRows {
			api.Fail(w, http.StatusNotFound, "User not found")
			return
		} else if err != nil {
			log.Printf("Error fetching user %s: %v", userID, err)
			api.Fail(w, http.StatusInternalServerError, "Database error")
			return
		}

		username := formValue(r, "username", existing.Username)
		if username == "" {
			username = existing.Username
		}
		if username != existing.Username {
			var taken bool
			if err := db.QueryRow(UsernameTakenQuery, username, userID).Scan(&taken); err != nil {
				log.Printf("Error checking username %q: %v", username, err)
				api.Fail(w, http.StatusInternalServerError, "Database error")
				return
			}
			if taken {
				// keep the old username rather than surfacing a conflict
				username = existing.Username
			}
		}

		bio := formValue(r, "bio", existing.Bio)
		location := formValue(r, "location", existing.Location)
		fullName := formValue(r, "full_name", existing.FullName)

		profilePicture := existing.ProfilePicture
		if file, header, err := r.FormFile("profile"); err == nil {
			defer file.Close()
			url, err := store.Save(file, header, 512)
			if err != nil {
				api.Fail(w, http.StatusBadRequest, err.Error())
				return
			}
			profilePicture = url
		}

		coverPhoto := existing.CoverPhoto
		if file, header, err := r.FormFile("cover"); err == nil {
			defer file.Close()
			url, err := store.Save(file, header, 1280)
			if err != nil {
				api.Fail(w, http.StatusBadRequest, err.Error())
				return
			}
			coverPhoto = url
		}

		_, err = db.Exec(UpdateUserQuery, userID, username, bio, location, fullName, profilePicture, coverPhoto)
		if err != nil {
			log.Printf("Error updating user %s: %v", userID, err)
			api.Fail(w, http.StatusInternalServerError, "Error updating profile")
			return
		}

		updated, err := GetUserByID(db, userID)
		if err != nil {
			log.Printf("Error fetching user %s: %v", userID, err)
			api.Fail(w, http.StatusInternalServerError, "Database error")
			return
		}

		api.JSON(w, http.StatusOK, api.Fields{"user": updated, "message": "Profile Updated Successfully"})
	}
}

// DiscoverUsersHandler finds users matching the input across username,
// email, full name and location, excluding the caller
func DiscoverUsersHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := auth.GetUserIDFromToken(r)
		if err != nil {
			api.Fail(w, http.StatusUnauthorized, "Not Authenticated")
			return
		}

		var body struct {
			Input string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			api.Fail(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		rows, err := db.Query(DiscoverUsersQuery, userID, body.Input)
		if err != nil {
			log.Printf("Error querying users: %v", err)
			api.Fail(w, http.StatusInternalServerError, "Database error")
			return
		}
		defer rows.Close()

		users := []User{}
		for rows.Next() {
			u, err := scanUser(rows)
			if err != nil {
				log.Printf("Error scanning user: %v", err)
				api.Fail(w, http.StatusInternalServerError, "Database error")
				return
			}
			users = append(users, u)
		}
		if err := rows.Err(); err != nil {
			log.Printf("Error iterating over rows: %v", err)
			api.Fail(w, http.StatusInternalServerError, "Database error")
			return
		}

		api.JSON(w, http.StatusOK, api.Fields{"users": users})
	}
}

// FollowUserHandler records a follow edge toward the given user
func FollowUserHandler(db *sql.DB) http.HandlerFunc {
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
			api.Fail(w, http.StatusBadRequest, "You cannot follow yourself")
			return
		}

		result, err := db.Exec(FollowQuery, userID, body.ID)
		if err != nil {
			log.Printf("Error following user: %v", err)
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
			api.Fail(w, http.StatusOK, "You are already following this user")
			return
		}

		api.Success(w, "Now you are following this user")
	}
}

// UnfollowUserHandler removes a follow edge; already-absent edges are
// not an error
func UnfollowUserHandler(db *sql.DB) http.HandlerFunc {
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

		if _, err := db.Exec(UnfollowQuery, userID, body.ID); err != nil {
			log.Printf("Error unfollowing user: %v", err)
			api.Fail(w, http.StatusInternalServerError, "Database error")
			return
		}

		api.Success(w, "You are no longer following this user")
	}
}

// GetUserProfilesHandler returns a profile by id or username along with
// its posts. Unknown profiles are a genuine not-found; no placeholder
// record is created.
func GetUserProfilesHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profileID := strings.TrimSpace(mux.Vars(r)["profileId"])
		if profileID == "" {
			api.Fail(w, http.StatusBadRequest, "Invalid profile ID")
			return
		}

		profile, err := GetUserByID(db, profileID)
		if err == sql.ErrNoRows {
			profile, err = GetUserByUsername(db, profileID)
		}
		if err == sql.ErrNoRows {
			api.Fail(w, http.StatusNotFound, "Profile not found")
			return
		} else if err != nil {
			log.Printf("Error fetching profile %s: %v", profileID, err)
			api.Fail(w, http.StatusInternalServerError, "Database error")
			return
		}

		posts, err := post.GetPostsByUser(db, profile.ID)
		if err != nil {
			log.Printf("Error fetching posts for %s: %v", profile.ID, err)
			api.Fail(w, http.StatusInternalServerError, "Database error")
			return
		}

		api.JSON(w, http.StatusOK, api.Fields{"profile": profile, "posts": posts})
	}
}

// GetAllUsersHandler lists all users; test endpoint
func GetAllUsersHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := db.Query(SelectAllUsersQuery)
		if err != nil {
			log.Printf("Error querying users: %v", err)
			api.Fail(w, http.StatusInternalServerError, "Database error")
			return
		}
		defer rows.Close()

		users := []BasicUser{}
		for rows.Next() {
			var u BasicUser
			if err := rows.Scan(&u.ID, &u.FullName, &u.Username); err != nil {
				log.Printf("Error scanning user: %v", err)
				api.Fail(w, http.StatusInternalServerError, "Database error")
				return
			}
			users = append(users, u)
		}
		if err := rows.Err(); err != nil {
			log.Printf("Error iterating over rows: %v", err)
			api.Fail(w, http.StatusInternalServerError, "Database error")
			return
		}

		api.JSON(w, http.StatusOK, api.Fields{"users": users})
	}
}

// formValue returns the posted value for key, or fallback when the
// field was not part of the form at all.
func formValue(r *http.Request, key, fallback string) string {
	if r.MultipartForm != nil {
		if vals, ok := r.MultipartForm.Value[key]; ok && len(vals) > 0 {
			return vals[0]
		}
		return fallback
	}
	if vals, ok := r.PostForm[key]; ok && len(vals) > 0 {
		return vals[0]
	}
	return fallback
}
