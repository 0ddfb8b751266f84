package post

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/lib/pq"

	"pingup/backend/handlers/api"
	"pingup/backend/handlers/auth"
	"pingup/backend/services/images"
)

const maxPostImages = 4

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPost(row rowScanner) (Post, error) {
	var p Post
	err := row.Scan(
		&p.ID,
		&p.Content,
		pq.Array(&p.ImageURLs),
		&p.PostType,
		&p.CreatedAt,
		&p.User.ID,
		&p.User.Username,
		&p.User.FullName,
		&p.User.ProfilePicture,
		pq.Array(&p.Likes),
	)
	if p.ImageURLs == nil {
		p.ImageURLs = []string{}
	}
	if p.Likes == nil {
		p.Likes = []string{}
	}
	return p, err
}

// GetPostsByUser retrieves all posts by a user, newest first
func GetPostsByUser(db *sql.DB, userID string) ([]Post, error) {
	rows, err := db.Query(SelectPostsByUserQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// AddPostHandler creates a post with optional images
func AddPostHandler(db *sql.DB, store *images.Store) http.HandlerFunc {
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

		content := r.FormValue("content")
		postType := r.FormValue("post_type")
		switch postType {
		case "text", "image", "text_with_image":
		default:
			api.Fail(w, http.StatusBadRequest, "Invalid post type")
			return
		}

		imageURLs := []string{}
		if r.MultipartForm != nil {
			files := r.MultipartForm.File["images"]
			if len(files) > maxPostImages {
				api.Fail(w, http.StatusBadRequest, "A post can carry at most 4 images")
				return
			}
			for _, header := range files {
				file, err := header.Open()
				if err != nil {
					api.Fail(w, http.StatusBadRequest, "Invalid image upload")
					return
				}
				url, err := store.Save(file, header, 1280)
				file.Close()
				if err != nil {
					api.Fail(w, http.StatusBadRequest, err.Error())
					return
				}
				imageURLs = append(imageURLs, url)
			}
		}

		if content == "" && len(imageURLs) == 0 {
			api.Fail(w, http.StatusBadRequest, "Post cannot be empty")
			return
		}

		var (
			postID    int
			createdAt time.Time
		)
		err = db.QueryRow(InsertPostQuery, userID, content, pq.Array(imageURLs), postType).
			Scan(&postID, &createdAt)
		if err != nil {
			log.Printf("Error creating post: %v", err)
			api.Fail(w, http.StatusInternalServerError, "Error creating post")
			return
		}

		api.Success(w, "Post created successfully")
	}
}

// GetFeedPostsHandler returns the caller's feed: own posts plus posts
// by followed users and accepted connections
func GetFeedPostsHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := auth.GetUserIDFromToken(r)
		if err != nil {
			api.Fail(w, http.StatusUnauthorized, "Not Authenticated")
			return
		}

		rows, err := db.Query(SelectFeedPostsQuery, userID)
		if err != nil {
			log.Printf("Error querying feed: %v", err)
			api.Fail(w, http.StatusInternalServerError, "Database error")
			return
		}
		defer rows.Close()

		posts := []Post{}
		for rows.Next() {
			p, err := scanPost(rows)
			if err != nil {
				log.Printf("Error scanning post: %v", err)
				api.Fail(w, http.StatusInternalServerError, "Database error")
				return
			}
			posts = append(posts, p)
		}
		if err := rows.Err(); err != nil {
			log.Printf("Error iterating over rows: %v", err)
			api.Fail(w, http.StatusInternalServerError, "Database error")
			return
		}

		api.JSON(w, http.StatusOK, api.Fields{"posts": posts})
	}
}

// LikePostHandler toggles the caller's like on a post
func LikePostHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := auth.GetUserIDFromToken(r)
		if err != nil {
			api.Fail(w, http.StatusUnauthorized, "Not Authenticated")
			return
		}

		var body struct {
			PostID int `json:"postId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.PostID == 0 {
			api.Fail(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		result, err := db.Exec(LikePostQuery, body.PostID, userID)
		if err != nil {
			log.Printf("Error liking post: %v", err)
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
			// already liked; toggle off
			if _, err := db.Exec(UnlikePostQuery, body.PostID, userID); err != nil {
				log.Printf("Error unliking post: %v", err)
				api.Fail(w, http.StatusInternalServerError, "Database error")
				return
			}
			api.Success(w, "Post unliked")
			return
		}

		api.Success(w, "Post liked")
	}
}
