package auth

import (
	"context"
	"net/http"

	"pingup/backend/handlers/api"
)

// AuthMiddleware checks for a valid JWT token and sets the user_id in the context
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := GetUserIDFromToken(r)
		if err != nil {
			api.Fail(w, http.StatusUnauthorized, "Not Authenticated")
			return
		}

		ctx := context.WithValue(r.Context(), "user_id", userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
