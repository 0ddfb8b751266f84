package auth

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the identity attributes embedded in a bearer token.
// Email, full name and username may be empty strings; profile sync
// fills them in later.
type Claims struct {
	UserID   string
	Email    string
	FullName string
	Username string
}

// GenerateToken creates a JWT token for user authentication
func GenerateToken(c Claims) (string, error) {
	secretKey := os.Getenv("JWT_SECRET_KEY")
	if secretKey == "" {
		return "", fmt.Errorf("JWT_SECRET_KEY environment variable not set")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":   c.UserID,
		"email":     c.Email,
		"full_name": c.FullName,
		"username":  c.Username,
		"exp":       time.Now().Add(time.Hour * 24).Unix(),
	})

	return token.SignedString([]byte(secretKey))
}

// GetClaimsFromToken extracts the identity claims from the Authorization header
func GetClaimsFromToken(r *http.Request) (Claims, error) {
	tokenString := r.Header.Get("Authorization")
	if tokenString == "" {
		return Claims{}, fmt.Errorf("no token provided")
	}

	tokenString = strings.TrimPrefix(tokenString, "Bearer ")
	return ParseToken(tokenString)
}

// GetUserIDFromToken extracts the user ID from the Authorization header
// Used by: all authenticated endpoints
func GetUserIDFromToken(r *http.Request) (string, error) {
	claims, err := GetClaimsFromToken(r)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

// ParseToken verifies a raw token string and returns its claims.
// WebSocket endpoints pass the token as a query parameter, so this
// takes the string form directly.
func ParseToken(tokenString string) (Claims, error) {
	secretKey := os.Getenv("JWT_SECRET_KEY")
	if secretKey == "" {
		return Claims{}, fmt.Errorf("JWT_SECRET_KEY environment variable not set")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(secretKey), nil
	})
	if err != nil {
		return Claims{}, err
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Claims{}, fmt.Errorf("invalid token claims")
	}

	userID, ok := mapClaims["user_id"].(string)
	if !ok || userID == "" {
		return Claims{}, fmt.Errorf("token missing user_id claim")
	}

	claims := Claims{UserID: userID}
	if v, ok := mapClaims["email"].(string); ok {
		claims.Email = v
	}
	if v, ok := mapClaims["full_name"].(string); ok {
		claims.FullName = v
	}
	if v, ok := mapClaims["username"].(string); ok {
		claims.Username = v
	}

	return claims, nil
}
