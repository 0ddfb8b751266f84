package user

import (
	"database/sql"

	"github.com/lib/pq"
)

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.FullName,
		&u.Bio,
		&u.Location,
		&u.ProfilePicture,
		&u.CoverPhoto,
		&u.CreatedAt,
		pq.Array(&u.Followers),
		pq.Array(&u.Following),
		pq.Array(&u.Connections),
	)
	if u.Followers == nil {
		u.Followers = []string{}
	}
	if u.Following == nil {
		u.Following = []string{}
	}
	if u.Connections == nil {
		u.Connections = []string{}
	}
	return u, err
}

// ScanUser scans a row produced with the shared user column list.
// Other packages resolving users (connections, pending requesters) use
// this to keep one scan order.
func ScanUser(row interface{ Scan(dest ...interface{}) error }) (User, error) {
	return scanUser(row)
}

// GetUserByID retrieves a user with resolved relationship lists.
// Returns sql.ErrNoRows when absent.
func GetUserByID(db *sql.DB, userID string) (User, error) {
	return scanUser(db.QueryRow(SelectUserQuery, userID))
}

// GetUserByUsername retrieves a user by username.
func GetUserByUsername(db *sql.DB, username string) (User, error) {
	return scanUser(db.QueryRow(SelectUserByUsernameQuery, username))
}
