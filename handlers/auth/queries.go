package auth

// Auth queries
const (
	// InsertUserQuery creates a user record at signup
	InsertUserQuery = `
		INSERT INTO users (id, email, username, full_name, password_hash)
		VALUES ($1, $2, $3, $4, $5)
	`

	// SelectCredentialsQuery retrieves the stored credentials for login
	SelectCredentialsQuery = `
		SELECT id, email, username, full_name, password_hash
		FROM users
		WHERE email = $1
	`
)
