package models

// User is keyed by username; ID and Username always hold the same value.
// Password is the bcrypt hash, never the plaintext.
type User struct {
	ID       string
	Username string
	Password string
}
