package models

// User is a row of the users table. PasswordHash and Salt are stored as text
// exactly as produced by cryptox.
type User struct {
	ID           int64
	UserName     string
	PasswordHash string
	Salt         string
}
