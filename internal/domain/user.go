package domain

// User represents an authenticated account in the system.
// Users are never deleted; only DisplayName is mutable after registration.
type User struct {
	Timestamps
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash,omitempty"` // Stored hashed, filter from API responses
	DisplayName  string `json:"full_name"`
}

// Public returns a copy safe for API responses, with the password hash stripped.
func (u *User) Public() *User {
	c := *u
	c.PasswordHash = ""
	return &c
}
