package domain

import "time"

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	IsVerified   bool      `json:"is_verified"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// HasEmail indica si el usuario ya tiene email (los usuarios legacy no lo tienen).
func (u User) HasEmail() bool {
	return u.Email != ""
}
