package domain

import (
	"strings"
	"time"
)

// User represents a registered account. PasswordHash and the refresh token
// slot never serialize; users reach API responses only through this struct.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName,omitempty"`
	PasswordHash string    `json:"-"`
	RefreshToken string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Normalize folds the username to lowercase and trims whitespace so the
// uniqueness constraints see canonical values.
func (u *User) Normalize() {
	if u == nil {
		return
	}
	u.Username = strings.ToLower(strings.TrimSpace(u.Username))
	u.Email = strings.TrimSpace(u.Email)
	u.FullName = strings.TrimSpace(u.FullName)
}

// HasSession reports whether the single refresh token slot is occupied.
func (u *User) HasSession() bool {
	return u != nil && u.RefreshToken != ""
}
