package domain

import "time"

// User is the identity record. Username and email are unique and stored
// lowercase. The refresh-token slot holds at most one live value per user,
// which is what makes refresh rotation revocable without a blacklist.
type User struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"fullName"`
	PasswordHash  string    `json:"-"` // argon2 encoded
	AvatarURL     string    `json:"avatar"`
	CoverImageURL string    `json:"coverImage,omitempty"`
	RefreshToken  string    `json:"-"` // current refresh token, "" when revoked
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Sanitized returns a copy safe to attach to request context or serialize:
// the password hash and refresh-token slot are zeroed.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	u.RefreshToken = ""
	return u
}
