package domain

import "time"

// TokenPair is the result of a rotation: a fresh short-lived access token and
// a fresh long-lived refresh token. The refresh token has already been
// persisted as the user's current one when a pair is returned.
type TokenPair struct {
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
	ExpiresIn    time.Duration `json:"-"`
}
