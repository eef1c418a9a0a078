package domain

import "time"

// RefreshToken is the server-side record of an issued refresh token. Only the
// SHA-256 hash of the opaque token is stored.
type RefreshToken struct {
	TokenHash string
	UserID    string
	ExpiresAt time.Time
	IsRevoked bool
	CreatedAt time.Time
}

// IsActive reports whether the token can still be exchanged.
func (t *RefreshToken) IsActive(now time.Time) bool {
	return !t.IsRevoked && t.ExpiresAt.After(now)
}

// TokenPair is what login and refresh hand back to clients.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}
