package domain

import "time"

// TokenType discriminates persisted token records. Access tokens are
// stateless and never stored, so REFRESH is the only persisted type.
type TokenType string

const TokenRefresh TokenType = "REFRESH"

// Token is a persisted refresh token record.
type Token struct {
	ID        string    `json:"id"`
	Token     string    `json:"-"`
	Type      TokenType `json:"type"`
	Revoked   bool      `json:"revoked"`
	Expired   bool      `json:"expired"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Usable reports whether the stored record can still back a refresh. The
// token's own embedded expiry is re-verified separately by the codec.
func (t *Token) Usable(now time.Time) bool {
	return !t.Revoked && !t.Expired && t.ExpiresAt.After(now)
}
