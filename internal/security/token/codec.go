// Package token implements the signed bearer token codec. Access and refresh
// tokens share one encoding (HS256 JWT carrying subject, role, issued-at and
// expiry) and differ only in TTL and post-issuance handling.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/finwave/cards-api/internal/core/domain"
)

// Claims is the verified content of a token.
type Claims struct {
	Subject   string
	Role      string
	ExpiresAt time.Time
}

type jwtClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Codec signs and verifies bearer tokens with a process-wide symmetric key.
type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewCodec(secret string, accessTTL, refreshTTL time.Duration) *Codec {
	return &Codec{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// RefreshTTL returns the refresh token lifetime (also the cookie Max-Age).
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

// IssueAccess signs a short-lived access token for the subject.
func (c *Codec) IssueAccess(subject, role string) (string, error) {
	return c.issue(subject, role, c.accessTTL)
}

// IssueRefresh signs a long-lived refresh token for the subject.
func (c *Codec) IssueRefresh(subject, role string) (string, error) {
	return c.issue(subject, role, c.refreshTTL)
}

func (c *Codec) issue(subject, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwtClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify parses and validates a token. Any failure (bad signature, malformed
// structure, expiry in the past) is reported uniformly as
// domain.ErrInvalidToken so callers treat it as "not authenticated".
func (c *Codec) Verify(raw string) (*Claims, error) {
	claims := &jwtClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, c.keyFunc)
	if err != nil || !tkn.Valid {
		return nil, domain.ErrInvalidToken
	}
	return &Claims{
		Subject:   claims.Subject,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// IsExpired reports whether the token's embedded expiry has passed. Tokens
// that cannot be parsed at all are treated as expired.
func (c *Codec) IsExpired(raw string) bool {
	claims := &jwtClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, c.keyFunc)
	if err != nil {
		return true
	}
	if !tkn.Valid || claims.ExpiresAt == nil {
		return true
	}
	return claims.ExpiresAt.Before(time.Now())
}

func (c *Codec) keyFunc(t *jwt.Token) (interface{}, error) {
	if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
		return nil, errors.New("unexpected signing method")
	}
	return c.secret, nil
}
