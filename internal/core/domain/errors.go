package domain

import "errors"

// Sentinel errors for the card backend. Services raise them (optionally
// wrapped with a more specific message) and the API error handler maps each
// one to a stable HTTP status.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrCardNotFound         = errors.New("card not found")
	ErrTokenNotFound        = errors.New("token not found")
	ErrUserExists           = errors.New("user with this email already exists")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrForbidden            = errors.New("access forbidden")
	ErrInvalidCardOperation = errors.New("invalid card operation")
	ErrRefreshTokenMissing  = errors.New("refresh token missing")
	ErrInvalidToken         = errors.New("refresh token invalid")
)
