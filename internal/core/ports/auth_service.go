package ports

import (
	"context"
	"time"
)

// UserProfile is the public view of a user returned in auth responses.
// It never carries the password hash.
type UserProfile struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Patronymic string `json:"patronymic,omitempty"`
	Role       string `json:"role"`
}

// Session bundles the issued credentials for one login. RefreshToken travels
// only via the http-only cookie the handler sets; it is never part of the
// JSON body.
type Session struct {
	AccessToken  string
	TokenType    string
	User         UserProfile
	RefreshToken string
	RefreshTTL   time.Duration
}

// RegisterInput carries the fields needed to create an account.
type RegisterInput struct {
	Email      string
	FirstName  string
	LastName   string
	Patronymic string
	Password   string
}

// AuthService orchestrates credential verification and the refresh token
// lifecycle.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*Session, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	// Refresh rotates the presented refresh token: the old record becomes
	// permanently unusable and a new pair is issued.
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
	// Logout revokes the presented refresh token if it is known. Unknown or
	// empty tokens are not an error.
	Logout(ctx context.Context, refreshToken string) error
}
