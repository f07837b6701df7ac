package ports

import (
	"context"

	"github.com/finwave/cards-api/internal/core/domain"
)

// UserPage is one page of users.
type UserPage struct {
	Items []domain.User `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Size  int           `json:"size"`
}

// UpdateUserInput carries optional field updates; nil fields are left
// untouched. There is deliberately no password field: updates always
// preserve the existing hash.
type UpdateUserInput struct {
	Email      *string
	FirstName  *string
	LastName   *string
	Patronymic *string
	Role       *string
}

// AdminService covers administrative user management. Admin card operations
// go through CardService with unscoped ownership.
type AdminService interface {
	CreateUser(ctx context.Context, in RegisterInput) (*UserProfile, error)
	GetUser(ctx context.Context, userID string) (*UserProfile, error)
	ListUsers(ctx context.Context, page, size int) (*UserPage, error)
	SetUserEnabled(ctx context.Context, userID string, enabled bool) (*UserProfile, error)
	SetUserLock(ctx context.Context, userID string, accountNonLocked bool) (*UserProfile, error)
	UpdateUser(ctx context.Context, userID string, in UpdateUserInput) (*UserProfile, error)
	// DeleteUser removes the user together with all owned cards and tokens
	// in one unit of work.
	DeleteUser(ctx context.Context, userID string) error
}
