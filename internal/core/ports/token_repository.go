package ports

import (
	"context"

	"github.com/finwave/cards-api/internal/core/domain"
)

// TokenRepository defines the interface for refresh token persistence.
type TokenRepository interface {
	Create(ctx context.Context, token *domain.Token) (*domain.Token, error)
	FindByToken(ctx context.Context, raw string) (*domain.Token, error)
	// MarkUsed sets both the revoked and expired flags on the record.
	MarkUsed(ctx context.Context, id string) error
	DeleteAllByUser(ctx context.Context, userID string) error
}
