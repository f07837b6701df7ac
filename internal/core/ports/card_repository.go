package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finwave/cards-api/internal/core/domain"
)

// CardRepository defines the interface for card persistence. All lookups
// taking a userID are scoped to that owner; FindByID and FindAll are the
// unscoped admin paths.
type CardRepository interface {
	Create(ctx context.Context, card *domain.Card) (*domain.Card, error)
	FindByID(ctx context.Context, id string) (*domain.Card, error)
	FindByIDAndUser(ctx context.Context, id, userID string) (*domain.Card, error)
	FindByUser(ctx context.Context, userID string, page, size int) ([]domain.Card, int64, error)
	// SearchByUser matches a 4-digit term against last_four_digits and any
	// other term against card_owner, case-insensitively.
	SearchByUser(ctx context.Context, userID, term string, page, size int) ([]domain.Card, int64, error)
	FindAll(ctx context.Context, page, size int) ([]domain.Card, int64, error)
	UpdateBalance(ctx context.Context, id string, balance decimal.Decimal) error
	UpdateStatus(ctx context.Context, id string, status domain.CardStatus) error
	Delete(ctx context.Context, id string) error
	DeleteAllByUser(ctx context.Context, userID string) error
	// ExpireOlderThan marks every ACTIVE or BLOCKED card whose expiry date is
	// before cutoff as EXPIRED and returns the number of cards affected.
	ExpireOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
