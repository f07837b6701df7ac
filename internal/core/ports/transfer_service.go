package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// TransferInput describes a balance movement between two cards owned by the
// same user.
type TransferInput struct {
	FromCardID string
	ToCardID   string
	Amount     decimal.Decimal
	OwnerEmail string
}

// TransferService executes validated, atomic transfers between a user's own
// cards.
type TransferService interface {
	Transfer(ctx context.Context, in TransferInput) error
}
