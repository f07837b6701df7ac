package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// CardView is the client-facing projection of a card. The full number is
// never exposed; MaskedNumber is always re-derived from the last four digits.
type CardView struct {
	ID           string          `json:"id"`
	MaskedNumber string          `json:"masked_number"`
	CardOwner    string          `json:"card_owner"`
	ExpiryDate   time.Time       `json:"expiry_date"`
	Status       string          `json:"status"`
	Balance      decimal.Decimal `json:"balance"`
}

// CardPage is one page of card views.
type CardPage struct {
	Items []CardView `json:"items"`
	Total int64      `json:"total"`
	Page  int        `json:"page"`
	Size  int        `json:"size"`
}

// BalanceSummary aggregates balances over one page of a user's cards.
type BalanceSummary struct {
	Total       decimal.Decimal            `json:"total_balance"`
	PerCard     map[string]decimal.Decimal `json:"card_balances"`
	TotalCards  int64                      `json:"total_cards"`
	ActiveCards int                        `json:"active_cards"`
}

// CreateCardInput carries the fields needed to issue a new card.
type CreateCardInput struct {
	UserID     string
	CardOwner  string
	ExpiryDate time.Time
	// BIN optionally seeds the first six digits of the generated number.
	BIN string
}

// ListCardsInput selects a page of cards for one owner, optionally filtered
// by a search term.
type ListCardsInput struct {
	OwnerEmail string
	Page       int
	Size       int
	Search     string
}

// CardService manages the card lifecycle. Operations taking an ownerEmail are
// scoped to that user's cards; an empty ownerEmail is the admin path and
// matches any card.
type CardService interface {
	Create(ctx context.Context, in CreateCardInput) (*CardView, error)
	Get(ctx context.Context, cardID, ownerEmail string) (*CardView, error)
	List(ctx context.Context, in ListCardsInput) (*CardPage, error)
	ListAll(ctx context.Context, page, size int) (*CardPage, error)
	Block(ctx context.Context, cardID, ownerEmail string) (*CardView, error)
	Activate(ctx context.Context, cardID, ownerEmail string) (*CardView, error)
	Delete(ctx context.Context, cardID, ownerEmail string) error
	Balance(ctx context.Context, cardID, ownerEmail string) (decimal.Decimal, error)
	AggregateBalance(ctx context.Context, ownerEmail string, page, size int) (*BalanceSummary, error)
	// SetBalance is the admin balance-set path; it requires the card to be
	// ACTIVE.
	SetBalance(ctx context.Context, cardID string, amount decimal.Decimal) (*CardView, error)
}
