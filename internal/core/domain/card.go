package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CardStatus represents the lifecycle state of a card.
type CardStatus string

const (
	CardActive  CardStatus = "ACTIVE"
	CardBlocked CardStatus = "BLOCKED"
	CardExpired CardStatus = "EXPIRED"
)

// validTransitions defines the allowed state machine transitions.
// EXPIRED is terminal and is entered only by the expiry sweep, never through
// a user or admin operation.
var validTransitions = map[CardStatus][]CardStatus{
	CardActive:  {CardBlocked},
	CardBlocked: {CardActive},
}

// CanTransitionTo reports whether a transition from the current status to
// next is valid.
func (s CardStatus) CanTransitionTo(next CardStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Card is a payment card owned by exactly one user. CardNumber holds the
// ciphertext of the full 16-digit number; only LastFourDigits is stored in
// the clear.
type Card struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	CardOwner      string          `json:"card_owner"`
	CardNumber     string          `json:"-"`
	LastFourDigits string          `json:"last_four_digits"`
	ExpiryDate     time.Time       `json:"expiry_date"`
	Status         CardStatus      `json:"status"`
	Balance        decimal.Decimal `json:"balance"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
