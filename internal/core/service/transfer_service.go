package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/finwave/cards-api/internal/api/metrics"
	"github.com/finwave/cards-api/internal/core/domain"
	"github.com/finwave/cards-api/internal/core/ports"
)

// TransferService moves money between two cards owned by the same user.
type TransferService struct {
	cards ports.CardRepository
	users ports.UserRepository
	tx    ports.Transactor
	log   zerolog.Logger
}

func NewTransferService(cards ports.CardRepository, users ports.UserRepository, tx ports.Transactor, log zerolog.Logger) *TransferService {
	return &TransferService{cards: cards, users: users, tx: tx, log: log}
}

// Transfer debits the source card and credits the destination card inside a
// single transaction. Both balances are re-read inside the transaction so
// the funds check cannot go stale, and either both rows change or neither
// does.
//
// Validation is strictly ordered; the first failing check wins:
// ownership of both cards, source ACTIVE, destination ACTIVE, positive
// amount, sufficient funds, distinct cards.
func (s *TransferService) Transfer(ctx context.Context, in ports.TransferInput) error {
	owner, err := s.users.FindByEmail(ctx, in.OwnerEmail)
	if err != nil {
		metrics.TransfersTotal.WithLabelValues("rejected").Inc()
		return domain.ErrCardNotFound
	}

	err = s.tx.InTransaction(ctx, func(txCtx context.Context) error {
		from, err := s.cards.FindByIDAndUser(txCtx, in.FromCardID, owner.ID)
		if err != nil {
			return err
		}
		to, err := s.cards.FindByIDAndUser(txCtx, in.ToCardID, owner.ID)
		if err != nil {
			return err
		}

		if from.Status != domain.CardActive {
			return fmt.Errorf("%w: source card is not active", domain.ErrInvalidCardOperation)
		}
		if to.Status != domain.CardActive {
			return fmt.Errorf("%w: destination card is not active", domain.ErrInvalidCardOperation)
		}
		if !in.Amount.IsPositive() {
			return fmt.Errorf("%w: amount must be positive", domain.ErrInvalidCardOperation)
		}
		if from.Balance.LessThan(in.Amount) {
			return fmt.Errorf("%w: insufficient funds", domain.ErrInvalidCardOperation)
		}
		if from.ID == to.ID {
			return fmt.Errorf("%w: cannot transfer to the same card", domain.ErrInvalidCardOperation)
		}

		if err := s.cards.UpdateBalance(txCtx, from.ID, from.Balance.Sub(in.Amount)); err != nil {
			return err
		}
		return s.cards.UpdateBalance(txCtx, to.ID, to.Balance.Add(in.Amount))
	})
	if err != nil {
		metrics.TransfersTotal.WithLabelValues("rejected").Inc()
		return err
	}

	metrics.TransfersTotal.WithLabelValues("ok").Inc()
	amount, _ := in.Amount.Float64()
	metrics.TransferAmount.Observe(amount)
	s.log.Info().
		Str("from_card", in.FromCardID).
		Str("to_card", in.ToCardID).
		Str("amount", in.Amount.String()).
		Msg("transfer completed")
	return nil
}
