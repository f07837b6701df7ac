package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/finwave/cards-api/internal/api/metrics"
	"github.com/finwave/cards-api/internal/core/domain"
	"github.com/finwave/cards-api/internal/core/ports"
	"github.com/finwave/cards-api/internal/security/cardcrypto"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// CardService implements the card lifecycle engine.
type CardService struct {
	cards ports.CardRepository
	users ports.UserRepository
	enc   *cardcrypto.Encryptor
	log   zerolog.Logger
}

func NewCardService(cards ports.CardRepository, users ports.UserRepository, enc *cardcrypto.Encryptor, log zerolog.Logger) *CardService {
	return &CardService{cards: cards, users: users, enc: enc, log: log}
}

// Create issues a new card for the given user: a 16-digit number (optionally
// seeded with a 6-digit BIN) is generated, encrypted for storage, and only
// the last four digits are kept in the clear. Balance starts at zero and the
// card is ACTIVE.
func (s *CardService) Create(ctx context.Context, in ports.CreateCardInput) (*ports.CardView, error) {
	owner, err := s.users.FindByID(ctx, in.UserID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	number, err := cardcrypto.GenerateNumber(in.BIN)
	if err != nil {
		return nil, err
	}
	ciphertext, err := s.enc.Encrypt(number)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	card := &domain.Card{
		UserID:         owner.ID,
		CardOwner:      in.CardOwner,
		CardNumber:     ciphertext,
		LastFourDigits: number[len(number)-4:],
		ExpiryDate:     in.ExpiryDate,
		Status:         domain.CardActive,
		Balance:        decimal.Zero,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	created, err := s.cards.Create(ctx, card)
	if err != nil {
		return nil, err
	}

	metrics.CardsCreatedTotal.Inc()
	s.log.Info().Str("card_id", created.ID).Str("user_id", owner.ID).Msg("card created")
	return cardToView(created), nil
}

// Get returns a single card view, scoped to ownerEmail unless it is empty.
func (s *CardService) Get(ctx context.Context, cardID, ownerEmail string) (*ports.CardView, error) {
	card, err := s.findCard(ctx, cardID, ownerEmail)
	if err != nil {
		return nil, err
	}
	return cardToView(card), nil
}

// List returns one page of the owner's cards. A 4-digit search term matches
// last four digits exactly; any other term matches the card owner name
// case-insensitively.
func (s *CardService) List(ctx context.Context, in ports.ListCardsInput) (*ports.CardPage, error) {
	owner, err := s.users.FindByEmail(ctx, in.OwnerEmail)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	page, size := normalizePage(in.Page, in.Size)

	var (
		cards []domain.Card
		total int64
	)
	term := strings.TrimSpace(in.Search)
	if term != "" {
		cards, total, err = s.cards.SearchByUser(ctx, owner.ID, term, page, size)
	} else {
		cards, total, err = s.cards.FindByUser(ctx, owner.ID, page, size)
	}
	if err != nil {
		return nil, err
	}

	return cardsToPage(cards, total, page, size), nil
}

// ListAll returns one page over every card in the system (admin path).
func (s *CardService) ListAll(ctx context.Context, page, size int) (*ports.CardPage, error) {
	page, size = normalizePage(page, size)
	cards, total, err := s.cards.FindAll(ctx, page, size)
	if err != nil {
		return nil, err
	}
	return cardsToPage(cards, total, page, size), nil
}

// Block transitions a card to BLOCKED. Already-blocked and expired cards are
// rejected.
func (s *CardService) Block(ctx context.Context, cardID, ownerEmail string) (*ports.CardView, error) {
	card, err := s.findCard(ctx, cardID, ownerEmail)
	if err != nil {
		return nil, err
	}

	if card.Status == domain.CardBlocked {
		return nil, fmt.Errorf("%w: card is already blocked", domain.ErrInvalidCardOperation)
	}
	if !card.Status.CanTransitionTo(domain.CardBlocked) {
		return nil, fmt.Errorf("%w: cannot block expired card", domain.ErrInvalidCardOperation)
	}

	if err := s.cards.UpdateStatus(ctx, card.ID, domain.CardBlocked); err != nil {
		return nil, err
	}
	card.Status = domain.CardBlocked
	s.log.Info().Str("card_id", card.ID).Msg("card blocked")
	return cardToView(card), nil
}

// Activate transitions a card back to ACTIVE. Already-active and expired
// cards are rejected.
func (s *CardService) Activate(ctx context.Context, cardID, ownerEmail string) (*ports.CardView, error) {
	card, err := s.findCard(ctx, cardID, ownerEmail)
	if err != nil {
		return nil, err
	}

	if card.Status == domain.CardActive {
		return nil, fmt.Errorf("%w: card is already active", domain.ErrInvalidCardOperation)
	}
	if !card.Status.CanTransitionTo(domain.CardActive) {
		return nil, fmt.Errorf("%w: cannot activate expired card", domain.ErrInvalidCardOperation)
	}

	if err := s.cards.UpdateStatus(ctx, card.ID, domain.CardActive); err != nil {
		return nil, err
	}
	card.Status = domain.CardActive
	s.log.Info().Str("card_id", card.ID).Msg("card activated")
	return cardToView(card), nil
}

// Delete hard-deletes a card, scoped to ownerEmail unless it is empty.
func (s *CardService) Delete(ctx context.Context, cardID, ownerEmail string) error {
	card, err := s.findCard(ctx, cardID, ownerEmail)
	if err != nil {
		return err
	}
	if err := s.cards.Delete(ctx, card.ID); err != nil {
		return err
	}
	s.log.Info().Str("card_id", card.ID).Msg("card deleted")
	return nil
}

// Balance returns the current balance of one card.
func (s *CardService) Balance(ctx context.Context, cardID, ownerEmail string) (decimal.Decimal, error) {
	card, err := s.findCard(ctx, cardID, ownerEmail)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return card.Balance, nil
}

// AggregateBalance sums balances over one page of the owner's cards.
func (s *CardService) AggregateBalance(ctx context.Context, ownerEmail string, page, size int) (*ports.BalanceSummary, error) {
	owner, err := s.users.FindByEmail(ctx, ownerEmail)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	page, size = normalizePage(page, size)
	cards, total, err := s.cards.FindByUser(ctx, owner.ID, page, size)
	if err != nil {
		return nil, err
	}

	summary := &ports.BalanceSummary{
		Total:      decimal.Zero,
		PerCard:    make(map[string]decimal.Decimal, len(cards)),
		TotalCards: total,
	}
	for _, card := range cards {
		summary.PerCard[card.ID] = card.Balance
		summary.Total = summary.Total.Add(card.Balance)
		if card.Status == domain.CardActive {
			summary.ActiveCards++
		}
	}
	return summary, nil
}

// SetBalance replaces a card's balance (admin path). Only ACTIVE cards may
// have their balance set.
func (s *CardService) SetBalance(ctx context.Context, cardID string, amount decimal.Decimal) (*ports.CardView, error) {
	card, err := s.cards.FindByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card.Status != domain.CardActive {
		return nil, fmt.Errorf("%w: cannot change the balance of an inactive card", domain.ErrInvalidCardOperation)
	}

	if err := s.cards.UpdateBalance(ctx, card.ID, amount); err != nil {
		return nil, err
	}
	card.Balance = amount
	s.log.Info().Str("card_id", card.ID).Str("balance", amount.String()).Msg("card balance set")
	return cardToView(card), nil
}

// findCard resolves a card by id, scoped to the owner's cards when
// ownerEmail is non-empty.
func (s *CardService) findCard(ctx context.Context, cardID, ownerEmail string) (*domain.Card, error) {
	if ownerEmail == "" {
		return s.cards.FindByID(ctx, cardID)
	}
	owner, err := s.users.FindByEmail(ctx, ownerEmail)
	if err != nil {
		return nil, domain.ErrCardNotFound
	}
	return s.cards.FindByIDAndUser(ctx, cardID, owner.ID)
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

// cardToView is the explicit Card -> CardView mapping; the number is always
// re-masked from the stored last four digits.
func cardToView(c *domain.Card) *ports.CardView {
	return &ports.CardView{
		ID:           c.ID,
		MaskedNumber: cardcrypto.Mask(c.LastFourDigits),
		CardOwner:    c.CardOwner,
		ExpiryDate:   c.ExpiryDate,
		Status:       string(c.Status),
		Balance:      c.Balance,
	}
}

func cardsToPage(cards []domain.Card, total int64, page, size int) *ports.CardPage {
	items := make([]ports.CardView, 0, len(cards))
	for i := range cards {
		items = append(items, *cardToView(&cards[i]))
	}
	return &ports.CardPage{Items: items, Total: total, Page: page, Size: size}
}
