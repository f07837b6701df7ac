package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/finwave/cards-api/internal/core/domain"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	byID    map[string]*domain.User
	nextID  int
	findErr error // if set, every lookup returns this error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[string]*domain.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	for _, existing := range r.byID {
		if existing.Email == u.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.nextID++
	clone := *u
	clone.ID = "user-" + strconv.Itoa(r.nextID)
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.byID {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, u := range r.byID {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubUserRepo) FindAll(_ context.Context, page, size int) ([]domain.User, int64, error) {
	users := make([]domain.User, 0, len(r.byID))
	for _, u := range r.byID {
		users = append(users, *u)
	}
	return users, int64(len(users)), nil
}

func (r *stubUserRepo) Update(_ context.Context, u *domain.User) (*domain.User, error) {
	if _, ok := r.byID[u.ID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	r.byID[u.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.byID, id)
	return nil
}

// add seeds a user and returns its assigned ID.
func (r *stubUserRepo) add(u domain.User) string {
	r.nextID++
	u.ID = "user-" + strconv.Itoa(r.nextID)
	r.byID[u.ID] = &u
	return u.ID
}

type stubCardRepo struct {
	byID      map[string]*domain.Card
	nextID    int
	updateErr error // if set, UpdateBalance returns this error
}

func newStubCardRepo() *stubCardRepo {
	return &stubCardRepo{byID: make(map[string]*domain.Card)}
}

func (r *stubCardRepo) Create(_ context.Context, c *domain.Card) (*domain.Card, error) {
	r.nextID++
	clone := *c
	clone.ID = "card-" + strconv.Itoa(r.nextID)
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubCardRepo) FindByID(_ context.Context, id string) (*domain.Card, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrCardNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *stubCardRepo) FindByIDAndUser(_ context.Context, id, userID string) (*domain.Card, error) {
	c, ok := r.byID[id]
	if !ok || c.UserID != userID {
		return nil, domain.ErrCardNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *stubCardRepo) FindByUser(_ context.Context, userID string, page, size int) ([]domain.Card, int64, error) {
	var cards []domain.Card
	for _, c := range r.byID {
		if c.UserID == userID {
			cards = append(cards, *c)
		}
	}
	return cards, int64(len(cards)), nil
}

// SearchByUser mirrors the real Mongo behaviour: a 4-digit term is an exact
// last-four match, anything else matches the owner name case-insensitively.
func (r *stubCardRepo) SearchByUser(_ context.Context, userID, term string, page, size int) ([]domain.Card, int64, error) {
	isLastFour := len(term) == 4 && strings.IndexFunc(term, func(ch rune) bool { return ch < '0' || ch > '9' }) < 0
	var cards []domain.Card
	for _, c := range r.byID {
		if c.UserID != userID {
			continue
		}
		if isLastFour {
			if c.LastFourDigits == term {
				cards = append(cards, *c)
			}
		} else if strings.Contains(strings.ToLower(c.CardOwner), strings.ToLower(term)) {
			cards = append(cards, *c)
		}
	}
	return cards, int64(len(cards)), nil
}

func (r *stubCardRepo) FindAll(_ context.Context, page, size int) ([]domain.Card, int64, error) {
	cards := make([]domain.Card, 0, len(r.byID))
	for _, c := range r.byID {
		cards = append(cards, *c)
	}
	return cards, int64(len(cards)), nil
}

func (r *stubCardRepo) UpdateBalance(_ context.Context, id string, balance decimal.Decimal) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	c, ok := r.byID[id]
	if !ok {
		return domain.ErrCardNotFound
	}
	c.Balance = balance
	return nil
}

func (r *stubCardRepo) UpdateStatus(_ context.Context, id string, status domain.CardStatus) error {
	c, ok := r.byID[id]
	if !ok {
		return domain.ErrCardNotFound
	}
	c.Status = status
	return nil
}

func (r *stubCardRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrCardNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubCardRepo) DeleteAllByUser(_ context.Context, userID string) error {
	for id, c := range r.byID {
		if c.UserID == userID {
			delete(r.byID, id)
		}
	}
	return nil
}

func (r *stubCardRepo) ExpireOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for _, c := range r.byID {
		if c.Status != domain.CardExpired && c.ExpiryDate.Before(cutoff) {
			c.Status = domain.CardExpired
			n++
		}
	}
	return n, nil
}

// add seeds a card and returns its assigned ID.
func (r *stubCardRepo) add(c domain.Card) string {
	r.nextID++
	c.ID = "card-" + strconv.Itoa(r.nextID)
	r.byID[c.ID] = &c
	return c.ID
}

type stubTokenRepo struct {
	byRaw     map[string]*domain.Token
	nextID    int
	createErr error // if set, Create returns this error
}

func newStubTokenRepo() *stubTokenRepo {
	return &stubTokenRepo{byRaw: make(map[string]*domain.Token)}
}

func (r *stubTokenRepo) Create(_ context.Context, t *domain.Token) (*domain.Token, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.nextID++
	clone := *t
	clone.ID = "token-" + strconv.Itoa(r.nextID)
	r.byRaw[clone.Token] = &clone
	out := clone
	return &out, nil
}

func (r *stubTokenRepo) FindByToken(_ context.Context, raw string) (*domain.Token, error) {
	t, ok := r.byRaw[raw]
	if !ok {
		return nil, domain.ErrTokenNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *stubTokenRepo) MarkUsed(_ context.Context, id string) error {
	for _, t := range r.byRaw {
		if t.ID == id {
			t.Revoked = true
			t.Expired = true
			return nil
		}
	}
	return domain.ErrTokenNotFound
}

func (r *stubTokenRepo) DeleteAllByUser(_ context.Context, userID string) error {
	for raw, t := range r.byRaw {
		if t.UserID == userID {
			delete(r.byRaw, raw)
		}
	}
	return nil
}

// stubTransactor runs the unit of work inline; a set failErr aborts it
// before fn runs.
type stubTransactor struct {
	calls   int
	failErr error
}

func (t *stubTransactor) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	if t.failErr != nil {
		return t.failErr
	}
	return fn(ctx)
}

// stubRevocationCache remembers revoked raw tokens in memory.
type stubRevocationCache struct {
	revoked map[string]bool
	err     error // if set, both methods return this error
}

func newStubRevocationCache() *stubRevocationCache {
	return &stubRevocationCache{revoked: make(map[string]bool)}
}

func (c *stubRevocationCache) IsRevoked(_ context.Context, raw string) (bool, error) {
	if c.err != nil {
		return false, c.err
	}
	return c.revoked[raw], nil
}

func (c *stubRevocationCache) Revoke(_ context.Context, raw string, _ time.Duration) error {
	if c.err != nil {
		return c.err
	}
	c.revoked[raw] = true
	return nil
}
