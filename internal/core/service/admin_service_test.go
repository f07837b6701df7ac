package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finwave/cards-api/internal/core/domain"
	"github.com/finwave/cards-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type adminFixture struct {
	users   *stubUserRepo
	cards   *stubCardRepo
	tokens  *stubTokenRepo
	tx      *stubTransactor
	service *AdminService
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	f := &adminFixture{
		users:  newStubUserRepo(),
		cards:  newStubCardRepo(),
		tokens: newStubTokenRepo(),
		tx:     &stubTransactor{},
	}
	f.service = NewAdminService(f.users, f.cards, f.tokens, f.tx, discardLogger)
	return f
}

func strPtr(s string) *string { return &s }

// ---------------------------------------------------------------------------
// CreateUser
// ---------------------------------------------------------------------------

func TestAdminService_CreateUser_Success(t *testing.T) {
	f := newAdminFixture(t)

	profile, err := f.service.CreateUser(context.Background(), ports.RegisterInput{
		Email:     "new@example.com",
		FirstName: "Anna",
		LastName:  "Sidorova",
		Password:  "secret-pass",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if profile.Role != domain.RoleUser {
		t.Errorf("admin-created accounts start as USER, got %q", profile.Role)
	}

	stored := f.users.byID[profile.ID]
	if !stored.Enabled || !stored.AccountNonLocked {
		t.Error("new accounts must be enabled and unlocked")
	}
	if stored.PasswordHash == "secret-pass" {
		t.Error("password must be stored hashed")
	}
	// No session side effects on the admin path.
	if len(f.tokens.byRaw) != 0 {
		t.Error("admin user creation must not issue tokens")
	}
}

func TestAdminService_CreateUser_DuplicateEmail(t *testing.T) {
	f := newAdminFixture(t)
	f.users.add(domain.User{Email: "taken@example.com"})

	_, err := f.service.CreateUser(context.Background(), ports.RegisterInput{
		Email:    "taken@example.com",
		Password: "secret-pass",
	})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// UpdateUser
// ---------------------------------------------------------------------------

func TestAdminService_UpdateUser_PreservesPasswordHash(t *testing.T) {
	f := newAdminFixture(t)
	id := f.users.add(domain.User{
		Email:        "ivan@example.com",
		FirstName:    "Ivan",
		PasswordHash: "$2a$10$original-hash",
		Role:         domain.RoleUser,
	})

	_, err := f.service.UpdateUser(context.Background(), id, ports.UpdateUserInput{
		FirstName: strPtr("Dmitry"),
		Email:     strPtr("dmitry@example.com"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := f.users.byID[id]
	if stored.FirstName != "Dmitry" || stored.Email != "dmitry@example.com" {
		t.Errorf("fields not updated: %+v", stored)
	}
	if stored.PasswordHash != "$2a$10$original-hash" {
		t.Errorf("password hash must survive profile updates, got %q", stored.PasswordHash)
	}
}

func TestAdminService_UpdateUser_NilFieldsUntouched(t *testing.T) {
	f := newAdminFixture(t)
	id := f.users.add(domain.User{
		Email:      "ivan@example.com",
		FirstName:  "Ivan",
		LastName:   "Petrov",
		Patronymic: "Sergeevich",
		Role:       domain.RoleUser,
	})

	_, err := f.service.UpdateUser(context.Background(), id, ports.UpdateUserInput{
		LastName: strPtr("Smirnov"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := f.users.byID[id]
	if stored.FirstName != "Ivan" || stored.Patronymic != "Sergeevich" {
		t.Errorf("nil fields must stay untouched: %+v", stored)
	}
	if stored.LastName != "Smirnov" {
		t.Errorf("expected last name Smirnov, got %q", stored.LastName)
	}
}

func TestAdminService_UpdateUser_EmailConflict(t *testing.T) {
	f := newAdminFixture(t)
	id := f.users.add(domain.User{Email: "ivan@example.com"})
	f.users.add(domain.User{Email: "taken@example.com"})

	_, err := f.service.UpdateUser(context.Background(), id, ports.UpdateUserInput{
		Email: strPtr("taken@example.com"),
	})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAdminService_UpdateUser_SameEmailIsNoConflict(t *testing.T) {
	f := newAdminFixture(t)
	id := f.users.add(domain.User{Email: "ivan@example.com"})

	if _, err := f.service.UpdateUser(context.Background(), id, ports.UpdateUserInput{
		Email: strPtr("ivan@example.com"),
	}); err != nil {
		t.Fatalf("re-submitting the current email must not conflict, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Enable / lock toggles
// ---------------------------------------------------------------------------

func TestAdminService_SetUserEnabled(t *testing.T) {
	f := newAdminFixture(t)
	id := f.users.add(domain.User{Email: "ivan@example.com", Enabled: true})

	if _, err := f.service.SetUserEnabled(context.Background(), id, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.users.byID[id].Enabled {
		t.Error("user must be disabled")
	}
}

func TestAdminService_SetUserLock(t *testing.T) {
	f := newAdminFixture(t)
	id := f.users.add(domain.User{Email: "ivan@example.com", AccountNonLocked: true})

	if _, err := f.service.SetUserLock(context.Background(), id, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.users.byID[id].AccountNonLocked {
		t.Error("account must be locked")
	}
}

// ---------------------------------------------------------------------------
// DeleteUser cascade
// ---------------------------------------------------------------------------

func TestAdminService_DeleteUser_Cascades(t *testing.T) {
	f := newAdminFixture(t)
	id := f.users.add(domain.User{Email: "ivan@example.com"})
	f.cards.add(domain.Card{UserID: id, Status: domain.CardActive, Balance: decimal.Zero})
	f.cards.add(domain.Card{UserID: id, Status: domain.CardBlocked, Balance: decimal.Zero})
	if _, err := f.tokens.Create(context.Background(), &domain.Token{
		Token:     "refresh-raw",
		Type:      domain.TokenRefresh,
		ExpiresAt: time.Now().Add(time.Hour),
		UserID:    id,
	}); err != nil {
		t.Fatalf("seed token: %v", err)
	}

	// Another user's data must survive the cascade.
	otherID := f.users.add(domain.User{Email: "other@example.com"})
	otherCard := f.cards.add(domain.Card{UserID: otherID, Status: domain.CardActive, Balance: decimal.Zero})

	if err := f.service.DeleteUser(context.Background(), id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := f.users.byID[id]; ok {
		t.Error("user must be deleted")
	}
	for _, c := range f.cards.byID {
		if c.UserID == id {
			t.Error("owned cards must be deleted")
		}
	}
	if len(f.tokens.byRaw) != 0 {
		t.Error("owned tokens must be deleted")
	}
	if _, ok := f.cards.byID[otherCard]; !ok {
		t.Error("other users' cards must survive")
	}
	if f.tx.calls != 1 {
		t.Errorf("cascade must run in one transaction, got %d", f.tx.calls)
	}
}

func TestAdminService_DeleteUser_Unknown(t *testing.T) {
	f := newAdminFixture(t)

	err := f.service.DeleteUser(context.Background(), "user-999")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
