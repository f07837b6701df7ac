package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/finwave/cards-api/internal/core/domain"
	"github.com/finwave/cards-api/internal/core/ports"
)

// AdminService implements administrative user management.
type AdminService struct {
	users  ports.UserRepository
	cards  ports.CardRepository
	tokens ports.TokenRepository
	tx     ports.Transactor
	log    zerolog.Logger
}

func NewAdminService(
	users ports.UserRepository,
	cards ports.CardRepository,
	tokens ports.TokenRepository,
	tx ports.Transactor,
	log zerolog.Logger,
) *AdminService {
	return &AdminService{users: users, cards: cards, tokens: tokens, tx: tx, log: log}
}

// CreateUser creates a USER account without logging it in.
func (s *AdminService) CreateUser(ctx context.Context, in ports.RegisterInput) (*ports.UserProfile, error) {
	exists, err := s.users.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Email:            in.Email,
		FirstName:        in.FirstName,
		LastName:         in.LastName,
		Patronymic:       in.Patronymic,
		PasswordHash:     string(hash),
		Role:             domain.RoleUser,
		Enabled:          true,
		AccountNonLocked: true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("email", created.Email).Msg("user created by admin")
	profile := userToProfile(created)
	return &profile, nil
}

func (s *AdminService) GetUser(ctx context.Context, userID string) (*ports.UserProfile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile := userToProfile(user)
	return &profile, nil
}

func (s *AdminService) ListUsers(ctx context.Context, page, size int) (*ports.UserPage, error) {
	page, size = normalizePage(page, size)
	users, total, err := s.users.FindAll(ctx, page, size)
	if err != nil {
		return nil, err
	}
	return &ports.UserPage{Items: users, Total: total, Page: page, Size: size}, nil
}

func (s *AdminService) SetUserEnabled(ctx context.Context, userID string, enabled bool) (*ports.UserProfile, error) {
	return s.mutateUser(ctx, userID, func(u *domain.User) error {
		u.Enabled = enabled
		return nil
	})
}

func (s *AdminService) SetUserLock(ctx context.Context, userID string, accountNonLocked bool) (*ports.UserProfile, error) {
	return s.mutateUser(ctx, userID, func(u *domain.User) error {
		u.AccountNonLocked = accountNonLocked
		return nil
	})
}

// UpdateUser applies partial profile updates. The password hash is always
// carried over untouched: there is no password-change path here.
func (s *AdminService) UpdateUser(ctx context.Context, userID string, in ports.UpdateUserInput) (*ports.UserProfile, error) {
	return s.mutateUser(ctx, userID, func(u *domain.User) error {
		if in.FirstName != nil {
			u.FirstName = *in.FirstName
		}
		if in.LastName != nil {
			u.LastName = *in.LastName
		}
		if in.Patronymic != nil {
			u.Patronymic = *in.Patronymic
		}
		if in.Email != nil && *in.Email != u.Email {
			exists, err := s.users.ExistsByEmail(ctx, *in.Email)
			if err != nil {
				return err
			}
			if exists {
				return domain.ErrUserExists
			}
			u.Email = *in.Email
		}
		if in.Role != nil {
			u.Role = *in.Role
		}
		return nil
	})
}

// DeleteUser removes the user and cascades to owned cards and tokens in one
// unit of work.
func (s *AdminService) DeleteUser(ctx context.Context, userID string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	err = s.tx.InTransaction(ctx, func(txCtx context.Context) error {
		if err := s.cards.DeleteAllByUser(txCtx, user.ID); err != nil {
			return err
		}
		if err := s.tokens.DeleteAllByUser(txCtx, user.ID); err != nil {
			return err
		}
		return s.users.Delete(txCtx, user.ID)
	})
	if err != nil {
		return err
	}

	s.log.Info().Str("user_id", userID).Msg("user deleted with owned cards and tokens")
	return nil
}

func (s *AdminService) mutateUser(ctx context.Context, userID string, mutate func(*domain.User) error) (*ports.UserProfile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	hash := user.PasswordHash
	if err := mutate(user); err != nil {
		return nil, err
	}
	user.PasswordHash = hash
	user.UpdatedAt = time.Now().UTC()

	updated, err := s.users.Update(ctx, user)
	if err != nil {
		return nil, err
	}
	profile := userToProfile(updated)
	return &profile, nil
}
