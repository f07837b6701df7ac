package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/finwave/cards-api/internal/api/metrics"
	"github.com/finwave/cards-api/internal/core/domain"
	"github.com/finwave/cards-api/internal/core/ports"
	"github.com/finwave/cards-api/internal/security/token"
)

const bearerTokenType = "Bearer"

// RevocationCache abstracts the fast-path denial store for rotated or
// logged-out refresh tokens (Redis). It is advisory: the stored revoked and
// expired flags remain authoritative, so cache failures degrade to the
// repository check.
type RevocationCache interface {
	IsRevoked(ctx context.Context, raw string) (bool, error)
	Revoke(ctx context.Context, raw string, ttl time.Duration) error
}

// AuthService implements registration, login, refresh rotation and logout.
type AuthService struct {
	users   ports.UserRepository
	tokens  ports.TokenRepository
	tx      ports.Transactor
	codec   *token.Codec
	revoked RevocationCache
	log     zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	tokens ports.TokenRepository,
	tx ports.Transactor,
	codec *token.Codec,
	revoked RevocationCache,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{users: users, tokens: tokens, tx: tx, codec: codec, revoked: revoked, log: log}
}

// Register creates a new USER account and immediately performs the login
// flow. The email check is a case-sensitive exact match.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.Session, error) {
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
	if _, err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info().Str("email", in.Email).Msg("user registered")

	return s.Login(ctx, in.Email, in.Password)
}

// Login verifies credentials and issues a fresh access/refresh pair. Missing
// users, bad passwords, and disabled or locked accounts all fail with
// ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.Session, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		return nil, domain.ErrInvalidCredentials
	}
	if !user.Enabled || !user.AccountNonLocked {
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		return nil, domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	session, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}
	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	s.log.Info().Str("email", email).Msg("user logged in")
	return session, nil
}

// Refresh rotates the presented refresh token. The old record is marked
// revoked and expired in the same unit of work that persists the new one, so
// there is no window with two valid tokens for the session lineage.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*ports.Session, error) {
	if refreshToken == "" {
		return nil, domain.ErrRefreshTokenMissing
	}

	if hit, err := s.revoked.IsRevoked(ctx, refreshToken); err != nil {
		s.log.Warn().Err(err).Msg("revocation cache check failed, falling back to store")
	} else if hit {
		return nil, domain.ErrInvalidToken
	}

	stored, err := s.tokens.FindByToken(ctx, refreshToken)
	if err != nil {
		return nil, domain.ErrRefreshTokenMissing
	}
	if !stored.Usable(time.Now()) || s.codec.IsExpired(refreshToken) {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.users.FindByID(ctx, stored.UserID)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	var session *ports.Session
	txErr := s.tx.InTransaction(ctx, func(txCtx context.Context) error {
		if err := s.tokens.MarkUsed(txCtx, stored.ID); err != nil {
			return err
		}
		session, err = s.issueSession(txCtx, user)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	s.cacheRevocation(ctx, refreshToken, stored.ExpiresAt)
	metrics.TokenRotationsTotal.Inc()
	s.log.Debug().Str("email", user.Email).Msg("refresh token rotated")
	return session, nil
}

// Logout revokes the presented refresh token if it matches a stored record.
// It is idempotent: empty or unknown tokens are not an error.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	stored, err := s.tokens.FindByToken(ctx, refreshToken)
	if err != nil {
		return nil
	}
	if err := s.tokens.MarkUsed(ctx, stored.ID); err != nil {
		return err
	}
	s.cacheRevocation(ctx, refreshToken, stored.ExpiresAt)
	s.log.Debug().Str("user_id", stored.UserID).Msg("refresh token revoked on logout")
	return nil
}

func (s *AuthService) issueSession(ctx context.Context, user *domain.User) (*ports.Session, error) {
	access, err := s.codec.IssueAccess(user.Email, user.Role)
	if err != nil {
		return nil, err
	}
	refresh, err := s.codec.IssueRefresh(user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	record := &domain.Token{
		Token:     refresh,
		Type:      domain.TokenRefresh,
		ExpiresAt: now.Add(s.codec.RefreshTTL()),
		UserID:    user.ID,
		CreatedAt: now,
	}
	if _, err := s.tokens.Create(ctx, record); err != nil {
		return nil, err
	}

	return &ports.Session{
		AccessToken:  access,
		TokenType:    bearerTokenType,
		User:         userToProfile(user),
		RefreshToken: refresh,
		RefreshTTL:   s.codec.RefreshTTL(),
	}, nil
}

func (s *AuthService) cacheRevocation(ctx context.Context, raw string, expiresAt time.Time) {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return
	}
	if err := s.revoked.Revoke(ctx, raw, ttl); err != nil {
		s.log.Warn().Err(err).Msg("failed to cache token revocation")
	}
}

// userToProfile is the explicit User -> UserProfile mapping.
func userToProfile(u *domain.User) ports.UserProfile {
	return ports.UserProfile{
		ID:         u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Patronymic: u.Patronymic,
		Role:       u.Role,
	}
}
