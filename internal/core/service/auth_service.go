package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/users-api/internal/core/domain"
	"github.com/99minutos/users-api/internal/core/ports"
	"github.com/99minutos/users-api/internal/pkg/metrics"
)

// AuthService implements registration, login and token lifecycle.
type AuthService struct {
	repo                 ports.AccountRepository
	revocations          ports.TokenRevocationStore
	jwtSecret            string
	tokenTTL             time.Duration
	caseInsensitiveEmail bool
	log                  zerolog.Logger
}

func NewAuthService(
	repo ports.AccountRepository,
	revocations ports.TokenRevocationStore,
	jwtSecret string,
	tokenTTL time.Duration,
	caseInsensitiveEmail bool,
	log zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		repo:                 repo,
		revocations:          revocations,
		jwtSecret:            jwtSecret,
		tokenTTL:             tokenTTL,
		caseInsensitiveEmail: caseInsensitiveEmail,
		log:                  log,
	}
}

// Register creates an active account without an actor gate and returns a
// token for it.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (string, *domain.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, err
	}

	role := domain.RoleUser
	if in.Role != nil {
		role = *in.Role
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.Account{
		Email:        s.normalizeEmail(in.Email),
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			metrics.AuthAttemptsTotal.WithLabelValues("register", "duplicate").Inc()
			return "", nil, domain.ErrDuplicateEmail
		}
		metrics.AuthAttemptsTotal.WithLabelValues("register", "error").Inc()
		s.log.Error().Err(err).Msg("failed to register account")
		return "", nil, &domain.PersistenceError{Op: "register", Err: err}
	}

	token, err := s.generateToken(created)
	if err != nil {
		return "", nil, err
	}

	metrics.AuthAttemptsTotal.WithLabelValues("register", "ok").Inc()
	s.log.Info().Int64("user_id", created.ID).Msg("account registered")
	return token, created, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.Account, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	account, err := s.repo.FindByEmail(ctx, s.normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			metrics.AuthAttemptsTotal.WithLabelValues("login", "invalid_credentials").Inc()
			s.log.Info().Msg("login with unknown email")
			return "", nil, domain.ErrInvalidCredentials
		}
		metrics.AuthAttemptsTotal.WithLabelValues("login", "error").Inc()
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "invalid_credentials").Inc()
		s.log.Info().Int64("user_id", account.ID).Msg("login with wrong password")
		return "", nil, domain.ErrInvalidCredentials
	}

	if !account.Active {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "inactive").Inc()
		return "", nil, domain.ErrAccountInactive
	}

	token, err := s.generateToken(account)
	if err != nil {
		return "", nil, err
	}

	metrics.AuthAttemptsTotal.WithLabelValues("login", "ok").Inc()
	s.log.Info().Int64("user_id", account.ID).Msg("account logged in")
	return token, account, nil
}

// Logout revokes the presented token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, claims ports.TokenClaims) error {
	if err := s.revoke(ctx, claims); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("logout", "error").Inc()
		return err
	}
	metrics.AuthAttemptsTotal.WithLabelValues("logout", "ok").Inc()
	s.log.Info().Int64("user_id", claims.AccountID).Msg("account logged out")
	return nil
}

// Refresh revokes the presented token and issues a fresh one for the same
// account. Accounts that vanished or were deactivated cannot refresh.
func (s *AuthService) Refresh(ctx context.Context, claims ports.TokenClaims) (string, error) {
	account, err := s.repo.FindByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return "", domain.ErrUnauthorized
		}
		return "", err
	}
	if !account.Active {
		metrics.AuthAttemptsTotal.WithLabelValues("refresh", "inactive").Inc()
		return "", domain.ErrUnauthorized
	}

	if err := s.revoke(ctx, claims); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("refresh", "error").Inc()
		return "", err
	}

	token, err := s.generateToken(account)
	if err != nil {
		return "", err
	}
	metrics.AuthAttemptsTotal.WithLabelValues("refresh", "ok").Inc()
	return token, nil
}

func (s *AuthService) Me(ctx context.Context, accountID int64) (*domain.Account, error) {
	account, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	return account, nil
}

func (s *AuthService) revoke(ctx context.Context, claims ports.TokenClaims) error {
	if s.revocations == nil || claims.TokenID == "" {
		return nil
	}
	return s.revocations.Revoke(ctx, claims.TokenID, claims.ExpiresAt)
}

func (s *AuthService) generateToken(account *domain.Account) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(account.ID, 10),
		"role": string(account.Role),
		"jti":  uuid.NewString(),
		"iat":  now.Unix(),
		"exp":  now.Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

func (s *AuthService) normalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	if s.caseInsensitiveEmail {
		return strings.ToLower(email)
	}
	return email
}
