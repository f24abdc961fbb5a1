package ports

import (
	"context"
	"time"

	"github.com/99minutos/users-api/internal/core/domain"
)

// RegisterInput carries the public self-registration payload.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     *domain.Role
}

// TokenClaims are the identity facts carried by an access token.
type TokenClaims struct {
	AccountID int64
	Role      domain.Role
	TokenID   string
	ExpiresAt time.Time
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (string, *domain.Account, error)
	Login(ctx context.Context, email, password string) (string, *domain.Account, error)
	Logout(ctx context.Context, claims TokenClaims) error
	Refresh(ctx context.Context, claims TokenClaims) (string, error)
	Me(ctx context.Context, accountID int64) (*domain.Account, error)
}
