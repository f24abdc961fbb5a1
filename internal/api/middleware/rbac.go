package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/users-api/internal/core/domain"
)

// AccountLookup loads the stored account behind a token.
type AccountLookup interface {
	GetUser(ctx context.Context, id int64) (*domain.Account, error)
}

// RBAC rejects requests whose account does not hold one of allowedRoles. The
// role is read from the store, so promotions and demotions apply without a
// new token. It must run after Auth.
func RBAC(accounts AccountLookup, allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := ClaimsFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}

			account, err := accounts.GetUser(c.Request().Context(), claims.AccountID)
			if err != nil {
				if errors.Is(err, domain.ErrAccountNotFound) {
					return domain.ErrUnauthorized
				}
				return err
			}
			if !account.Active {
				return domain.ErrUnauthorized
			}
			if _, ok := allowed[account.Role]; !ok {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
