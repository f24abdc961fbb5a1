package handler

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/users-api/internal/api/middleware"
	"github.com/99minutos/users-api/internal/core/domain"
	"github.com/99minutos/users-api/internal/core/ports"
)

// ctxClaims extracts the claims injected by the Auth middleware.
func ctxClaims(c echo.Context) (ports.TokenClaims, error) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok || claims.AccountID == 0 {
		return ports.TokenClaims{}, domain.ErrUnauthorized
	}
	return claims, nil
}

// resolveActor loads the account behind the token. A token whose account has
// vanished or been deactivated no longer authenticates anyone.
func resolveActor(c echo.Context, accounts ports.AccountService) (*domain.Account, error) {
	claims, err := ctxClaims(c)
	if err != nil {
		return nil, err
	}

	actor, err := accounts.GetUser(c.Request().Context(), claims.AccountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if !actor.Active {
		return nil, domain.ErrUnauthorized
	}
	return actor, nil
}

// pathID parses the :id parameter. Anything that is not a positive integer
// cannot name an account.
func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrAccountNotFound
	}
	return id, nil
}
