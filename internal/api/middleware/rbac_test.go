package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/users-api/internal/core/domain"
	"github.com/99minutos/users-api/internal/core/ports"
)

type stubLookup struct {
	accounts map[int64]*domain.Account
	err      error
}

func (s *stubLookup) GetUser(_ context.Context, id int64) (*domain.Account, error) {
	if s.err != nil {
		return nil, s.err
	}
	a, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return a, nil
}

func lookupWith(a *domain.Account) *stubLookup {
	return &stubLookup{accounts: map[int64]*domain.Account{a.ID: a}}
}

func newRBACContext(claims *ports.TokenClaims) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if claims != nil {
		SetClaims(c, *claims)
	}
	return c, rec
}

func TestRBAC_Allows(t *testing.T) {
	c, rec := newRBACContext(&ports.TokenClaims{AccountID: 1, Role: domain.RoleManager})
	lookup := lookupWith(&domain.Account{ID: 1, Role: domain.RoleManager, Active: true})

	called := false
	handler := RBAC(lookup, domain.RoleAdministrator, domain.RoleManager)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRBAC_Forbids(t *testing.T) {
	c, _ := newRBACContext(&ports.TokenClaims{AccountID: 1, Role: domain.RoleUser})
	lookup := lookupWith(&domain.Account{ID: 1, Role: domain.RoleUser, Active: true})

	handler := RBAC(lookup, domain.RoleAdministrator, domain.RoleManager)(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	if err := handler(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestRBAC_UsesStoredRole(t *testing.T) {
	// Token issued while the account was still a User.
	claims := &ports.TokenClaims{AccountID: 7, Role: domain.RoleUser}

	promoted := lookupWith(&domain.Account{ID: 7, Role: domain.RoleManager, Active: true})
	c, _ := newRBACContext(claims)
	called := false
	err := RBAC(promoted, domain.RoleAdministrator, domain.RoleManager)(func(echo.Context) error {
		called = true
		return nil
	})(c)
	if err != nil || !called {
		t.Fatalf("promoted account should pass, got %v", err)
	}

	demoted := lookupWith(&domain.Account{ID: 7, Role: domain.RoleUser, Active: true})
	c, _ = newRBACContext(&ports.TokenClaims{AccountID: 7, Role: domain.RoleAdministrator})
	err = RBAC(demoted, domain.RoleAdministrator)(func(echo.Context) error { return nil })(c)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("demoted account should be forbidden, got %v", err)
	}
}

func TestRBAC_InactiveOrMissingAccount(t *testing.T) {
	next := func(echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	}

	inactive := lookupWith(&domain.Account{ID: 1, Role: domain.RoleAdministrator, Active: false})
	c, _ := newRBACContext(&ports.TokenClaims{AccountID: 1, Role: domain.RoleAdministrator})
	if err := RBAC(inactive, domain.RoleAdministrator)(next)(c); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for inactive account, got %v", err)
	}

	c, _ = newRBACContext(&ports.TokenClaims{AccountID: 99, Role: domain.RoleAdministrator})
	if err := RBAC(inactive, domain.RoleAdministrator)(next)(c); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for missing account, got %v", err)
	}

	storeErr := errors.New("store down")
	c, _ = newRBACContext(&ports.TokenClaims{AccountID: 1, Role: domain.RoleAdministrator})
	if err := RBAC(&stubLookup{err: storeErr}, domain.RoleAdministrator)(next)(c); !errors.Is(err, storeErr) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestRBAC_MissingClaims(t *testing.T) {
	c, _ := newRBACContext(nil)

	err := RBAC(&stubLookup{}, domain.RoleAdministrator)(func(c echo.Context) error { return nil })(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}
