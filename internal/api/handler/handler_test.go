package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/users-api/internal/api/middleware"
	"github.com/99minutos/users-api/internal/core/domain"
	"github.com/99minutos/users-api/internal/core/ports"
)

type stubAccountService struct {
	accounts map[int64]*domain.Account
	createFn func(ctx context.Context, in ports.CreateAccountInput, actor *domain.Account) (*domain.Account, error)
	updateFn func(ctx context.Context, id int64, in ports.UpdateAccountInput, actor *domain.Account) (*domain.Account, error)
	listFn   func(ctx context.Context, in ports.ListAccountsInput, actor *domain.Account) (*ports.ListAccountsResult, error)
}

func (s *stubAccountService) CreateUser(ctx context.Context, in ports.CreateAccountInput, actor *domain.Account) (*domain.Account, error) {
	return s.createFn(ctx, in, actor)
}

func (s *stubAccountService) UpdateUser(ctx context.Context, id int64, in ports.UpdateAccountInput, actor *domain.Account) (*domain.Account, error) {
	return s.updateFn(ctx, id, in, actor)
}

func (s *stubAccountService) ListUsers(ctx context.Context, in ports.ListAccountsInput, actor *domain.Account) (*ports.ListAccountsResult, error) {
	return s.listFn(ctx, in, actor)
}

func (s *stubAccountService) GetUser(_ context.Context, id int64) (*domain.Account, error) {
	a, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return a, nil
}

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (string, *domain.Account, error)
	loginFn    func(ctx context.Context, email, password string) (string, *domain.Account, error)
	logoutFn   func(ctx context.Context, claims ports.TokenClaims) error
	refreshFn  func(ctx context.Context, claims ports.TokenClaims) (string, error)
	meFn       func(ctx context.Context, id int64) (*domain.Account, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (string, *domain.Account, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, *domain.Account, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Logout(ctx context.Context, claims ports.TokenClaims) error {
	return s.logoutFn(ctx, claims)
}

func (s *stubAuthService) Refresh(ctx context.Context, claims ports.TokenClaims) (string, error) {
	return s.refreshFn(ctx, claims)
}

func (s *stubAuthService) Me(ctx context.Context, id int64) (*domain.Account, error) {
	return s.meFn(ctx, id)
}

// newContext builds a request context with the validator installed and,
// when actor is non-nil, token claims for it.
func newContext(method, target, body string, actor *domain.Account) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if actor != nil {
		middleware.SetClaims(c, ports.TokenClaims{AccountID: actor.ID, Role: actor.Role, TokenID: "jti"})
	}
	return c, rec
}
