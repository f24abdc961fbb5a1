package ports

import (
	"context"
	"time"

	"github.com/99minutos/users-api/internal/core/domain"
)

// CreateAccountInput carries the data needed to create an account.
// Password is plaintext; the service hashes it.
type CreateAccountInput struct {
	Email    string
	Password string
	Name     string
	Role     *domain.Role // optional, defaults to User
	Active   *bool        // optional, defaults to true
}

// UpdateAccountInput is a partial update; nil fields are left untouched.
type UpdateAccountInput struct {
	Name   *string
	Email  *string
	Role   *domain.Role
	Active *bool
}

// ListAccountsInput carries the parameters of the list endpoint.
type ListAccountsInput struct {
	Search string
	SortBy string
	Page   int
}

// AccountSummary is a listed account annotated relative to the requesting actor.
type AccountSummary struct {
	ID          int64
	Email       string
	Name        string
	Role        domain.Role
	CreatedAt   time.Time
	OrdersCount int64
	CanEdit     bool
}

// ListAccountsResult is returned by ListUsers.
type ListAccountsResult struct {
	Items      []AccountSummary
	Page       int
	PageSize   int
	Total      int64
	TotalPages int
}

// AccountService defines use-case operations for account management.
// The actor is always passed explicitly; nil means unauthenticated.
type AccountService interface {
	CreateUser(ctx context.Context, input CreateAccountInput, actor *domain.Account) (*domain.Account, error)
	UpdateUser(ctx context.Context, id int64, input UpdateAccountInput, actor *domain.Account) (*domain.Account, error)
	ListUsers(ctx context.Context, input ListAccountsInput, actor *domain.Account) (*ListAccountsResult, error)
	GetUser(ctx context.Context, id int64) (*domain.Account, error)
}
