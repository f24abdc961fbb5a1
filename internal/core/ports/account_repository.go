package ports

import (
	"context"

	"github.com/99minutos/users-api/internal/core/domain"
)

// Sort keys accepted by AccountRepository.List.
const (
	SortByName      = "name"
	SortByEmail     = "email"
	SortByCreatedAt = "created_at"
)

// ListAccountsFilter carries the query parameters for listing accounts.
// Only active accounts are ever returned.
type ListAccountsFilter struct {
	Search string // optional: case-insensitive substring on name or email
	SortBy string // one of the SortBy* constants; already normalized by the service
	Page   int    // 1-based
	Limit  int
}

// AccountRepository defines persistence operations for accounts.
//
// Create and Update return domain.ErrDuplicateKey when the email unique
// constraint rejects the write. FindByID, FindByEmail and Update return
// domain.ErrAccountNotFound when no record matches.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByID(ctx context.Context, id int64) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	Update(ctx context.Context, id int64, changes domain.AccountChanges) (*domain.Account, error)
	// List returns a page of active accounts matching filter and the total count.
	List(ctx context.Context, filter ListAccountsFilter) ([]*domain.Account, int64, error)
}

// OrderCounter reports how many orders each account owns.
type OrderCounter interface {
	CountOrders(ctx context.Context, accountIDs []int64) (map[int64]int64, error)
}
