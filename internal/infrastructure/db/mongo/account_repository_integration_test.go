//go:build integration

package mongo_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/99minutos/users-api/internal/core/domain"
	"github.com/99minutos/users-api/internal/core/ports"
	mongorepo "github.com/99minutos/users-api/internal/infrastructure/db/mongo"
)

func setupRepo(t *testing.T) (*mongorepo.AccountRepository, *mongorepo.OrderRepository, func(docs ...interface{})) {
	t.Helper()

	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Fatal("MONGO_URI must be set for integration tests")
	}

	ctx := context.Background()
	client, db, err := mongorepo.Connect(ctx, mongorepo.Config{
		URI:      uri,
		Database: fmt.Sprintf("users_it_%d", time.Now().UnixNano()),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	repo := mongorepo.NewAccountRepository(db)
	require.NoError(t, repo.EnsureIndexes(ctx))

	insertOrders := func(docs ...interface{}) {
		_, err := db.Collection("orders").InsertMany(ctx, docs)
		require.NoError(t, err)
	}
	return repo, mongorepo.NewOrderRepository(db), insertOrders
}

func newAccount(email, name string, active bool) *domain.Account {
	now := time.Now().UTC()
	return &domain.Account{
		Email:        email,
		Name:         name,
		PasswordHash: "hash",
		Role:         domain.RoleUser,
		Active:       active,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestAccountRepository_CreateAndFind(t *testing.T) {
	repo, _, _ := setupRepo(t)
	ctx := context.Background()

	a, err := repo.Create(ctx, newAccount("a@example.com", "Alpha", true))
	require.NoError(t, err)
	b, err := repo.Create(ctx, newAccount("b@example.com", "Beta", true))
	require.NoError(t, err)
	assert.Equal(t, a.ID+1, b.ID)

	got, err := repo.FindByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = repo.Create(ctx, newAccount("a@example.com", "Dup", true))
	assert.ErrorIs(t, err, domain.ErrDuplicateKey)

	_, err = repo.FindByID(ctx, 9999)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestAccountRepository_Update(t *testing.T) {
	repo, _, _ := setupRepo(t)
	ctx := context.Background()

	a, _ := repo.Create(ctx, newAccount("a@example.com", "Alpha", true))
	_, _ = repo.Create(ctx, newAccount("b@example.com", "Beta", true))

	name := "Renamed"
	updated, err := repo.Update(ctx, a.ID, domain.AccountChanges{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "a@example.com", updated.Email)

	taken := "b@example.com"
	_, err = repo.Update(ctx, a.ID, domain.AccountChanges{Email: &taken})
	assert.ErrorIs(t, err, domain.ErrDuplicateKey)

	_, err = repo.Update(ctx, 9999, domain.AccountChanges{Name: &name})
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestAccountRepository_ListAndCountOrders(t *testing.T) {
	repo, orders, insertOrders := setupRepo(t)
	ctx := context.Background()

	c, _ := repo.Create(ctx, newAccount("carol@example.com", "Carol", true))
	a, _ := repo.Create(ctx, newAccount("alice@example.com", "Alice", true))
	_, _ = repo.Create(ctx, newAccount("ghost@example.com", "Ghost", false))

	rows, total, err := repo.List(ctx, ports.ListAccountsFilter{SortBy: ports.SortByName, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, rows, 2)
	assert.Equal(t, "Alice", rows[0].Name)

	rows, total, err = repo.List(ctx, ports.ListAccountsFilter{Search: "CAR", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, c.ID, rows[0].ID)

	insertOrders(bson.M{"user_id": a.ID}, bson.M{"user_id": a.ID}, bson.M{"user_id": c.ID})
	counts, err := orders.CountOrders(ctx, []int64{a.ID, c.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, counts[a.ID])
	assert.EqualValues(t, 1, counts[c.ID])
}
