package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// CountOrders returns order counts keyed by user id. Accounts without orders
// are absent from the result.
func (r *OrderRepository) CountOrders(ctx context.Context, accountIDs []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64, len(accountIDs))
	if len(accountIDs) == 0 {
		return counts, nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx,
		`SELECT user_id, COUNT(*) FROM orders WHERE user_id = ANY($1) GROUP BY user_id`, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, n int64
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scan order count: %w", err)
		}
		counts[id] = n
	}
	return counts, rows.Err()
}
