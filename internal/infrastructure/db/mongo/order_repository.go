package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const collectionOrders = "orders"

// OrderRepository reads the orders collection, which is owned by another
// service and only ever counted here.
type OrderRepository struct {
	col *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{col: db.Collection(collectionOrders)}
}

// CountOrders groups orders by user_id for the given accounts. Accounts
// without orders are absent from the result.
func (r *OrderRepository) CountOrders(ctx context.Context, accountIDs []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64, len(accountIDs))
	if len(accountIDs) == 0 {
		return counts, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": bson.M{"$in": accountIDs}}}},
		{{Key: "$group", Value: bson.M{"_id": "$user_id", "count": bson.M{"$sum": 1}}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate orders: %w", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var row struct {
			UserID int64 `bson:"_id"`
			Count  int64 `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, fmt.Errorf("decode order count: %w", err)
		}
		counts[row.UserID] = row.Count
	}
	return counts, cur.Err()
}
