package ports

import (
	"context"
	"time"
)

// TokenRevocationStore tracks token ids that must no longer be accepted.
type TokenRevocationStore interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
