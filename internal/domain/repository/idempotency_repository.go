package repository

import (
	"context"

	"github.com/sangkips/receipt-print-api/internal/domain/entity"
)

// IdempotencyRepository defines the interface for idempotency key operations
type IdempotencyRepository interface {
	// GetByKey retrieves an idempotency key by its key string and terminal ID
	GetByKey(ctx context.Context, key, terminalID string) (*entity.IdempotencyKey, error)
	// Create stores a new idempotency key
	Create(ctx context.Context, ikey *entity.IdempotencyKey) error
	// DeleteExpired removes expired idempotency keys and reports how many were removed
	DeleteExpired(ctx context.Context) (int64, error)
}
