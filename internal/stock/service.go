// internal/stock/service.go
package stock

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the interface for the stock ledger. Reserve and Release
// adjust the available count by exactly one and must be atomic per book:
// concurrent callers never observe a lost update or a count outside
// [0, Quantity].
type Service interface {
	Add(ctx context.Context, title, author string, quantity int) (*Book, error)
	Get(ctx context.Context, id uuid.UUID) (*Book, error)
	Reserve(ctx context.Context, id uuid.UUID) error
	Release(ctx context.Context, id uuid.UUID) error
}
