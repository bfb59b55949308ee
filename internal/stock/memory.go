// internal/stock/memory.go
package stock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryLedger is an in-process Service used when no database is
// configured and by tests. A single mutex serializes all counter
// mutations, which is the same per-book guarantee the postgres
// implementation gets from guarded updates.
type MemoryLedger struct {
	mu    sync.Mutex
	books map[uuid.UUID]*Book
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{books: make(map[uuid.UUID]*Book)}
}

func (m *MemoryLedger) Add(_ context.Context, title, author string, quantity int) (*Book, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("quantity must be non-negative, got %d", quantity)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	book := &Book{
		ID:        uuid.New(),
		Title:     title,
		Author:    author,
		Quantity:  quantity,
		Available: quantity,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	m.books[book.ID] = book

	copied := *book
	return &copied, nil
}

func (m *MemoryLedger) Get(_ context.Context, id uuid.UUID) (*Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	book, ok := m.books[id]
	if !ok {
		return nil, ErrBookNotFound
	}

	copied := *book
	return &copied, nil
}

func (m *MemoryLedger) Reserve(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	book, ok := m.books[id]
	if !ok {
		return ErrBookNotFound
	}
	if book.Available <= 0 {
		return ErrOutOfStock
	}

	book.Available--
	book.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryLedger) Release(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	book, ok := m.books[id]
	if !ok {
		return ErrBookNotFound
	}
	if book.Available >= book.Quantity {
		return ErrAtCapacity
	}

	book.Available++
	book.UpdatedAt = time.Now().UTC()
	return nil
}
