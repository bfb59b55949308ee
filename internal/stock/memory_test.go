// internal/stock/memory_test.go
package stock

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestMemoryLedgerBounds(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()

	book, err := ledger.Add(ctx, "The Go Programming Language", "Donovan & Kernighan", 2)
	require.NoError(t, err)
	require.Equal(t, 2, book.Available)

	require.NoError(t, ledger.Reserve(ctx, book.ID))
	require.NoError(t, ledger.Reserve(ctx, book.ID))
	require.ErrorIs(t, ledger.Reserve(ctx, book.ID), ErrOutOfStock)

	require.NoError(t, ledger.Release(ctx, book.ID))
	require.NoError(t, ledger.Release(ctx, book.ID))
	require.ErrorIs(t, ledger.Release(ctx, book.ID), ErrAtCapacity)

	got, err := ledger.Get(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Available)
	assert.Equal(t, 2, got.Quantity)
}

func TestMemoryLedgerUnknownBook(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()

	_, err := ledger.Get(ctx, uuid.New())
	require.ErrorIs(t, err, ErrBookNotFound)
	require.ErrorIs(t, ledger.Reserve(ctx, uuid.New()), ErrBookNotFound)
	require.ErrorIs(t, ledger.Release(ctx, uuid.New()), ErrBookNotFound)
}

func TestMemoryLedgerZeroQuantity(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()

	book, err := ledger.Add(ctx, "Out of Print", "Nobody", 0)
	require.NoError(t, err)
	require.ErrorIs(t, ledger.Reserve(ctx, book.ID), ErrOutOfStock)
	require.ErrorIs(t, ledger.Release(ctx, book.ID), ErrAtCapacity)
}

func TestMemoryLedgerRejectsNegativeQuantity(t *testing.T) {
	_, err := NewMemoryLedger().Add(context.Background(), "Bad", "Input", -1)
	require.Error(t, err)
}

// Two concurrent reservations of the last copy: exactly one must win.
func TestMemoryLedgerConcurrentLastCopy(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()

	book, err := ledger.Add(ctx, "Single Copy", "Author", 1)
	require.NoError(t, err)

	const callers = 16
	var wg sync.WaitGroup
	results := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- ledger.Reserve(ctx, book.ID)
		}()
	}
	wg.Wait()
	close(results)

	var ok, outOfStock int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrOutOfStock):
			outOfStock++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, ok)
	assert.Equal(t, callers-1, outOfStock)

	got, err := ledger.Get(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Available)
}

// Property: no sequence of reserve/release operations ever moves the
// available count outside [0, quantity].
func TestMemoryLedgerAvailabilityInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		ledger := NewMemoryLedger()

		quantity := rapid.IntRange(0, 10).Draw(t, "quantity")
		book, err := ledger.Add(ctx, "Property Book", "Rapid", quantity)
		if err != nil {
			t.Fatalf("add: %v", err)
		}

		steps := rapid.IntRange(1, 100).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			if rapid.Bool().Draw(t, "reserve") {
				err = ledger.Reserve(ctx, book.ID)
				if err != nil && !errors.Is(err, ErrOutOfStock) {
					t.Fatalf("reserve: %v", err)
				}
			} else {
				err = ledger.Release(ctx, book.ID)
				if err != nil && !errors.Is(err, ErrAtCapacity) {
					t.Fatalf("release: %v", err)
				}
			}

			got, err := ledger.Get(ctx, book.ID)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if got.Available < 0 || got.Available > got.Quantity {
				t.Fatalf("availability invariant violated: available=%d quantity=%d", got.Available, got.Quantity)
			}
		}
	})
}
