// internal/stock/implementation.go
package stock

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// service implements Service on postgres. Atomicity per book comes from
// single guarded UPDATE statements: the availability bound is part of the
// WHERE clause, so a violating adjustment simply matches zero rows.
type service struct {
	db *sqlx.DB
}

// NewService creates a new stock ledger backed by postgres.
func NewService(db *sqlx.DB) Service {
	return &service{db: db}
}

// Add registers a new title with all copies on the shelf.
func (s *service) Add(ctx context.Context, title, author string, quantity int) (*Book, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("quantity must be non-negative, got %d", quantity)
	}

	book := &Book{
		ID:        uuid.New(),
		Title:     title,
		Author:    author,
		Quantity:  quantity,
		Available: quantity,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	query := `
		INSERT INTO books (id, title, author, quantity, available, created_at, updated_at)
		VALUES (:id, :title, :author, :quantity, :available, :created_at, :updated_at)
	`
	if _, err := s.db.NamedExecContext(ctx, query, book); err != nil {
		return nil, fmt.Errorf("insert book: %w", err)
	}

	return book, nil
}

// Get retrieves a book with its current counters.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*Book, error) {
	query := `
		SELECT id, title, author, quantity, available, created_at, updated_at
		FROM books
		WHERE id = $1
	`
	book := &Book{}
	if err := s.db.GetContext(ctx, book, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("get book: %w", err)
	}

	return book, nil
}

// Reserve takes one copy off the shelf. The lower bound lives in the WHERE
// clause, so two concurrent reservations of the last copy race on the row
// and exactly one wins.
func (s *service) Reserve(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE books
		SET available = available - 1, updated_at = NOW()
		WHERE id = $1 AND available > 0
	`
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("reserve copy: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reserve copy: %w", err)
	}
	if affected == 0 {
		return s.classifyMiss(ctx, id, ErrOutOfStock)
	}

	return nil
}

// Release puts one copy back on the shelf, rejecting when the shelf is
// already full (the counters were edited out from under an open loan).
func (s *service) Release(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE books
		SET available = available + 1, updated_at = NOW()
		WHERE id = $1 AND available < quantity
	`
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("release copy: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("release copy: %w", err)
	}
	if affected == 0 {
		return s.classifyMiss(ctx, id, ErrAtCapacity)
	}

	return nil
}

// classifyMiss distinguishes "row exists but the bound rejected the update"
// from "no such book" after a zero-row guarded update.
func (s *service) classifyMiss(ctx context.Context, id uuid.UUID, bound error) error {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM books WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check book existence: %w", err)
	}
	if !exists {
		return ErrBookNotFound
	}
	return bound
}
