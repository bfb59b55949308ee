// internal/loan/store.go
package loan

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Store persists loan records. FindActive returns (nil, nil) when the user
// holds no active loan for the book. The Mark methods guard the status in
// the WHERE clause so a committed RETURNED row can never regress, whatever
// the caller believed the current status was.
type Store interface {
	Create(ctx context.Context, l *Loan) error
	GetByID(ctx context.Context, id uuid.UUID) (*Loan, error)
	FindActive(ctx context.Context, userID, bookID uuid.UUID) (*Loan, error)
	MarkReturned(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkOverdue(ctx context.Context, id uuid.UUID) error
	ListOverdueCandidates(ctx context.Context, asOf time.Time) ([]*Loan, error)
	ListDueOn(ctx context.Context, day time.Time) ([]*Loan, error)
}

// pgStore implements Store on postgres.
type pgStore struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) Store {
	return &pgStore{db: db}
}

func (s *pgStore) Create(ctx context.Context, l *Loan) error {
	query := `
		INSERT INTO loans (id, book_id, user_id, loan_date, due_date, return_date, status)
		VALUES (:id, :book_id, :user_id, :loan_date, :due_date, :return_date, :status)
	`
	if _, err := s.db.NamedExecContext(ctx, query, l); err != nil {
		return fmt.Errorf("insert loan: %w", err)
	}
	return nil
}

func (s *pgStore) GetByID(ctx context.Context, id uuid.UUID) (*Loan, error) {
	query := `
		SELECT id, book_id, user_id, loan_date, due_date, return_date, status
		FROM loans
		WHERE id = $1
	`
	l := &Loan{}
	if err := s.db.GetContext(ctx, l, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLoanNotFound
		}
		return nil, fmt.Errorf("get loan: %w", err)
	}
	return l, nil
}

func (s *pgStore) FindActive(ctx context.Context, userID, bookID uuid.UUID) (*Loan, error) {
	query := `
		SELECT id, book_id, user_id, loan_date, due_date, return_date, status
		FROM loans
		WHERE user_id = $1 AND book_id = $2 AND status IN ('BORROWED', 'OVERDUE')
		LIMIT 1
	`
	l := &Loan{}
	if err := s.db.GetContext(ctx, l, query, userID, bookID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find active loan: %w", err)
	}
	return l, nil
}

func (s *pgStore) MarkReturned(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE loans
		SET status = 'RETURNED', return_date = $2
		WHERE id = $1 AND status != 'RETURNED'
	`
	res, err := s.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("mark loan returned: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark loan returned: %w", err)
	}
	if affected == 0 {
		return ErrLoanAlreadyReturned
	}
	return nil
}

func (s *pgStore) MarkOverdue(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE loans
		SET status = 'OVERDUE'
		WHERE id = $1 AND status = 'BORROWED'
	`
	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("mark loan overdue: %w", err)
	}
	return nil
}

func (s *pgStore) ListOverdueCandidates(ctx context.Context, asOf time.Time) ([]*Loan, error) {
	query := `
		SELECT id, book_id, user_id, loan_date, due_date, return_date, status
		FROM loans
		WHERE status = 'BORROWED' AND due_date::date < $1::date
		ORDER BY due_date ASC
	`
	var loans []*Loan
	if err := s.db.SelectContext(ctx, &loans, query, asOf); err != nil {
		return nil, fmt.Errorf("list overdue candidates: %w", err)
	}
	return loans, nil
}

func (s *pgStore) ListDueOn(ctx context.Context, day time.Time) ([]*Loan, error) {
	query := `
		SELECT id, book_id, user_id, loan_date, due_date, return_date, status
		FROM loans
		WHERE status = 'BORROWED' AND due_date::date = $1::date
		ORDER BY due_date ASC
	`
	var loans []*Loan
	if err := s.db.SelectContext(ctx, &loans, query, day); err != nil {
		return nil, fmt.Errorf("list loans due on day: %w", err)
	}
	return loans, nil
}
