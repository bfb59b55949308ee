// internal/loan/domain.go
package loan

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusBorrowed Status = "BORROWED"
	StatusReturned Status = "RETURNED"
	StatusOverdue  Status = "OVERDUE"
)

var (
	ErrBookNotAvailable    = errors.New("book not available")
	ErrBookNotFound        = errors.New("book not found")
	ErrBookAlreadyBorrowed = errors.New("user already has an active loan for this book")
	ErrLoanNotFound        = errors.New("loan not found")
	ErrLoanAlreadyReturned = errors.New("loan already returned")
	ErrStockInconsistency  = errors.New("stock ledger disagrees with loan ledger")
)

// IntegrityError means a compensating action itself failed: the stock and
// loan ledgers may have diverged and need out-of-band reconciliation.
// Retrying the original request will not fix it.
type IntegrityError struct {
	Op    string
	Cause error
	Err   error
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity alarm during %s (original failure: %v): %v", e.Op, e.Cause, e.Err)
}

func (e *IntegrityError) Unwrap() error { return e.Err }

// Loan is the locally-owned borrow/return record. ReturnDate is set if and
// only if Status is RETURNED. Loans are never deleted; status moves
// BORROWED→RETURNED or BORROWED→OVERDUE→RETURNED and never regresses.
type Loan struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	BookID     uuid.UUID  `json:"book_id" db:"book_id"`
	UserID     uuid.UUID  `json:"user_id" db:"user_id"`
	LoanDate   time.Time  `json:"loan_date" db:"loan_date"`
	DueDate    time.Time  `json:"due_date" db:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty" db:"return_date"`
	Status     Status     `json:"status" db:"status"`
}

// Active reports whether the loan still holds a copy.
func (l *Loan) Active() bool {
	return l.Status == StatusBorrowed || l.Status == StatusOverdue
}
