// internal/loan/service.go
package loan

import (
	"context"

	"lendflow/internal/clients"
	"lendflow/internal/stock"

	"github.com/google/uuid"
)

// Service defines the interface for the loan orchestrator.
type Service interface {
	Borrow(ctx context.Context, userID, bookID uuid.UUID) (*Loan, error)
	Return(ctx context.Context, loanID uuid.UUID) (*Loan, error)
	Get(ctx context.Context, loanID uuid.UUID) (*Loan, error)
}

// StockGateway is the slice of the remote stock client the orchestrator
// depends on. A non-nil error from the Try methods always means the
// collaborator could not be reached; domain rejections come back as
// outcomes.
type StockGateway interface {
	TryReserve(ctx context.Context, bookID uuid.UUID) (clients.Outcome, error)
	TryRelease(ctx context.Context, bookID uuid.UUID) (clients.Outcome, error)
	GetBook(ctx context.Context, bookID uuid.UUID) (*stock.Book, error)
}

// IdentityGateway resolves users against the identity collaborator.
type IdentityGateway interface {
	GetUser(ctx context.Context, id uuid.UUID) (*clients.User, error)
}
