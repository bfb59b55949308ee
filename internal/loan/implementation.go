// internal/loan/implementation.go
package loan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"lendflow/internal/clients"
	"lendflow/internal/events"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// service implements the loan orchestrator. It is the only writer of loan
// status transitions; stock counters are only ever touched through the
// stock collaborator's API.
type service struct {
	store     Store
	stock     StockGateway
	identity  IdentityGateway
	publisher events.Publisher
	logger    *slog.Logger
	tracer    trace.Tracer

	loanPeriodDays int
	now            func() time.Time
}

// NewService creates a new loan orchestrator.
func NewService(store Store, stockGw StockGateway, identity IdentityGateway, publisher events.Publisher, logger *slog.Logger, loanPeriodDays int) Service {
	return &service{
		store:          store,
		stock:          stockGw,
		identity:       identity,
		publisher:      publisher,
		logger:         logger,
		tracer:         otel.Tracer("lendflow/loan"),
		loanPeriodDays: loanPeriodDays,
		now:            time.Now,
	}
}

// Borrow runs the borrow saga: reserve a copy remotely first, then check
// for a duplicate active loan, then persist. The duplicate check runs
// after the reservation on purpose — this avoids holding any lock across
// the two ledgers at the price of an occasional compensating release. Any
// failure after the reservation succeeds must release the copy.
func (s *service) Borrow(ctx context.Context, userID, bookID uuid.UUID) (*Loan, error) {
	ctx, span := s.tracer.Start(ctx, "loan.borrow",
		trace.WithAttributes(
			attribute.String("user.id", userID.String()),
			attribute.String("book.id", bookID.String()),
		),
	)
	defer span.End()

	user, err := s.identity.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve user: %w", err)
	}

	outcome, err := s.stock.TryReserve(ctx, bookID)
	if err != nil {
		// Nothing reserved, nothing persisted: safe to fail outright.
		return nil, fmt.Errorf("reserve copy: %w", err)
	}
	switch outcome {
	case clients.OutcomeOutOfStock:
		return nil, ErrBookNotAvailable
	case clients.OutcomeNotFound:
		return nil, ErrBookNotFound
	}

	// A copy is now reserved. Every exit below this point either commits
	// the loan or releases that copy.
	active, err := s.store.FindActive(ctx, userID, bookID)
	if err != nil {
		return nil, s.compensate(ctx, span, bookID, fmt.Errorf("check active loan: %w", err))
	}
	if active != nil {
		span.SetAttributes(attribute.Bool("duplicate.detected", true))
		return nil, s.compensate(ctx, span, bookID, ErrBookAlreadyBorrowed)
	}

	now := s.now().UTC()
	l := &Loan{
		ID:       uuid.New(),
		BookID:   bookID,
		UserID:   userID,
		LoanDate: now,
		DueDate:  now.AddDate(0, 0, s.loanPeriodDays),
		Status:   StatusBorrowed,
	}
	if err := s.store.Create(ctx, l); err != nil {
		return nil, s.compensate(ctx, span, bookID, fmt.Errorf("persist loan: %w", err))
	}

	span.SetAttributes(attribute.String("loan.id", l.ID.String()))

	s.publisher.Publish(ctx, events.LoanCreated{
		LoanID:    l.ID,
		UserID:    userID,
		BookID:    bookID,
		LoanDate:  l.LoanDate,
		DueDate:   l.DueDate,
		BookTitle: s.bookTitle(ctx, bookID),
		UserEmail: user.Email,
	})

	return l, nil
}

// Return releases the copy back to stock and marks the loan returned.
// Unlike Borrow, local state is validated before any remote call: return
// has no remote prerequisite to compensate, so the cheap check goes first.
func (s *service) Return(ctx context.Context, loanID uuid.UUID) (*Loan, error) {
	ctx, span := s.tracer.Start(ctx, "loan.return",
		trace.WithAttributes(attribute.String("loan.id", loanID.String())),
	)
	defer span.End()

	l, err := s.store.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if l.Status == StatusReturned {
		return nil, ErrLoanAlreadyReturned
	}

	outcome, err := s.stock.TryRelease(ctx, l.BookID)
	if err != nil {
		// Loan untouched; the caller may retry the whole return.
		return nil, fmt.Errorf("release copy: %w", err)
	}
	switch outcome {
	case clients.OutcomeAlreadyFull, clients.OutcomeNotFound:
		// The stock counter no longer matches an open loan, likely a
		// concurrent manual stock edit. Leave the loan active for retry
		// after reconciliation.
		span.SetAttributes(attribute.Bool("stock.inconsistent", true))
		return nil, ErrStockInconsistency
	}

	now := s.now().UTC()
	if err := s.store.MarkReturned(ctx, l.ID, now); err != nil {
		return nil, fmt.Errorf("persist return: %w", err)
	}
	l.Status = StatusReturned
	l.ReturnDate = &now

	s.publisher.Publish(ctx, events.LoanReturned{
		LoanID:     l.ID,
		UserID:     l.UserID,
		BookID:     l.BookID,
		LoanDate:   l.LoanDate,
		ReturnDate: now,
		BookTitle:  s.bookTitle(ctx, l.BookID),
	})

	return l, nil
}

func (s *service) Get(ctx context.Context, loanID uuid.UUID) (*Loan, error) {
	return s.store.GetByID(ctx, loanID)
}

// compensate releases a reserved copy after a post-reservation failure and
// returns the original cause. A failed compensation leaks the reservation:
// that is escalated as an integrity alarm, not swallowed, because from
// here on only out-of-band reconciliation can restore the counters.
func (s *service) compensate(ctx context.Context, span trace.Span, bookID uuid.UUID, cause error) error {
	outcome, err := s.stock.TryRelease(ctx, bookID)
	if err == nil && outcome != clients.OutcomeOK {
		err = fmt.Errorf("release rejected with outcome %d", outcome)
	}
	if err != nil {
		span.RecordError(err)
		s.logger.Error("compensating release failed, reservation leaked",
			slog.Bool("integrity_alarm", true),
			slog.String("book_id", bookID.String()),
			slog.Any("original_failure", cause),
			slog.Any("error", err),
		)
		return &IntegrityError{Op: "borrow compensation", Cause: cause, Err: err}
	}
	return cause
}

// bookTitle fetches the title for event enrichment. Best effort: a miss
// leaves the field empty rather than failing the already-committed
// operation.
func (s *service) bookTitle(ctx context.Context, bookID uuid.UUID) string {
	book, err := s.stock.GetBook(ctx, bookID)
	if err != nil {
		s.logger.Warn("could not enrich event with book title",
			slog.String("book_id", bookID.String()),
			slog.Any("error", err),
		)
		return ""
	}
	return book.Title
}
