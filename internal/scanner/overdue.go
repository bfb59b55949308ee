// internal/scanner/overdue.go
package scanner

import (
	"context"
	"log/slog"
	"time"

	"lendflow/internal/events"
	"lendflow/internal/loan"

	"golang.org/x/time/rate"
)

// OverdueScanner transitions BORROWED loans past their due date to
// OVERDUE and emits a LoanOverdue event for each. The status transition
// is the source of truth; enrichment and event publication are
// best-effort and never roll it back. Loans already OVERDUE fall out of
// the candidate query, so re-running the scan is a transition no-op.
// Event emission is not deduplicated across runs.
type OverdueScanner struct {
	store     loan.Store
	stock     loan.StockGateway
	identity  loan.IdentityGateway
	publisher events.Publisher
	logger    *slog.Logger
	limiter   *rate.Limiter
	now       func() time.Time
}

func NewOverdueScanner(store loan.Store, stock loan.StockGateway, identity loan.IdentityGateway, publisher events.Publisher, logger *slog.Logger) *OverdueScanner {
	return &OverdueScanner{
		store:     store,
		stock:     stock,
		identity:  identity,
		publisher: publisher,
		logger:    logger,
		// Caps enrichment load on the collaborators during large scans.
		limiter: rate.NewLimiter(rate.Limit(20), 20),
		now:     time.Now,
	}
}

// Run processes one batch. Per-loan failures are logged and skipped; they
// never block the remaining loans.
func (s *OverdueScanner) Run(ctx context.Context) {
	today := s.now().UTC()

	candidates, err := s.store.ListOverdueCandidates(ctx, today)
	if err != nil {
		s.logger.Error("overdue scan: listing candidates failed", slog.Any("error", err))
		return
	}

	for _, l := range candidates {
		if ctx.Err() != nil {
			return
		}
		if err := s.process(ctx, l); err != nil {
			s.logger.Error("overdue scan: loan skipped",
				slog.String("loan_id", l.ID.String()),
				slog.Any("error", err),
			)
		}
	}
}

func (s *OverdueScanner) process(ctx context.Context, l *loan.Loan) error {
	if err := s.store.MarkOverdue(ctx, l.ID); err != nil {
		return err
	}

	title, email := enrich(ctx, s.limiter, s.stock, s.identity, s.logger, l)
	s.publisher.Publish(ctx, events.LoanOverdue{
		LoanID:    l.ID,
		UserID:    l.UserID,
		BookID:    l.BookID,
		BookTitle: title,
		LoanDate:  l.LoanDate,
		DueDate:   l.DueDate,
		UserEmail: email,
	})
	return nil
}

// enrich resolves the book title and user email for notification
// formatting. Failures leave the fields empty; the event still goes out.
func enrich(ctx context.Context, limiter *rate.Limiter, stock loan.StockGateway, identity loan.IdentityGateway, logger *slog.Logger, l *loan.Loan) (title, email string) {
	if err := limiter.Wait(ctx); err != nil {
		return "", ""
	}

	if book, err := stock.GetBook(ctx, l.BookID); err == nil {
		title = book.Title
	} else {
		logger.Warn("enrichment: book lookup failed",
			slog.String("book_id", l.BookID.String()),
			slog.Any("error", err),
		)
	}

	if user, err := identity.GetUser(ctx, l.UserID); err == nil {
		email = user.Email
	} else {
		logger.Warn("enrichment: user lookup failed",
			slog.String("user_id", l.UserID.String()),
			slog.Any("error", err),
		)
	}

	return title, email
}
