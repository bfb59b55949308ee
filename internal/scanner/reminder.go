// internal/scanner/reminder.go
package scanner

import (
	"context"
	"log/slog"
	"time"

	"lendflow/internal/events"
	"lendflow/internal/loan"

	"golang.org/x/time/rate"
)

// ReminderScanner emits a LoanReminder for every BORROWED loan due in
// LeadDays. No status transition happens here, which also means there is
// nothing excluding a loan from the next run: repeated scans re-emit the
// same reminder.
type ReminderScanner struct {
	store     loan.Store
	stock     loan.StockGateway
	identity  loan.IdentityGateway
	publisher events.Publisher
	logger    *slog.Logger
	limiter   *rate.Limiter
	leadDays  int
	now       func() time.Time
}

func NewReminderScanner(store loan.Store, stock loan.StockGateway, identity loan.IdentityGateway, publisher events.Publisher, logger *slog.Logger, leadDays int) *ReminderScanner {
	return &ReminderScanner{
		store:     store,
		stock:     stock,
		identity:  identity,
		publisher: publisher,
		logger:    logger,
		limiter:   rate.NewLimiter(rate.Limit(20), 20),
		leadDays:  leadDays,
		now:       time.Now,
	}
}

func (s *ReminderScanner) Run(ctx context.Context) {
	target := s.now().UTC().AddDate(0, 0, s.leadDays)

	due, err := s.store.ListDueOn(ctx, target)
	if err != nil {
		s.logger.Error("reminder scan: listing due loans failed", slog.Any("error", err))
		return
	}

	for _, l := range due {
		if ctx.Err() != nil {
			return
		}

		title, email := enrich(ctx, s.limiter, s.stock, s.identity, s.logger, l)
		s.publisher.Publish(ctx, events.LoanReminder{
			LoanID:    l.ID,
			UserID:    l.UserID,
			BookID:    l.BookID,
			BookTitle: title,
			LoanDate:  l.LoanDate,
			DueDate:   l.DueDate,
			UserEmail: email,
		})
	}
}
