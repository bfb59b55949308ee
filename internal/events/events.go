// internal/events/events.go
package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is a loan lifecycle fact. Events are immutable and append-only;
// the partition key is always the loan ID so the sink preserves per-loan
// ordering.
type Event interface {
	EventType() string
	PartitionKey() uuid.UUID
}

// LoanCreated is published when a borrow saga commits.
type LoanCreated struct {
	LoanID    uuid.UUID `json:"loan_id"`
	UserID    uuid.UUID `json:"user_id"`
	BookID    uuid.UUID `json:"book_id"`
	LoanDate  time.Time `json:"loan_date"`
	DueDate   time.Time `json:"due_date"`
	BookTitle string    `json:"book_title,omitempty"`
	UserEmail string    `json:"user_email,omitempty"`
}

func (LoanCreated) EventType() string { return "LoanCreated" }

func (e LoanCreated) PartitionKey() uuid.UUID { return e.LoanID }

// LoanReturned is published when a return commits.
type LoanReturned struct {
	LoanID     uuid.UUID `json:"loan_id"`
	UserID     uuid.UUID `json:"user_id"`
	BookID     uuid.UUID `json:"book_id"`
	LoanDate   time.Time `json:"loan_date"`
	ReturnDate time.Time `json:"return_date"`
	BookTitle  string    `json:"book_title,omitempty"`
	UserEmail  string    `json:"user_email,omitempty"`
}

func (LoanReturned) EventType() string { return "LoanReturned" }

func (e LoanReturned) PartitionKey() uuid.UUID { return e.LoanID }

// LoanOverdue is published by the overdue scan after a loan crosses its
// due date. Title and email are denormalized at emission time for
// notification formatting; they may be empty when enrichment failed.
type LoanOverdue struct {
	LoanID    uuid.UUID `json:"loan_id"`
	UserID    uuid.UUID `json:"user_id"`
	BookID    uuid.UUID `json:"book_id"`
	BookTitle string    `json:"book_title,omitempty"`
	LoanDate  time.Time `json:"loan_date"`
	DueDate   time.Time `json:"due_date"`
	UserEmail string    `json:"user_email,omitempty"`
}

func (LoanOverdue) EventType() string { return "LoanOverdue" }

func (e LoanOverdue) PartitionKey() uuid.UUID { return e.LoanID }

// LoanReminder is published ahead of the due date. Repeated scans may
// publish the same reminder again; consumers must tolerate duplicates.
type LoanReminder struct {
	LoanID    uuid.UUID `json:"loan_id"`
	UserID    uuid.UUID `json:"user_id"`
	BookID    uuid.UUID `json:"book_id"`
	BookTitle string    `json:"book_title,omitempty"`
	LoanDate  time.Time `json:"loan_date"`
	DueDate   time.Time `json:"due_date"`
	UserEmail string    `json:"user_email,omitempty"`
}

func (LoanReminder) EventType() string { return "LoanReminder" }

func (e LoanReminder) PartitionKey() uuid.UUID { return e.LoanID }
