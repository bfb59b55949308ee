// internal/stock/domain.go
package stock

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrBookNotFound = errors.New("book not found")
	ErrOutOfStock   = errors.New("no copies available")
	ErrAtCapacity   = errors.New("all copies already on shelf")
)

// Book is the per-title availability counter. The invariant
// 0 <= Available <= Quantity holds across all reserve/release sequences.
type Book struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Author    string    `json:"author" db:"author"`
	Quantity  int       `json:"quantity" db:"quantity"`
	Available int       `json:"available" db:"available"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
