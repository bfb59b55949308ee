// internal/clients/stock_client.go
package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"lendflow/internal/stock"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
)

// Outcome classifies a stock mutation reply. A zero Outcome together with a
// non-nil error means the collaborator could not be reached at all.
type Outcome int

const (
	OutcomeOK Outcome = iota + 1
	OutcomeOutOfStock
	OutcomeAlreadyFull
	OutcomeNotFound
)

// CommunicationError marks transport-level failures (timeout, connection
// refused, 5xx, open breaker) as distinct from domain rejections. It is
// retryable by the caller; domain rejections are not.
type CommunicationError struct {
	Op  string
	Err error
}

func (e *CommunicationError) Error() string {
	return fmt.Sprintf("stock collaborator unreachable during %s: %v", e.Op, e.Err)
}

func (e *CommunicationError) Unwrap() error { return e.Err }

// StockClient talks to the stock ledger service. It enforces a bounded
// timeout and classifies replies; it never retries — retry policy belongs
// to the orchestrator, which knows the saga state.
type StockClient struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

func NewStockClient(baseURL string, timeout time.Duration) *StockClient {
	return &StockClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "stock",
			Timeout: 10 * time.Second,
		}),
	}
}

// TryReserve takes one copy of the book off the shelf.
func (c *StockClient) TryReserve(ctx context.Context, bookID uuid.UUID) (Outcome, error) {
	status, err := c.mutate(ctx, bookID, "borrow")
	if err != nil {
		return 0, &CommunicationError{Op: "reserve", Err: err}
	}

	switch status {
	case http.StatusOK:
		return OutcomeOK, nil
	case http.StatusConflict:
		return OutcomeOutOfStock, nil
	case http.StatusNotFound:
		return OutcomeNotFound, nil
	default:
		return 0, &CommunicationError{Op: "reserve", Err: fmt.Errorf("unexpected status code: %d", status)}
	}
}

// TryRelease puts one copy of the book back on the shelf.
func (c *StockClient) TryRelease(ctx context.Context, bookID uuid.UUID) (Outcome, error) {
	status, err := c.mutate(ctx, bookID, "return")
	if err != nil {
		return 0, &CommunicationError{Op: "release", Err: err}
	}

	switch status {
	case http.StatusOK:
		return OutcomeOK, nil
	case http.StatusConflict:
		return OutcomeAlreadyFull, nil
	case http.StatusNotFound:
		return OutcomeNotFound, nil
	default:
		return 0, &CommunicationError{Op: "release", Err: fmt.Errorf("unexpected status code: %d", status)}
	}
}

// GetBook fetches the book's title and counters, used for event enrichment.
func (c *StockClient) GetBook(ctx context.Context, bookID uuid.UUID) (*stock.Book, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/books/%s", c.baseURL, bookID), nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			var book stock.Book
			if err := json.NewDecoder(resp.Body).Decode(&book); err != nil {
				return nil, err
			}
			return &book, nil
		case resp.StatusCode == http.StatusNotFound:
			return nil, stock.ErrBookNotFound
		default:
			return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}
	})
	if err != nil {
		if err == stock.ErrBookNotFound {
			return nil, err
		}
		return nil, &CommunicationError{Op: "get book", Err: err}
	}

	return result.(*stock.Book), nil
}

// mutate issues the reserve/release call and returns the raw status code.
// Transport failures and 5xx pass through the breaker as errors so that a
// struggling collaborator trips it; domain rejections (404/409) do not.
func (c *StockClient) mutate(ctx context.Context, bookID uuid.UUID, action string) (int, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPut, fmt.Sprintf("%s/books/%s/%s", c.baseURL, bookID, action), nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("server error: %d", resp.StatusCode)
		}
		return resp.StatusCode, nil
	})
	if err != nil {
		return 0, err
	}

	return result.(int), nil
}
