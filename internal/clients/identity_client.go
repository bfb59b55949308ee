// internal/clients/identity_client.go
package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

var ErrUserNotFound = errors.New("user not found")

// User is the slice of the identity collaborator's record this system
// cares about: existence, validity and the email used for notifications.
type User struct {
	ID     uuid.UUID `json:"id"`
	Email  string    `json:"email"`
	Name   string    `json:"name"`
	Status string    `json:"status"`
}

// IdentityClient resolves user identifiers against the identity
// collaborator. The core never depends on more than "exists or not" plus
// the notification email.
type IdentityClient struct {
	baseURL string
	client  *http.Client
}

func NewIdentityClient(baseURL string, timeout time.Duration) *IdentityClient {
	return &IdentityClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *IdentityClient) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/users/%s", c.baseURL, id), nil)
	if err != nil {
		return nil, &CommunicationError{Op: "get user", Err: err}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &CommunicationError{Op: "get user", Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var user User
		if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
			return nil, &CommunicationError{Op: "get user", Err: err}
		}
		return &user, nil
	case http.StatusNotFound:
		return nil, ErrUserNotFound
	default:
		return nil, &CommunicationError{Op: "get user", Err: fmt.Errorf("unexpected status code: %d", resp.StatusCode)}
	}
}
