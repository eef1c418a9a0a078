package client

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when a request is rejected again after a
	// successful token refresh.
	ErrUnauthorized = errors.New("client: unauthorized")
	// ErrSessionEnded means the stored credentials were cleared and the user
	// has to log in again.
	ErrSessionEnded = errors.New("client: session ended")
	// ErrOffline wraps transport failures: the API could not be reached.
	ErrOffline = errors.New("client: api unreachable")
	// ErrNotLoggedIn is returned by calls that need a stored session.
	ErrNotLoggedIn = errors.New("client: not logged in")
)

// APIError is a non-2xx response decoded from the API error envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error %s (%d): %s", e.Code, e.Status, e.Message)
}
