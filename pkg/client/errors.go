package client

import (
	"errors"
	"fmt"
)

var (
	// ErrNoBaseURL is returned by New when the base URL is empty.
	ErrNoBaseURL = errors.New("client: base URL is required")

	// ErrKeyExchange is returned when the server's public key cannot
	// be fetched or used.
	ErrKeyExchange = errors.New("client: key exchange failed")

	// ErrBadEnvelope is returned when a response body is not a valid
	// envelope.
	ErrBadEnvelope = errors.New("client: malformed response envelope")
)

// APIError is a server-side failure: the response envelope carried
// state "error". Status is the HTTP status code; Fields holds
// field-keyed validation errors when present.
type APIError struct {
	Fields  map[string]string
	Message string
	Status  int
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: %s (status %d)", e.Message, e.Status)
}

// AsAPIError unwraps err into an *APIError, nil when it is not one.
func AsAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}
