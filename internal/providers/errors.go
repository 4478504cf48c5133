package providers

import (
	"errors"
	"fmt"
)

// AuthError is returned when the provider rejects the credential.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication error (status %d): %s", e.StatusCode, e.Message)
}

// APIError is returned for any other non-success HTTP status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}

// IsAuthError checks if an error is an authentication error.
func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

func statusError(code int, body []byte) error {
	if code == 401 || code == 403 {
		return &AuthError{StatusCode: code, Message: string(body)}
	}
	return &APIError{StatusCode: code, Body: string(body)}
}
