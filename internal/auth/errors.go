package auth

import (
	"errors"
	"fmt"
)

// ErrMissingParams is returned when the callback lacks an authorization code
// or the state carried an empty code verifier.
var ErrMissingParams = errors.New("missing code or code_verifier")

// StateError reports a state parameter that could not be decoded or verified.
// No token request is made once a StateError is returned.
type StateError struct {
	Err error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("invalid state parameter: %v", e.Err)
}

func (e *StateError) Unwrap() error {
	return e.Err
}

// ProviderError carries an HTTP error response from the token endpoint.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("token endpoint returned status %d: %s", e.StatusCode, e.Body)
}
