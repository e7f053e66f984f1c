package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// DefaultStateMarker is the fixed value placed in the state blob when state
// binding is disabled.
const DefaultStateMarker = "RandomStateString"

// StateBlob is the payload round-tripped through the provider in the OAuth
// state parameter. It is the only place the code verifier lives between the
// login redirect and the callback.
type StateBlob struct {
	State        string `json:"state"`
	CodeVerifier string `json:"code_verifier"`
}

// EncodeState returns the URL-safe base64 encoding of the JSON state blob.
func EncodeState(marker, verifier string) (string, error) {
	data, err := json.Marshal(StateBlob{State: marker, CodeVerifier: verifier})
	if err != nil {
		return "", fmt.Errorf("failed to marshal state: %w", err)
	}
	return base64.URLEncoding.EncodeToString(data), nil
}

// DecodeState parses a state parameter produced by EncodeState. Padding is
// optional. A blob without a code_verifier field is rejected; an empty
// code_verifier is returned as is and left to the caller.
func DecodeState(raw string) (*StateBlob, error) {
	if raw == "" {
		return nil, &StateError{Err: errors.New("state is empty")}
	}

	data, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(raw, "="))
	if err != nil {
		return nil, &StateError{Err: err}
	}

	var decoded struct {
		State        string  `json:"state"`
		CodeVerifier *string `json:"code_verifier"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, &StateError{Err: err}
	}
	if decoded.CodeVerifier == nil {
		return nil, &StateError{Err: errors.New("code_verifier field is missing")}
	}

	return &StateBlob{State: decoded.State, CodeVerifier: *decoded.CodeVerifier}, nil
}
