package domain

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")

// AuthError: token endpoint unreachable or its response undecodable.
type AuthError struct{ Err error }

func (e *AuthError) Error() string { return fmt.Sprintf("auth: %v", e.Err) }
func (e *AuthError) Unwrap() error { return e.Err }

// NetworkError: transport-level failure talking to the upstream.
type NetworkError struct{ Err error }

func (e *NetworkError) Error() string { return fmt.Sprintf("network: %v", e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// UpstreamError: non-2xx from the hotel search endpoint.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.Status, e.Body)
}

// DecodeError: response shape mismatch. Raw carries the payload verbatim so
// upstream contract drift is diagnosable from logs alone.
type DecodeError struct {
	Err error
	Raw []byte
}

func (e *DecodeError) Error() string { return fmt.Sprintf("decode: %v", e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }
