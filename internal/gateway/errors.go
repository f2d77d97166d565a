package gateway

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAuthenticated is returned by authenticated calls when no valid
	// token is stored. No network I/O happens.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrAuthExpired is returned when the server rejects the token (401).
	ErrAuthExpired = errors.New("authentication expired, please log in again")

	// ErrMalformedResponse marks a response body that is not the expected
	// envelope.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrVerificationRequired is returned by Login when the account exists
	// but its email address is not verified yet.
	ErrVerificationRequired = errors.New("email verification required")
)

// Reasons carried by NetworkError.
const (
	ReasonTimeout   = "timeout"
	ReasonTransport = "transport"
)

// NetworkError indicates that no HTTP response was received.
type NetworkError struct {
	Reason  string // ReasonTimeout or ReasonTransport
	Message string
	Err     error
}

func (e *NetworkError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("network %s: %v", e.Reason, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Timeout reports whether the failure was a request timeout.
func (e *NetworkError) Timeout() bool { return e.Reason == ReasonTimeout }

// ServerError is a response the server returned but that did not succeed.
type ServerError struct {
	Status  int
	Message string
	Err     error
}

func (e *ServerError) Error() string {
	switch {
	case e.Status >= 500:
		return fmt.Sprintf("server error (%d): %s", e.Status, e.Message)
	case e.Message != "":
		return e.Message
	default:
		return fmt.Sprintf("request failed (%d)", e.Status)
	}
}

func (e *ServerError) Unwrap() error { return e.Err }

// IsNetwork reports whether err is a NetworkError.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsServer reports whether err is a ServerError with a 5xx status.
func IsServer(err error) bool {
	var se *ServerError
	return errors.As(err, &se) && se.Status >= 500
}
