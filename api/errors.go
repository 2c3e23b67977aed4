package api

import "fmt"

// Kind classifies a client failure so callers can react without string
// matching.
type Kind int

const (
	// KindTransport is a network-level failure: the request never got a
	// response (DNS, connection refused, context cancelled, ...).
	KindTransport Kind = iota + 1
	// KindAPI is a non-2xx response from the backend.
	KindAPI
	// KindDecode is a 2xx response whose body could not be decoded.
	KindDecode
	// KindPrecondition is a failure detected locally before any network
	// I/O, such as a missing user id or an out-of-range weight.
	KindPrecondition
)

// Error is the single error type produced by the Client. The message is
// what screens show to the user: the server-supplied detail when one was
// parseable, otherwise a generic fallback.
type Error struct {
	Kind       Kind
	StatusCode int    // set for KindAPI
	Detail     string // server-supplied or precondition message
	Err        error  // underlying cause, if any
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("Request failed with status %d", e.StatusCode)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "request failed"
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Precondition failures, matchable with errors.Is. The messages are part
// of the UI contract and must not change.
var (
	ErrNoUserID = &Error{
		Kind:   KindPrecondition,
		Detail: "No user ID available",
	}
	ErrInvalidWeight = &Error{
		Kind:   KindPrecondition,
		Detail: "Please enter a valid weight between 0 and 1000 kg",
	}
)
