package park

import (
	"errors"
	"fmt"
)

// Kind classifies failures so callers can decide on retries and status codes.
type Kind string

const (
	KindConfiguration     Kind = "configuration"
	KindNotFound          Kind = "not_found"
	KindClientRequest     Kind = "client_request"
	KindTransientUpstream Kind = "transient_upstream"
	KindMalformedResponse Kind = "malformed_response"
	KindInvalidInput      Kind = "invalid_input"
)

// Sentinels usable with errors.Is; every *Error matches the sentinel of its kind.
var (
	ErrConfiguration     = errors.New("configuration error")
	ErrNotFound          = errors.New("not found")
	ErrClientRequest     = errors.New("upstream rejected request")
	ErrTransientUpstream = errors.New("upstream unavailable")
	ErrMalformedResponse = errors.New("malformed upstream response")
	ErrInvalidInput      = errors.New("invalid input")
)

var kindSentinels = map[Kind]error{
	KindConfiguration:     ErrConfiguration,
	KindNotFound:          ErrNotFound,
	KindClientRequest:     ErrClientRequest,
	KindTransientUpstream: ErrTransientUpstream,
	KindMalformedResponse: ErrMalformedResponse,
	KindInvalidInput:      ErrInvalidInput,
}

// Error is the single error type produced by the pipeline.
// Status, Reason and Body are only set for upstream HTTP failures.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	URL     string
	Status  int
	Reason  string
	Body    string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Status != 0 {
		msg = fmt.Sprintf("HTTP error %d: %s. Response: %s", e.Status, e.Reason, e.Body)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		if msg == "" {
			return e.Err.Error()
		}
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrNotFound) and friends match by kind.
func (e *Error) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

// Retryable reports whether the fetcher may retry after this error.
func (e *Error) Retryable() bool {
	return e.Kind == KindTransientUpstream
}

// NewError builds an *Error without an HTTP status.
func NewError(kind Kind, op, message string, err error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
