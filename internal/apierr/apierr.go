// Package apierr defines the error taxonomy shared by the translation and
// speech gateways.
//
// Gateways never return bare errors across their boundary: every failure is an
// *Error tagged with a Kind, so that the retry policy and the transports can
// decide what to do without string matching.
package apierr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
)

// Kind classifies a gateway failure.
type Kind string

const (
	// KindMissingInput means the caller supplied no text. Never retried.
	KindMissingInput Kind = "MissingInput"

	// KindInvalidInput means the input failed boundary validation (e.g. too long).
	KindInvalidInput Kind = "InvalidInput"

	// KindUpstream means the external API answered with a non-2xx status.
	KindUpstream Kind = "UpstreamError"

	// KindUpstreamShape means a 2xx envelope lacked the expected content field.
	KindUpstreamShape Kind = "UpstreamShapeError"

	// KindResponseParse means the model output was not valid JSON.
	KindResponseParse Kind = "ResponseParseError"

	// KindResponseValidation means the parsed JSON lacked a required field.
	KindResponseValidation Kind = "ResponseValidationError"

	// KindTransport means the request never produced an HTTP response.
	KindTransport Kind = "TransportError"

	// KindUnavailable means a circuit breaker refused the call.
	KindUnavailable Kind = "Unavailable"
)

// Retryable reports whether a failure of this kind may succeed on a later attempt.
func (k Kind) Retryable() bool {
	switch k {
	case KindUpstream, KindUpstreamShape, KindResponseParse, KindResponseValidation, KindTransport:
		return true
	default:
		return false
	}
}

// Error is a tagged gateway failure.
type Error struct {
	Kind Kind

	// Status is the upstream HTTP status for KindUpstream, zero otherwise.
	Status int

	// Message is safe to show to an end user.
	Message string

	// Raw holds the unparsed upstream content, for diagnostics only.
	Raw string

	// Err is the underlying cause, if any.
	Err error
}

// New returns an *Error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap returns an *Error of the given kind wrapping cause.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

// Upstream returns a KindUpstream error for the given status. An empty message
// is replaced by fallback.
func Upstream(status int, msg, fallback string) *Error {
	if msg == "" {
		msg = fallback
	}
	return &Error{Kind: KindUpstream, Status: status, Message: msg}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus maps the error to the status returned to inbound HTTP callers.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindMissingInput, KindInvalidInput:
		return http.StatusBadRequest
	case KindUpstream:
		if e.Status >= 400 && e.Status <= 599 {
			return e.Status
		}
		return http.StatusInternalServerError
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return ""
}

// IsRetryable reports whether err is a tagged failure of a retryable kind.
// Untagged errors are not retried.
func IsRetryable(err error) bool {
	return KindOf(err).Retryable()
}

// StatusOf returns the HTTP status for err; untagged errors map to 500.
func StatusOf(err error) int {
	if e, ok := As(err); ok {
		return e.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// MessageOf returns the user-facing message for err.
func MessageOf(err error) string {
	if e, ok := As(err); ok && e.Message != "" {
		return e.Message
	}
	if err == nil {
		return ""
	}
	return "Internal Server Error"
}

// IsTransport reports whether err is a network-level failure: the request
// never produced an HTTP response.
func IsTransport(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
