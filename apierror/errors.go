package apierror

import (
	"errors"
	"fmt"
)

// Kind classifies an SDK failure.
type Kind string

const (
	KindConfiguration     Kind = "configuration_error"
	KindInvalidRequest    Kind = "invalid_request_error"
	KindAuthentication    Kind = "authentication_error"
	KindAPI               Kind = "api_error"
	KindNetwork           Kind = "network_error"
	KindMalformedPayload  Kind = "malformed_payload_error"
	KindSignatureMismatch Kind = "signature_mismatch_error"
)

// Error is the single error type returned by the SDK.
//
// StatusCode is set only for errors derived from an HTTP response.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports kind equality, so errors.Is(err, ErrInvalidRequest) matches
// every invalid request error regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Configuration Errors
//
// Raised while resolving client settings, before any request is made.

// ErrConfiguration matches missing or invalid client settings.
var ErrConfiguration = &Error{Kind: KindConfiguration, Message: "configuration error"}

// Request Errors
//
// ErrInvalidRequest covers both client-side validation failures and
// 400/404/422 responses from the API.

// ErrInvalidRequest matches rejected parameters.
var ErrInvalidRequest = &Error{Kind: KindInvalidRequest, Message: "invalid request"}

// ErrAuthentication matches a 401 response.
var ErrAuthentication = &Error{Kind: KindAuthentication, Message: "authentication failed"}

// ErrAPI matches server failures, unexpected statuses and unusable bodies.
var ErrAPI = &Error{Kind: KindAPI, Message: "api error"}

// ErrNetwork matches failures where no HTTP response was received.
var ErrNetwork = &Error{Kind: KindNetwork, Message: "network error"}

// Webhook Errors

// ErrMalformedPayload matches a webhook body that is not a JSON object.
var ErrMalformedPayload = &Error{Kind: KindMalformedPayload, Message: "malformed payload"}

// ErrSignatureMismatch matches a webhook whose signature did not verify.
var ErrSignatureMismatch = &Error{Kind: KindSignatureMismatch, Message: "signature mismatch"}

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Configuration(format string, args ...any) *Error {
	return newError(KindConfiguration, fmt.Sprintf(format, args...))
}

func InvalidRequest(msg string) *Error {
	return newError(KindInvalidRequest, msg)
}

func Authentication(msg string) *Error {
	return newError(KindAuthentication, msg)
}

func API(msg string) *Error {
	return newError(KindAPI, msg)
}

func MalformedPayload(msg string) *Error {
	return newError(KindMalformedPayload, msg)
}

func SignatureMismatch(msg string) *Error {
	return newError(KindSignatureMismatch, msg)
}

// Network wraps the transport-level cause.
func Network(msg string, cause error) *Error {
	return &Error{Kind: KindNetwork, Message: msg, Err: cause}
}

// WithStatus attaches the HTTP status code that produced the error.
func (e *Error) WithStatus(code int) *Error {
	e.StatusCode = code
	return e
}

// KindOf returns the kind of err, or "" when err is not an SDK error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// StatusCode returns the HTTP status attached to err, or 0.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}
