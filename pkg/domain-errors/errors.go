// Package errors provides coded domain errors for the issuer gateway.
//
// Services return these so callers can branch on the error kind without
// inspecting control flow: stores return sentinel errors (pkg/platform/sentinel)
// for infrastructure facts, services translate them into coded domain errors,
// and the transport layer maps codes to HTTP statuses.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error.
type Code string

const (
	// CodeValidation marks a malformed payload or a cross-field mismatch
	// (e.g. embedded issuer DID differing from the resolved issuer).
	// Guaranteed to be raised before any external call or store mutation.
	CodeValidation Code = "validation"

	// CodeBadRequest marks a structurally unusable request.
	CodeBadRequest Code = "bad_request"

	// CodeNotFound marks a missing entity. For user lookups inside the
	// issuance workflow this is a protocol violation, not a user error.
	CodeNotFound Code = "not_found"

	// CodeVerification marks a failed signature or proof check. The message
	// carries the verification provider's explanation verbatim.
	CodeVerification Code = "verification_failed"

	// CodeUpstream marks a failed external provider or store call. Never
	// retried automatically inside this service.
	CodeUpstream Code = "upstream"

	// CodeConflict marks a uniqueness or state conflict.
	CodeConflict Code = "conflict"

	// CodeUnauthorized marks a missing or invalid inbound credential.
	CodeUnauthorized Code = "unauthorized"

	// CodeTimeout marks a bounded external call that did not complete.
	CodeTimeout Code = "timeout"

	// CodeInternal marks everything else.
	CodeInternal Code = "internal"
)

// Error is a domain error with a classification code. It wraps an optional
// cause so errors.Is/As keep working through service layers.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error with no cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error. A nil err yields nil.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.cause
	}
	return false
}

// CodeOf returns the outermost code of err, or CodeInternal if err carries none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// Is delegates to the standard library for sentinel comparisons.
func Is(err, target error) bool { return errors.Is(err, target) }

// ToHTTPStatus maps a code to the HTTP status the transport layer should write.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeValidation, CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized, CodeVerification:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
