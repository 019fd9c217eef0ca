// Package apierror defines the errors returned by the storefront client and
// how they are classified.
package apierror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is a classified storefront error.
type Error struct {
	Kind Kind
	// StatusCode is the HTTP status of the response that caused the error, if any.
	StatusCode int
	// Message is the server supplied message or a detail about the failure.
	Message string
	// RequestID identifies the request that failed, if known.
	RequestID string
	Err       error
}

// Error implements error.
func (e *Error) Error() string {
	var b strings.Builder
	if e.RequestID != "" {
		fmt.Fprintf(&b, "[x-request-id:%s]: ", e.RequestID)
	}
	switch e.Kind {
	case KindServerError:
		if e.StatusCode != 0 {
			fmt.Fprintf(&b, "server error (code: %d)", e.StatusCode)
		} else {
			b.WriteString("server error")
		}
		if e.Message != "" {
			fmt.Fprintf(&b, ": %s", e.Message)
		}
	case KindRegistrationError:
		if e.Message != "" {
			b.WriteString(e.Message)
		} else {
			b.WriteString(descriptions[e.Kind])
		}
	case KindUnknown:
		b.WriteString("unknown error")
		if e.Message != "" {
			fmt.Fprintf(&b, ": %s", e.Message)
		}
	default:
		b.WriteString(descriptions[e.Kind])
		if e.Message != "" {
			fmt.Fprintf(&b, ": %s", e.Message)
		}
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap implements errors.Unwrap.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind. Sentinels match
// any error of their kind regardless of status code or message. A refresh
// that is not implemented is also a session expiry.
func (e *Error) Is(target error) bool {
	//nolint:errorlint
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind == KindSessionExpired && e.Kind == KindRefreshNotImplemented {
		return true
	}
	return t.Kind == e.Kind
}

// Sentinels for use with errors.Is.
var (
	ErrUnknown               = &Error{Kind: KindUnknown}
	ErrInvalidCredentials    = &Error{Kind: KindInvalidCredentials}
	ErrNetwork               = &Error{Kind: KindNetworkError}
	ErrServer                = &Error{Kind: KindServerError}
	ErrTokenExpired          = &Error{Kind: KindTokenExpired}
	ErrInvalidToken          = &Error{Kind: KindInvalidToken}
	ErrUserNotFound          = &Error{Kind: KindUserNotFound}
	ErrEmailAlreadyExists    = &Error{Kind: KindEmailAlreadyExists}
	ErrWeakPassword          = &Error{Kind: KindWeakPassword}
	ErrAccountLocked         = &Error{Kind: KindAccountLocked}
	ErrTooManyAttempts       = &Error{Kind: KindTooManyAttempts}
	ErrInvalidEmail          = &Error{Kind: KindInvalidEmail}
	ErrUserNotActivated      = &Error{Kind: KindUserNotActivated}
	ErrSessionExpired        = &Error{Kind: KindSessionExpired}
	ErrRegistration          = &Error{Kind: KindRegistrationError}
	ErrInvalidRequest        = &Error{Kind: KindInvalidRequest}
	ErrDecoding              = &Error{Kind: KindDecodingError}
	ErrInvalidURL            = &Error{Kind: KindInvalidURL}
	ErrNoInternet            = &Error{Kind: KindNoInternet}
	ErrRefreshNotImplemented = &Error{Kind: KindRefreshNotImplemented}
)

// New returns an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap returns an error of the given kind caused by err.
func Wrap(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// Server returns a server error for the given status code.
func Server(statusCode int, message string) *Error {
	return &Error{Kind: KindServerError, StatusCode: statusCode, Message: message}
}

// Registration returns a registration error carrying the server message.
func Registration(message string) *Error {
	return &Error{Kind: KindRegistrationError, StatusCode: http.StatusUnprocessableEntity, Message: message}
}

// Unknown returns an unknown error with the given detail.
func Unknown(detail string, err error) *Error {
	return &Error{Kind: KindUnknown, Message: detail, Err: err}
}

// FromStatus maps an HTTP status code returned by the authentication
// endpoints to an error. Unmapped codes become server errors.
func FromStatus(statusCode int, message string) *Error {
	var kind Kind
	switch statusCode {
	case http.StatusUnauthorized:
		kind = KindInvalidCredentials
	case http.StatusForbidden:
		kind = KindUserNotActivated
	case http.StatusNotFound:
		kind = KindUserNotFound
	case http.StatusConflict:
		kind = KindEmailAlreadyExists
	case http.StatusLocked:
		kind = KindAccountLocked
	case http.StatusTooManyRequests:
		kind = KindTooManyAttempts
	default:
		kind = KindServerError
	}
	return &Error{Kind: kind, StatusCode: statusCode, Message: message}
}

// KindOf returns the kind of err. Errors that are not an *Error are unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// StatusCode returns the HTTP status code carried by err, or 0.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}

// IsRetryable reports whether the operation that returned err may succeed if
// tried again. A cancelled caller is never retryable, and neither is an
// expired caller deadline unless it ended a single network attempt.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) && KindOf(err) != KindNetworkError {
		return false
	}
	switch KindOf(err) {
	case KindNetworkError, KindServerError, KindUnknown, KindNoInternet:
		return true
	}
	return false
}

// RequiresReauthentication reports whether the user has to login again to
// recover from err.
func RequiresReauthentication(err error) bool {
	if err == nil {
		return false
	}
	switch KindOf(err) {
	case KindTokenExpired, KindInvalidToken, KindSessionExpired, KindRefreshNotImplemented:
		return true
	}
	return false
}

// Suggestion returns a recovery suggestion for err suitable for display.
func Suggestion(err error) string {
	if err == nil {
		return ""
	}
	if s, ok := suggestions[KindOf(err)]; ok {
		return s
	}
	return ""
}
