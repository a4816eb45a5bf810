package errors

import (
	"errors"
	"net/http"
)

// Error kinds. Every *Error wraps exactly one of these so callers can branch
// with errors.Is without parsing messages.
var (
	// ErrValidation is returned for malformed caller input.
	ErrValidation = errors.New("validation failed")
	// ErrConflict is returned when a uniqueness rule would be violated.
	ErrConflict = errors.New("conflict")
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the caller may not act on a resource.
	ErrForbidden = errors.New("forbidden")
	// ErrStorage is returned when the underlying store fails.
	ErrStorage = errors.New("storage failure")
	// ErrEntropy is returned when the system random source fails.
	ErrEntropy = errors.New("entropy source failure")
	// ErrUpstream is returned when the media service fails.
	ErrUpstream = errors.New("upstream failure")
)

// ErrInvalidCredentials is the single login failure value. Unknown usernames
// and wrong passwords both return it unchanged.
var ErrInvalidCredentials = &Error{Kind: errInvalidCredentialsKind, Message: "Invalid credentials"}

var errInvalidCredentialsKind = errors.New("invalid credentials")

// Error is a domain error: a kind, a message safe to show to end users and
// an optional cause that is only meant for logs.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Validation builds a validation error with a user-facing message.
func Validation(message string) *Error {
	return &Error{Kind: ErrValidation, Message: message}
}

// Conflict builds a conflict error with a user-facing message.
func Conflict(message string) *Error {
	return &Error{Kind: ErrConflict, Message: message}
}

// NotFound builds a not-found error with a user-facing message.
func NotFound(message string) *Error {
	return &Error{Kind: ErrNotFound, Message: message}
}

// Forbidden builds a forbidden error with a user-facing message.
func Forbidden(message string) *Error {
	return &Error{Kind: ErrForbidden, Message: message}
}

// Storage wraps a persistence failure. The cause never reaches the message.
func Storage(err error) *Error {
	return &Error{Kind: ErrStorage, Message: "internal server error", Err: err}
}

// Entropy wraps a random source failure.
func Entropy(err error) *Error {
	return &Error{Kind: ErrEntropy, Message: "internal server error", Err: err}
}

// Upstream wraps a media service failure.
func Upstream(message string, err error) *Error {
	return &Error{Kind: ErrUpstream, Message: message, Err: err}
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Anything that is not a
// domain error is reported as an opaque 500.
func MapErrorToHTTP(err error) *HTTPError {
	var domainErr *Error
	if !errors.As(err, &domainErr) {
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}

	switch domainErr.Kind {
	case ErrValidation:
		return NewHTTPError(http.StatusBadRequest, domainErr.Message, "VALIDATION_ERROR")
	case ErrConflict:
		return NewHTTPError(http.StatusConflict, domainErr.Message, "CONFLICT")
	case errInvalidCredentialsKind:
		return NewHTTPError(http.StatusUnauthorized, domainErr.Message, "INVALID_CREDENTIALS")
	case ErrNotFound:
		return NewHTTPError(http.StatusNotFound, domainErr.Message, "NOT_FOUND")
	case ErrForbidden:
		return NewHTTPError(http.StatusForbidden, domainErr.Message, "FORBIDDEN")
	case ErrUpstream:
		return NewHTTPError(http.StatusBadGateway, domainErr.Message, "UPSTREAM_ERROR")
	case ErrStorage:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "STORAGE_ERROR")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
