// Package errors defines structured error types for the oral risk screening service.
// Every AppError carries a machine readable code and the HTTP status it maps to.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Code is a machine readable error code
type Code string

const (
	CodeInvalidRequest     Code = "invalid_request"
	CodeInvalidCredentials Code = "invalid_credentials"
	CodeUnauthorized       Code = "unauthorized"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeStorage            Code = "storage_error"
	CodeModel              Code = "model_error"
	CodeServerError        Code = "server_error"
	CodeUnavailable        Code = "service_unavailable"
	CodeRateLimited        Code = "rate_limited"
)

// ================================================================================
// Base Error Interface
// ================================================================================

// AppError represents a structured error with additional metadata
type AppError interface {
	error

	// Code returns the machine readable error code
	Code() Code

	// HTTPStatus returns the HTTP status code
	HTTPStatus() int

	// Description returns a human-readable description
	Description() string

	// Unwrap returns the underlying error for error chain support
	Unwrap() error

	// WithCause returns a copy of the error wrapping cause
	WithCause(cause error) AppError

	// WithMessage returns a copy of the error with a specific message
	WithMessage(message string) AppError

	// WithMetadata returns a copy of the error with an extra metadata entry
	WithMetadata(key string, value interface{}) AppError

	// Metadata returns all metadata
	Metadata() map[string]interface{}
}

// baseError is the internal implementation of AppError
type baseError struct {
	code        Code
	httpStatus  int
	description string
	message     string
	cause       error
	metadata    map[string]interface{}
}

// Error implements the error interface
func (e *baseError) Error() string {
	msg := e.message
	if msg == "" {
		msg = e.description
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

func (e *baseError) Code() Code          { return e.code }
func (e *baseError) HTTPStatus() int     { return e.httpStatus }
func (e *baseError) Description() string { return e.description }
func (e *baseError) Unwrap() error       { return e.cause }

// Is matches any AppError carrying the same code, so sentinel comparisons
// keep working after WithCause or WithMessage.
func (e *baseError) Is(target error) bool {
	t, ok := target.(*baseError)
	if !ok {
		return false
	}
	return t.code == e.code && t.description == e.description
}

func (e *baseError) clone() *baseError {
	md := make(map[string]interface{}, len(e.metadata))
	for k, v := range e.metadata {
		md[k] = v
	}
	c := *e
	c.metadata = md
	return &c
}

// WithCause adds a cause error to the error chain
func (e *baseError) WithCause(cause error) AppError {
	c := e.clone()
	c.cause = cause
	return c
}

// WithMessage replaces the message shown to callers
func (e *baseError) WithMessage(message string) AppError {
	c := e.clone()
	c.message = message
	return c
}

// WithMetadata adds additional context metadata
func (e *baseError) WithMetadata(key string, value interface{}) AppError {
	c := e.clone()
	c.metadata[key] = value
	return c
}

// Metadata returns all metadata
func (e *baseError) Metadata() map[string]interface{} {
	return e.metadata
}

// NewError creates a new AppError with the specified parameters
func NewError(code Code, httpStatus int, description string, message string) AppError {
	return &baseError{
		code:        code,
		httpStatus:  httpStatus,
		description: description,
		message:     message,
		metadata:    make(map[string]interface{}),
	}
}

// ================================================================================
// Sentinel Errors
// ================================================================================

var (
	// ErrInvalidRequest marks malformed input, such as a non-numeric age
	ErrInvalidRequest = NewError(CodeInvalidRequest, http.StatusBadRequest,
		"The request is missing a required parameter or includes an invalid parameter value.", "")

	// ErrInvalidCredentials is returned for unknown identifiers and wrong passwords alike
	ErrInvalidCredentials = NewError(CodeInvalidCredentials, http.StatusUnauthorized,
		"Invalid credentials", "Invalid credentials")

	// ErrUnauthorized marks a missing or expired session or bearer token
	ErrUnauthorized = NewError(CodeUnauthorized, http.StatusUnauthorized,
		"Authentication is required to access this resource.", "")

	// ErrAccountNotFound is returned by lookups that match no account
	ErrAccountNotFound = NewError(CodeNotFound, http.StatusNotFound,
		"Account not found", "")

	// ErrAccountExists is returned when a registration collides with an existing identifier
	ErrAccountExists = NewError(CodeConflict, http.StatusConflict,
		"Account already exists", "Account already exists")

	// ErrSessionNotFound is returned when a session id is unknown or expired
	ErrSessionNotFound = NewError(CodeUnauthorized, http.StatusUnauthorized,
		"Session not found or expired", "")

	// ErrStorage wraps failures of the account or prediction stores
	ErrStorage = NewError(CodeStorage, http.StatusInternalServerError,
		"Storage operation failed", "")

	// ErrUnknownSchema is returned for prediction log headers that match no known version
	ErrUnknownSchema = NewError(CodeStorage, http.StatusInternalServerError,
		"Unrecognized prediction log header", "")

	// ErrModel wraps classifier loading and inference failures
	ErrModel = NewError(CodeModel, http.StatusInternalServerError,
		"Classifier failure", "")

	// ErrInternalServer is the catch-all for unexpected conditions
	ErrInternalServer = NewError(CodeServerError, http.StatusInternalServerError,
		"The server encountered an unexpected condition.", "")

	// ErrRateLimited is returned when a client exceeds the credential endpoint budget
	ErrRateLimited = NewError(CodeRateLimited, http.StatusTooManyRequests,
		"Too many attempts, try again later.", "Too many attempts, try again later.")

	// ErrUnavailable marks a dependency that is not ready
	ErrUnavailable = NewError(CodeUnavailable, http.StatusServiceUnavailable,
		"The service is temporarily unavailable.", "")
)

// ================================================================================
// Constructors
// ================================================================================

// ErrInvalidField creates an invalid_request error naming the offending field
func ErrInvalidField(field, reason string) AppError {
	return ErrInvalidRequest.
		WithMessage(fmt.Sprintf("invalid %s: %s", field, reason)).
		WithMetadata("field", field)
}

// ErrMissingField creates an invalid_request error for a required field
func ErrMissingField(field string) AppError {
	return ErrInvalidRequest.
		WithMessage(fmt.Sprintf("missing required field: %s", field)).
		WithMetadata("field", field)
}

// Storage wraps a backend failure with the operation that failed
func Storage(op string, cause error) AppError {
	return ErrStorage.WithMessage(op+" failed").WithCause(cause).WithMetadata("operation", op)
}

// ================================================================================
// Utilities
// ================================================================================

// AsAppError finds the first AppError in err's chain
func AsAppError(err error) (AppError, bool) {
	var appErr AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HTTPStatus maps any error onto an HTTP status, defaulting to 500
func HTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// New is a shorthand for the standard library constructor
func New(text string) error {
	return stderrors.New(text)
}

// ErrorResponse represents the JSON structure for error responses
type ErrorResponse struct {
	Error            string                 `json:"error"`
	ErrorDescription string                 `json:"error_description"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

// ToErrorResponse converts any error to an ErrorResponse, hiding unexpected internals
func ToErrorResponse(err error) *ErrorResponse {
	appErr, ok := AsAppError(err)
	if !ok {
		return &ErrorResponse{
			Error:            string(CodeServerError),
			ErrorDescription: "An unexpected error occurred",
		}
	}
	desc := appErr.Description()
	if appErr.HTTPStatus() < http.StatusInternalServerError {
		if be, ok := appErr.(*baseError); ok && be.message != "" {
			desc = be.message
		}
	}
	md := appErr.Metadata()
	if len(md) == 0 {
		md = nil
	}
	return &ErrorResponse{
		Error:            string(appErr.Code()),
		ErrorDescription: desc,
		Metadata:         md,
	}
}
