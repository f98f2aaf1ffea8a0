// Package errors provides the error taxonomy shared by the quote core and the HTTP layer.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
)

// Type identifies the category of error
type Type string

const (
	// TypeMissingParameters indicates the caller omitted required lookup fields
	TypeMissingParameters Type = "MISSING_PARAMETERS"

	// TypeInvalidWeight indicates the weight is not a positive finite number
	TypeInvalidWeight Type = "INVALID_WEIGHT"

	// TypeMissingCredential indicates an absent or malformed Authorization header
	TypeMissingCredential Type = "MISSING_CREDENTIAL"

	// TypeInvalidCredential indicates an API key that matches no principal
	TypeInvalidCredential Type = "INVALID_CREDENTIAL"

	// TypeNoPricingRule indicates no rate exists for the requested route
	TypeNoPricingRule Type = "NO_PRICING_RULE"

	// TypeInternal indicates an unexpected failure in the read path
	TypeInternal Type = "INTERNAL_ERROR"

	// TypeInvalidInput indicates a malformed request body or field
	TypeInvalidInput Type = "INVALID_INPUT"

	// TypeUnauthorized indicates a missing or rejected session token
	TypeUnauthorized Type = "UNAUTHORIZED"

	// TypeForbidden indicates the principal lacks the required role
	TypeForbidden Type = "FORBIDDEN"

	// TypeNotFound indicates a resource not found error
	TypeNotFound Type = "NOT_FOUND"

	// TypeConflict indicates a state transition that is not allowed
	TypeConflict Type = "CONFLICT"
)

// Error represents a domain error with context
type Error struct {
	Type    Type                   `json:"type"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// HasType checks if the error is of a specific type
func (e *Error) HasType(t Type) bool {
	return e.Type == t
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// HTTPStatus returns the status code the error maps to
func (e *Error) HTTPStatus() int {
	return HTTPStatus(e.Type)
}

// New creates a new error
func New(errType Type, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// Newf creates a new formatted error
func Newf(errType Type, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with context
func Wrap(errType Type, message string, cause error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// As extracts the first *Error in err's chain
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsType checks if an error (or anything it wraps) is of a specific type
func IsType(err error, t Type) bool {
	if e, ok := As(err); ok {
		return e.Type == t
	}
	return false
}

// TypeOf returns the error type, or TypeInternal for foreign errors
func TypeOf(err error) Type {
	if e, ok := As(err); ok {
		return e.Type
	}
	return TypeInternal
}

// HTTPStatus maps an error type to exactly one HTTP status
func HTTPStatus(t Type) int {
	switch t {
	case TypeMissingParameters, TypeInvalidWeight, TypeInvalidInput:
		return http.StatusBadRequest
	case TypeMissingCredential, TypeInvalidCredential, TypeUnauthorized:
		return http.StatusUnauthorized
	case TypeForbidden:
		return http.StatusForbidden
	case TypeNoPricingRule, TypeNotFound:
		return http.StatusNotFound
	case TypeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// MissingParameters creates a missing-parameters error naming the absent fields
func MissingParameters(fields ...string) *Error {
	return Newf(TypeMissingParameters, "missing required parameters: %s", strings.Join(fields, ", ")).
		WithContext("missing", fields)
}

// InvalidWeight creates an invalid weight error
func InvalidWeight(raw string) *Error {
	return Newf(TypeInvalidWeight, "weight must be a positive number, got %q", raw)
}

// MissingCredential creates a missing credential error
func MissingCredential() *Error {
	return New(TypeMissingCredential, "missing or malformed bearer credential")
}

// InvalidCredential creates an invalid credential error
func InvalidCredential() *Error {
	return New(TypeInvalidCredential, "credential does not match any principal")
}

// NoPricingRule creates a no-pricing-rule error carrying the lookup keys
func NoPricingRule(from, to, packageType string) *Error {
	return Newf(TypeNoPricingRule,
		"No pricing configuration found for route %s to %s with package type %s. Please contact support to set up pricing for this route.",
		from, to, packageType).
		WithContext("from", from).
		WithContext("to", to).
		WithContext("package_type", packageType)
}

// Internal creates an internal error
func Internal(message string, cause error) *Error {
	return Wrap(TypeInternal, message, cause)
}

// InvalidInput creates an input validation error
func InvalidInput(message string) *Error {
	return New(TypeInvalidInput, message)
}

// Unauthorized creates a session authentication error
func Unauthorized(message string) *Error {
	return New(TypeUnauthorized, message)
}

// Forbidden creates a role check error
func Forbidden(message string) *Error {
	return New(TypeForbidden, message)
}

// NotFound creates a not found error
func NotFound(resourceType, identifier string) *Error {
	return Newf(TypeNotFound, "%s not found: %s", resourceType, identifier)
}

// Conflict creates a state conflict error
func Conflict(message string) *Error {
	return New(TypeConflict, message)
}
