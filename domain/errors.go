package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeValidation   ErrorCode = "VALIDATION"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeRateLimited  ErrorCode = "RATE_LIMITED"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// FieldViolation names a single invalid request field.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error represents a domain-level error. Violations is populated only for
// validation failures and feeds the errors[] array of the failure envelope.
type Error struct {
	Code       ErrorCode
	Message    string
	Violations []FieldViolation
	Err        error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewValidationError builds a validation error carrying per-field messages.
func NewValidationError(message string, violations []FieldViolation) *Error {
	return &Error{
		Code:       ErrCodeValidation,
		Message:    message,
		Violations: violations,
	}
}

// Common domain errors.
var (
	ErrUserNotFound       = NewError(ErrCodeNotFound, "user does not exist")
	ErrTaskNotFound       = NewError(ErrCodeNotFound, "task not found")
	ErrInvalidTaskID      = NewError(ErrCodeInvalid, "invalid task id")
	ErrUserExists         = NewError(ErrCodeConflict, "user with email or username already exists")
	ErrInvalidCredentials = NewError(ErrCodeUnauthorized, "invalid credentials")
	ErrInvalidToken       = NewError(ErrCodeUnauthorized, "invalid or expired token")
	ErrUnauthorized       = NewError(ErrCodeUnauthorized, "unauthorized request")
	ErrInvalidPayload     = NewError(ErrCodeInvalid, "invalid payload")
	ErrTooManyRequests    = NewError(ErrCodeRateLimited, "too many requests")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// AsDomainError extracts the domain error, if any.
func AsDomainError(err error) (*Error, bool) {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr, true
	}
	return nil, false
}
