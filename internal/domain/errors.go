package domain

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Error codes for business logic errors.
const (
	CodeNotFound           = 1
	CodeAlreadyExists      = 2
	CodeValidation         = 3
	CodeInternal           = 4
	CodeVersionConflict    = 5
	CodeAlreadyDeleted     = 6
	CodeNotDeleted         = 7
	CodeForbidden          = 8
	CodeUnauthorized       = 9
	CodeStorageUnavailable = 10
	CodeInvalidTransition  = 11
)

// AppError represents a business logic error with a code, message, and optional wrapped error.
// Fields carries per-field details for validation failures.
type AppError struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Err     error             `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the wrapped error for use with errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined business errors.
//
// To check whether an error matches one of these categories, use the
// corresponding helper function (IsNotFound, IsVersionConflict, etc.)
// instead of errors.Is. The helpers compare codes, so they match freshly
// constructed instances and wrapped errors as well as these sentinels.
var (
	ErrNotFound           = &AppError{Code: CodeNotFound, Message: "not found"}
	ErrAlreadyExists      = &AppError{Code: CodeAlreadyExists, Message: "already exists"}
	ErrValidation         = &AppError{Code: CodeValidation, Message: "validation error"}
	ErrInternal           = &AppError{Code: CodeInternal, Message: "internal error"}
	ErrAlreadyDeleted     = &AppError{Code: CodeAlreadyDeleted, Message: "record is already deleted"}
	ErrNotDeleted         = &AppError{Code: CodeNotDeleted, Message: "record is not deleted"}
	ErrForbidden          = &AppError{Code: CodeForbidden, Message: "forbidden"}
	ErrUnauthorized       = &AppError{Code: CodeUnauthorized, Message: "unauthorized"}
	ErrStorageUnavailable = &AppError{Code: CodeStorageUnavailable, Message: "storage unavailable"}
	ErrInvalidTransition  = &AppError{Code: CodeInvalidTransition, Message: "invalid state transition"}
)

// NewAppError creates a new AppError with the given code, message, and wrapped error.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewValidationError creates a validation AppError carrying field-level messages.
func NewValidationError(message string, fields map[string]string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
		Fields:  fields,
	}
}

// ConflictError reports an optimistic-concurrency collision. It carries the
// stored version so the caller can reload and retry.
type ConflictError struct {
	Kind            string
	ExpectedVersion int64
	CurrentVersion  int64
	UpdatedAt       time.Time
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("version conflict on %s: expected %d, current %d", e.Kind, e.ExpectedVersion, e.CurrentVersion)
}

// AsConflict extracts a *ConflictError from err.
func AsConflict(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// IsVersionConflict reports whether err is or wraps a *ConflictError or an
// AppError with CodeVersionConflict.
func IsVersionConflict(err error) bool {
	if _, ok := AsConflict(err); ok {
		return true
	}
	return hasCode(err, CodeVersionConflict)
}

// IsNotFound reports whether err is or wraps an AppError with CodeNotFound.
func IsNotFound(err error) bool {
	return hasCode(err, CodeNotFound)
}

// IsAlreadyExists reports whether err is or wraps an AppError with CodeAlreadyExists.
func IsAlreadyExists(err error) bool {
	return hasCode(err, CodeAlreadyExists)
}

// IsValidation reports whether err is or wraps an AppError with CodeValidation.
func IsValidation(err error) bool {
	return hasCode(err, CodeValidation)
}

// IsInternal reports whether err is or wraps an AppError with CodeInternal.
func IsInternal(err error) bool {
	return hasCode(err, CodeInternal)
}

// IsAlreadyDeleted reports whether err is or wraps an AppError with CodeAlreadyDeleted.
func IsAlreadyDeleted(err error) bool {
	return hasCode(err, CodeAlreadyDeleted)
}

// IsNotDeleted reports whether err is or wraps an AppError with CodeNotDeleted.
func IsNotDeleted(err error) bool {
	return hasCode(err, CodeNotDeleted)
}

// IsForbidden reports whether err is or wraps an AppError with CodeForbidden.
func IsForbidden(err error) bool {
	return hasCode(err, CodeForbidden)
}

// IsUnauthorized reports whether err is or wraps an AppError with CodeUnauthorized.
func IsUnauthorized(err error) bool {
	return hasCode(err, CodeUnauthorized)
}

// IsStorageUnavailable reports whether err is or wraps an AppError with CodeStorageUnavailable.
func IsStorageUnavailable(err error) bool {
	return hasCode(err, CodeStorageUnavailable)
}

// IsInvalidTransition reports whether err is or wraps an AppError with CodeInvalidTransition.
func IsInvalidTransition(err error) bool {
	return hasCode(err, CodeInvalidTransition)
}

// hasCode checks whether err is or wraps an *AppError with the given code.
func hasCode(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// HTTPStatusCode maps an error to an HTTP status code.
// If the error is an *AppError or *ConflictError, the code is mapped; otherwise
// http.StatusInternalServerError is returned.
func HTTPStatusCode(err error) int {
	if err == nil {
		return http.StatusInternalServerError
	}
	if _, ok := AsConflict(err); ok {
		return http.StatusConflict
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case CodeNotFound:
			return http.StatusNotFound
		case CodeAlreadyExists, CodeVersionConflict, CodeAlreadyDeleted, CodeNotDeleted, CodeInvalidTransition:
			return http.StatusConflict
		case CodeValidation:
			return http.StatusBadRequest
		case CodeForbidden:
			return http.StatusForbidden
		case CodeUnauthorized:
			return http.StatusUnauthorized
		case CodeStorageUnavailable:
			return http.StatusServiceUnavailable
		case CodeInternal:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}
