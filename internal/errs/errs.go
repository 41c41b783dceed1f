// Package errs provides structured error handling for tripletext.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: configuration errors
//   - 2XX: storage I/O errors (index, triple store)
//   - 3XX: query errors
//   - 4XX: usage errors (session state violations)
package errs

import (
	stderrors "errors"
	"fmt"
)

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates index and triple-store I/O errors.
	CategoryIO Category = "IO"
	// CategoryQuery indicates query parse and execution errors.
	CategoryQuery Category = "QUERY"
	// CategoryUsage indicates caller contract violations.
	CategoryUsage Category = "USAGE"
)

// Error codes organized by category.
const (
	ErrCodeConfigInvalid = "ERR_101_CONFIG_INVALID"

	ErrCodeIndexIO = "ERR_201_INDEX_IO"
	ErrCodeStoreIO = "ERR_202_STORE_IO"

	ErrCodeQuery = "ERR_301_QUERY"

	ErrCodeSessionState = "ERR_401_SESSION_STATE"
)

// Error is the structured error type for tripletext. Failures from the
// search engine and the triple store are wrapped into one of the codes
// above at the boundary of each public operation; nothing is swallowed.
type Error struct {
	// Code is the unique error code (e.g. "ERR_201_INDEX_IO").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is derived from the code.
	Category Category

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors by code, enabling errors.Is with sentinel values
// such as errs.New(errs.ErrCodeQuery, "", nil).
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates an Error with the given code and message.
// The category is derived from the code.
func New(code, message string, cause error) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Cause:    cause,
	}
}

// Config creates a configuration error.
func Config(message string, cause error) *Error {
	return New(ErrCodeConfigInvalid, message, cause)
}

// IndexIO creates an index storage error.
func IndexIO(message string, cause error) *Error {
	return New(ErrCodeIndexIO, message, cause)
}

// StoreIO creates a triple-store error.
func StoreIO(message string, cause error) *Error {
	return New(ErrCodeStoreIO, message, cause)
}

// Query creates a query parse or execution error.
func Query(message string, cause error) *Error {
	return New(ErrCodeQuery, message, cause)
}

// Usage creates a caller-contract error, such as writing outside an
// indexing session.
func Usage(message string) *Error {
	return New(ErrCodeSessionState, message, nil)
}

// GetCode extracts the error code, or "" if err is not an Error.
func GetCode(err error) string {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsConfig reports whether err is a configuration error.
func IsConfig(err error) bool { return GetCode(err) == ErrCodeConfigInvalid }

// IsIndexIO reports whether err is an index storage error.
func IsIndexIO(err error) bool { return GetCode(err) == ErrCodeIndexIO }

// IsStoreIO reports whether err is a triple-store error.
func IsStoreIO(err error) bool { return GetCode(err) == ErrCodeStoreIO }

// IsQuery reports whether err is a query error.
func IsQuery(err error) bool { return GetCode(err) == ErrCodeQuery }

// IsUsage reports whether err is a caller-contract error.
func IsUsage(err error) bool { return GetCode(err) == ErrCodeSessionState }

// categoryFromCode extracts the category from the numeric portion of a code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryIO
	}
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '3':
		return CategoryQuery
	case '4':
		return CategoryUsage
	default:
		return CategoryIO
	}
}
