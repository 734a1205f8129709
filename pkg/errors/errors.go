package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown  ErrorCode = "UNKNOWN"
	ErrInternal ErrorCode = "INTERNAL"

	// Mode creation errors
	ErrInvalidWindowSize ErrorCode = "INVALID_WINDOW_SIZE"
	ErrMissingParameter  ErrorCode = "MISSING_PARAMETER"
	ErrValidation        ErrorCode = "VALIDATION"
	ErrImplementation    ErrorCode = "IMPLEMENTATION"

	// Task operation errors
	ErrUnknownTask            ErrorCode = "UNKNOWN_TASK"
	ErrCapabilityNotSupported ErrorCode = "CAPABILITY_NOT_SUPPORTED"
	ErrTaskLimit              ErrorCode = "TASK_LIMIT"
	ErrRetryLimit             ErrorCode = "RETRY_LIMIT"
	ErrClosed                 ErrorCode = "CLOSED"

	// Render errors
	ErrTemplate ErrorCode = "TEMPLATE"

	// IO errors
	ErrIO ErrorCode = "IO"

	// Configuration errors
	ErrConfigLoad    ErrorCode = "CONFIG_LOAD"
	ErrConfigInvalid ErrorCode = "CONFIG_INVALID"
)

// Category groups error codes by the layer that produced them.
type Category string

const (
	CategoryModeCreation  Category = "mode_creation"
	CategoryTaskOperation Category = "task_operation"
	CategoryRender        Category = "render"
	CategoryIO            Category = "io"
	CategoryConfig        Category = "config"
	CategoryOther         Category = "other"
)

var categories = map[ErrorCode]Category{
	ErrInvalidWindowSize:      CategoryModeCreation,
	ErrMissingParameter:       CategoryModeCreation,
	ErrValidation:             CategoryModeCreation,
	ErrImplementation:         CategoryModeCreation,
	ErrUnknownTask:            CategoryTaskOperation,
	ErrCapabilityNotSupported: CategoryTaskOperation,
	ErrTaskLimit:              CategoryTaskOperation,
	ErrRetryLimit:             CategoryTaskOperation,
	ErrClosed:                 CategoryTaskOperation,
	ErrTemplate:               CategoryRender,
	ErrIO:                     CategoryIO,
	ErrConfigLoad:             CategoryConfig,
	ErrConfigInvalid:          CategoryConfig,
}

// CategoryOf returns the category an error code belongs to
func CategoryOf(code ErrorCode) Category {
	if c, ok := categories[code]; ok {
		return c
	}
	return CategoryOther
}

// Error represents a structured error with code and details
type Error struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *Error) Is(target error) bool {
	var targetErr *Error
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// Category returns the category of the error's code
func (e *Error) Category() Category {
	return CategoryOf(e.Code)
}

// New creates a new Error with the given code and message
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new Error with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with an Error
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not an Error
func GetErrorCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not an Error
func GetErrorDetails(err error) map[string]interface{} {
	var e *Error
	if errors.As(err, &e) {
		return e.Details
	}
	return nil
}

// GetCategory returns the category of err, or CategoryOther for foreign errors
func GetCategory(err error) Category {
	return CategoryOf(GetErrorCode(err))
}
