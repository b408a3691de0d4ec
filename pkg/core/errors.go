package core

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies the type of error for better debugging and reporting
type ErrorCategory int

const (
	ErrCategoryNone      ErrorCategory = iota // No error
	ErrCategoryAssertion                      // Hard verification failed
	ErrCategoryTimeout                        // Operation timed out
	ErrCategoryConfig                         // Bad page metadata: locator, alias, sub-item, schema
	ErrCategoryDriver                         // Driver/transport failure or missing element
)

// String returns the string representation of ErrorCategory
func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryNone:
		return "none"
	case ErrCategoryAssertion:
		return "assertion"
	case ErrCategoryTimeout:
		return "timeout"
	case ErrCategoryConfig:
		return "config"
	case ErrCategoryDriver:
		return "driver"
	default:
		return "unknown"
	}
}

// ExecutionError represents a structured error with category and details
type ExecutionError struct {
	Category ErrorCategory
	Code     string                 // Machine-readable code: element_not_found, unknown_sub_item, etc.
	Message  string                 // Human-readable message
	Details  map[string]interface{} // Additional context
	Cause    error                  // Underlying error
}

// Error implements the error interface
func (e *ExecutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// Is matches any ExecutionError with the same code, so copies made by the
// With* helpers still match the predefined errors.
func (e *ExecutionError) Is(target error) bool {
	t, ok := target.(*ExecutionError)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// WithCause returns a copy of the error with the given cause
func (e *ExecutionError) WithCause(cause error) *ExecutionError {
	return &ExecutionError{
		Category: e.Category,
		Code:     e.Code,
		Message:  e.Message,
		Details:  e.Details,
		Cause:    cause,
	}
}

// WithMessage returns a copy of the error with a custom message
func (e *ExecutionError) WithMessage(msg string) *ExecutionError {
	return &ExecutionError{
		Category: e.Category,
		Code:     e.Code,
		Message:  msg,
		Details:  e.Details,
		Cause:    e.Cause,
	}
}

// WithDetails returns a copy of the error with additional details
func (e *ExecutionError) WithDetails(details map[string]interface{}) *ExecutionError {
	merged := make(map[string]interface{})
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	return &ExecutionError{
		Category: e.Category,
		Code:     e.Code,
		Message:  e.Message,
		Details:  merged,
		Cause:    e.Cause,
	}
}

// Predefined errors
var (
	// Assertion errors
	ErrVerificationFailed = &ExecutionError{
		Category: ErrCategoryAssertion,
		Code:     "verification_failed",
		Message:  "verification failed",
	}
	ErrPageNotCurrent = &ExecutionError{
		Category: ErrCategoryAssertion,
		Code:     "page_not_current",
		Message:  "page did not appear",
	}

	// Timeout errors
	ErrWaitTimeout = &ExecutionError{
		Category: ErrCategoryTimeout,
		Code:     "wait_timeout",
		Message:  "wait condition timed out",
	}

	// Config errors
	ErrInvalidLocator = &ExecutionError{
		Category: ErrCategoryConfig,
		Code:     "invalid_locator",
		Message:  "invalid locator",
	}
	ErrUnknownKind = &ExecutionError{
		Category: ErrCategoryConfig,
		Code:     "unknown_kind",
		Message:  "no constructor registered for control kind",
	}
	ErrInvalidSchema = &ExecutionError{
		Category: ErrCategoryConfig,
		Code:     "invalid_schema",
		Message:  "invalid page schema",
	}
	ErrCyclicPage = &ExecutionError{
		Category: ErrCategoryConfig,
		Code:     "cyclic_page",
		Message:  "page nests one of its ancestors",
	}
	ErrUnknownField = &ExecutionError{
		Category: ErrCategoryConfig,
		Code:     "unknown_field",
		Message:  "no such field on page",
	}
	ErrUnknownSection = &ExecutionError{
		Category: ErrCategoryConfig,
		Code:     "unknown_section",
		Message:  "no such section on page",
	}
	ErrUnknownSubItem = &ExecutionError{
		Category: ErrCategoryConfig,
		Code:     "unknown_sub_item",
		Message:  "no such sub-item",
	}
	ErrUnknownAlias = &ExecutionError{
		Category: ErrCategoryConfig,
		Code:     "unknown_alias",
		Message:  "no page registered for alias",
	}
	ErrUnknownPredicate = &ExecutionError{
		Category: ErrCategoryConfig,
		Code:     "unknown_predicate",
		Message:  "no predicate registered for name",
	}
	ErrUnknownPlatform = &ExecutionError{
		Category: ErrCategoryConfig,
		Code:     "unknown_platform",
		Message:  "unknown platform",
	}
	ErrCapabilityMismatch = &ExecutionError{
		Category: ErrCategoryConfig,
		Code:     "capability_mismatch",
		Message:  "field does not have the expected capability",
	}
	ErrNoCurrentPage = &ExecutionError{
		Category: ErrCategoryConfig,
		Code:     "no_current_page",
		Message:  "no current page set",
	}

	// Driver errors
	ErrElementNotFound = &ExecutionError{
		Category: ErrCategoryDriver,
		Code:     "element_not_found",
		Message:  "element not found",
	}
	ErrNotSupported = &ExecutionError{
		Category: ErrCategoryDriver,
		Code:     "not_supported",
		Message:  "operation not supported by driver",
	}
	ErrSessionLost = &ExecutionError{
		Category: ErrCategoryDriver,
		Code:     "session_lost",
		Message:  "driver session lost",
	}
	ErrNoAlert = &ExecutionError{
		Category: ErrCategoryDriver,
		Code:     "no_alert",
		Message:  "no alert is open",
	}
)

// NewExecutionError creates a new ExecutionError with the given parameters
func NewExecutionError(category ErrorCategory, code, message string) *ExecutionError {
	return &ExecutionError{
		Category: category,
		Code:     code,
		Message:  message,
	}
}

// CategoryOf returns the category of the first ExecutionError in err's chain.
func CategoryOf(err error) ErrorCategory {
	var ee *ExecutionError
	if errors.As(err, &ee) {
		return ee.Category
	}
	return ErrCategoryNone
}

// IsNotFound reports whether err signals a missing element.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrElementNotFound)
}

// IsConfigError reports whether err is a configuration/lookup error.
func IsConfigError(err error) bool {
	return CategoryOf(err) == ErrCategoryConfig
}

// IsAssertionError reports whether err is a failed hard verification.
func IsAssertionError(err error) bool {
	return CategoryOf(err) == ErrCategoryAssertion
}
