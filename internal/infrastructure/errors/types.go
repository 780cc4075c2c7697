package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrorCode classifies failures surfaced by the registry, supervisor and store
type ErrorCode int

const (
	ErrCodeUnknown ErrorCode = iota
	ErrCodeNotFound
	ErrCodeValidation
	ErrCodeLaunch
	ErrCodeNotRunning
	ErrCodeDuplicate
	ErrCodeConstraint
	ErrCodeConnection
	ErrCodeTransaction
	ErrCodeTimeout
	ErrCodePermission
	ErrCodeDiskSpace
	ErrCodeCorruption
	ErrCodeInternal
	ErrCodeBusy
	ErrCodeSchema
)

// String returns a string representation of the error code
func (e ErrorCode) String() string {
	switch e {
	case ErrCodeNotFound:
		return "NOT_FOUND"
	case ErrCodeValidation:
		return "VALIDATION"
	case ErrCodeLaunch:
		return "LAUNCH"
	case ErrCodeNotRunning:
		return "NOT_RUNNING"
	case ErrCodeDuplicate:
		return "DUPLICATE"
	case ErrCodeConstraint:
		return "CONSTRAINT"
	case ErrCodeConnection:
		return "CONNECTION"
	case ErrCodeTransaction:
		return "TRANSACTION"
	case ErrCodeTimeout:
		return "TIMEOUT"
	case ErrCodePermission:
		return "PERMISSION"
	case ErrCodeDiskSpace:
		return "DISK_SPACE"
	case ErrCodeCorruption:
		return "CORRUPTION"
	case ErrCodeInternal:
		return "INTERNAL"
	case ErrCodeBusy:
		return "BUSY"
	case ErrCodeSchema:
		return "SCHEMA"
	default:
		return "UNKNOWN"
	}
}

// DomainError represents a classified error with context and retry information
type DomainError struct {
	Op        string            // operation name
	Err       error             // underlying error
	Code      ErrorCode         // error classification
	Retryable bool              // whether the error is retryable
	Context   map[string]string // additional context information
	Timestamp time.Time         // when the error occurred
}

func (e *DomainError) Error() string {
	// Guard against nil receiver
	if e == nil {
		return "domain error"
	}

	var parts []string

	if e.Op != "" {
		parts = append(parts, fmt.Sprintf("op=%s", e.Op))
	}

	if e.Code != ErrCodeUnknown {
		parts = append(parts, fmt.Sprintf("code=%s", e.Code.String()))
	}

	if e.Retryable {
		parts = append(parts, "retryable=true")
	}

	// Append context key=value pairs in sorted order for deterministic output
	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%s", k, e.Context[k]))
		}
	}

	contextStr := ""
	if len(parts) > 0 {
		contextStr = fmt.Sprintf(" [%s]", strings.Join(parts, " "))
	}

	if e.Err != nil {
		return e.Err.Error() + contextStr
	}
	return "domain error" + contextStr
}

func (e *DomainError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is implements error matching for errors.Is
func (e *DomainError) Is(target error) bool {
	if e == nil {
		return false
	}
	if t, ok := target.(*DomainError); ok {
		return e.Code == t.Code
	}
	// Also check if the target matches the underlying/wrapped error
	if e.Err != nil {
		return errors.Is(e.Err, target)
	}
	return false
}

// IsRetryable returns whether the error is retryable
func (e *DomainError) IsRetryable() bool {
	if e == nil {
		return false
	}
	return e.Retryable
}

// GetCode returns the error code as a string (for logging interface compatibility)
func (e *DomainError) GetCode() string {
	if e == nil {
		return ErrCodeUnknown.String()
	}
	return e.Code.String()
}

// GetContext returns the error context (for logging interface compatibility)
func (e *DomainError) GetContext() map[string]string {
	if e == nil || e.Context == nil {
		return make(map[string]string)
	}
	return e.Context
}

// GetTimestamp returns the error timestamp (for logging interface compatibility)
func (e *DomainError) GetTimestamp() time.Time {
	if e == nil {
		return time.Time{}
	}
	return e.Timestamp
}

// WithContext adds context information to the error by mutating the receiver.
// Not safe after the error has been published to other goroutines; use
// NewDomainErrorWithContext for concurrent construction.
func (e *DomainError) WithContext(key, value string) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// NewDomainError creates a new domain error with the given parameters
func NewDomainError(op string, err error, code ErrorCode) *DomainError {
	return &DomainError{
		Op:        op,
		Err:       err,
		Code:      code,
		Retryable: isRetryableError(code, err),
		Context:   make(map[string]string),
		Timestamp: time.Now(),
	}
}

// NewDomainErrorWithContext creates a new domain error with additional context
func NewDomainErrorWithContext(op string, err error, code ErrorCode, context map[string]string) *DomainError {
	domErr := NewDomainError(op, err, code)
	if context != nil {
		// Clone the context map to avoid external mutation and data races
		domErr.Context = make(map[string]string, len(context))
		for k, v := range context {
			domErr.Context[k] = v
		}
	}
	return domErr
}

// isRetryableError determines if an error is retryable based on its classification
func isRetryableError(code ErrorCode, err error) bool {
	switch code {
	case ErrCodeConnection, ErrCodeTimeout, ErrCodeTransaction, ErrCodeBusy:
		return true
	case ErrCodeNotFound, ErrCodeValidation, ErrCodeLaunch, ErrCodeNotRunning,
		ErrCodeDuplicate, ErrCodeConstraint, ErrCodePermission, ErrCodeDiskSpace,
		ErrCodeCorruption, ErrCodeInternal, ErrCodeSchema:
		return false
	default:
		// For unknown errors, check the underlying error message
		if err != nil {
			errStr := strings.ToLower(err.Error())
			return strings.Contains(errStr, "temporary") ||
				strings.Contains(errStr, "retry") ||
				strings.Contains(errStr, "busy") ||
				strings.Contains(errStr, "locked") ||
				strings.Contains(errStr, "deadlock")
		}
		return false
	}
}

// Error classification functions

// IsNotFound checks if the error is a "not found" error
func IsNotFound(err error) bool {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Code == ErrCodeNotFound
	}
	return false
}

// IsValidation checks if the error is a validation error
func IsValidation(err error) bool {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Code == ErrCodeValidation
	}
	return false
}

// IsLaunch checks if the error is a process launch error
func IsLaunch(err error) bool {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Code == ErrCodeLaunch
	}
	return false
}

// IsNotRunning checks if the error is a "not running" error
func IsNotRunning(err error) bool {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Code == ErrCodeNotRunning
	}
	return false
}

// IsDuplicate checks if the error is a "duplicate" error
func IsDuplicate(err error) bool {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Code == ErrCodeDuplicate
	}
	return false
}

// IsConstraint checks if the error is a "constraint violation" error
func IsConstraint(err error) bool {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Code == ErrCodeConstraint
	}
	return false
}

// IsConnection checks if the error is a "connection" error
func IsConnection(err error) bool {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Code == ErrCodeConnection
	}
	return false
}

// IsTimeout checks if the error is a "timeout" error
func IsTimeout(err error) bool {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Code == ErrCodeTimeout
	}
	return false
}

// IsRetryable checks if the error is retryable
func IsRetryable(err error) bool {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Retryable
	}
	return false
}

// IsPermission checks if the error is a permission error
func IsPermission(err error) bool {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Code == ErrCodePermission
	}
	return false
}

// IsDiskSpace checks if the error is a disk space error
func IsDiskSpace(err error) bool {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Code == ErrCodeDiskSpace
	}
	return false
}

// IsCorruption checks if the error is a corruption error
func IsCorruption(err error) bool {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Code == ErrCodeCorruption
	}
	return false
}

// IsBusy checks if the error is a busy/locked error
func IsBusy(err error) bool {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Code == ErrCodeBusy
	}
	return false
}

// IsSchema checks if the error is a schema error
func IsSchema(err error) bool {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Code == ErrCodeSchema
	}
	return false
}
