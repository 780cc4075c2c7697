package errors

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// ClassifyError classifies storage errors into domain error codes
func ClassifyError(err error) ErrorCode {
	if err == nil {
		return ErrCodeUnknown
	}

	// Driver-specific type assertions give the most accurate classification
	if code := classifySQLiteError(err); code != ErrCodeUnknown {
		return code
	}

	// Standard library errors
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return ErrCodeNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return ErrCodeTimeout
	case errors.Is(err, context.Canceled):
		return ErrCodeTimeout
	}

	// Fall back to string-based classification for non-driver-specific errors
	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "unique constraint"):
		return ErrCodeDuplicate
	case strings.Contains(errStr, "foreign key constraint"),
		strings.Contains(errStr, "check constraint"),
		strings.Contains(errStr, "not null constraint"):
		return ErrCodeConstraint
	case strings.Contains(errStr, "database is locked"):
		return ErrCodeBusy
	case strings.Contains(errStr, "database disk image is malformed"):
		return ErrCodeCorruption
	case strings.Contains(errStr, "no such table"),
		strings.Contains(errStr, "no such column"):
		return ErrCodeSchema
	case strings.Contains(errStr, "permission denied"),
		strings.Contains(errStr, "access denied"):
		return ErrCodePermission
	case strings.Contains(errStr, "disk full"),
		strings.Contains(errStr, "no space left"):
		return ErrCodeDiskSpace
	case strings.Contains(errStr, "timeout"):
		return ErrCodeTimeout
	case strings.Contains(errStr, "deadlock"):
		return ErrCodeTransaction
	default:
		return ErrCodeUnknown
	}
}

// WrapStorageError wraps a storage error with domain error context
func WrapStorageError(op string, err error) error {
	if err == nil {
		return nil
	}

	return NewDomainError(op, err, ClassifyError(err))
}

// WrapStorageErrorWithContext wraps a storage error with classification and additional context
func WrapStorageErrorWithContext(op string, err error, contextMap map[string]string) error {
	if err == nil {
		return nil
	}

	return NewDomainErrorWithContext(op, err, ClassifyError(err), contextMap)
}

// HandleNotFound creates a standardized not found error
func HandleNotFound(op string, resource string, identifier string) error {
	contextMap := map[string]string{
		"resource":   resource,
		"identifier": identifier,
	}
	return NewDomainErrorWithContext(op, sql.ErrNoRows, ErrCodeNotFound, contextMap)
}

// HandleValidationError creates a standardized validation error
func HandleValidationError(op string, field string, value string, reason string) error {
	contextMap := map[string]string{
		"field":  field,
		"value":  value,
		"reason": reason,
	}
	return NewDomainErrorWithContext(op, errors.New("validation failed"), ErrCodeValidation, contextMap)
}

// HandleLaunchError creates a standardized process launch error
func HandleLaunchError(op string, path string, err error) error {
	contextMap := map[string]string{
		"path": path,
	}
	return NewDomainErrorWithContext(op, err, ErrCodeLaunch, contextMap)
}

// HandleNotRunningError creates the soft error returned when stop finds no live instance
func HandleNotRunningError(op string, appID string) error {
	contextMap := map[string]string{
		"app_id": appID,
	}
	return NewDomainErrorWithContext(op, errors.New("application not running"), ErrCodeNotRunning, contextMap)
}

// HandleConnectionError creates a standardized connection error
func HandleConnectionError(op string, details string) error {
	contextMap := map[string]string{
		"details": details,
	}
	return NewDomainErrorWithContext(op, errors.New("connection error"), ErrCodeConnection, contextMap)
}

// HandleTransactionError creates a standardized transaction error
func HandleTransactionError(op string, phase string, details string) error {
	contextMap := map[string]string{
		"phase":   phase,
		"details": details,
	}
	return NewDomainErrorWithContext(op, errors.New("transaction error"), ErrCodeTransaction, contextMap)
}
