package errors

import (
	"context"
	"database/sql"
	"errors"
	"testing"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"nil error", nil, ErrCodeUnknown},
		{"sql no rows", sql.ErrNoRows, ErrCodeNotFound},
		{"deadline exceeded", context.DeadlineExceeded, ErrCodeTimeout},
		{"context canceled", context.Canceled, ErrCodeTimeout},
		{"unique constraint message", errors.New("UNIQUE constraint failed: registered_apps.id"), ErrCodeDuplicate},
		{"check constraint message", errors.New("CHECK constraint failed: delay"), ErrCodeConstraint},
		{"not null constraint message", errors.New("NOT NULL constraint failed: name"), ErrCodeConstraint},
		{"database locked", errors.New("database is locked"), ErrCodeBusy},
		{"malformed image", errors.New("database disk image is malformed"), ErrCodeCorruption},
		{"missing table", errors.New("no such table: registered_apps"), ErrCodeSchema},
		{"missing column", errors.New("no such column: delay"), ErrCodeSchema},
		{"permission denied", errors.New("open db: permission denied"), ErrCodePermission},
		{"disk full", errors.New("write failed: no space left on device"), ErrCodeDiskSpace},
		{"timeout message", errors.New("operation timeout"), ErrCodeTimeout},
		{"deadlock message", errors.New("deadlock detected"), ErrCodeTransaction},
		{"unclassified", errors.New("something else entirely"), ErrCodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestWrapStorageError(t *testing.T) {
	if err := WrapStorageError("op", nil); err != nil {
		t.Errorf("WrapStorageError(nil) = %v, want nil", err)
	}

	wrapped := WrapStorageError("GetAll", sql.ErrNoRows)
	var domErr *DomainError
	if !errors.As(wrapped, &domErr) {
		t.Fatal("WrapStorageError() should return a DomainError")
	}
	if domErr.Code != ErrCodeNotFound {
		t.Errorf("WrapStorageError() code = %v, want NOT_FOUND", domErr.Code)
	}
	if domErr.Op != "GetAll" {
		t.Errorf("WrapStorageError() op = %v, want GetAll", domErr.Op)
	}
	if !errors.Is(wrapped, sql.ErrNoRows) {
		t.Error("WrapStorageError() should preserve the underlying error")
	}
}

func TestWrapStorageErrorWithContext(t *testing.T) {
	if err := WrapStorageErrorWithContext("op", nil, map[string]string{"k": "v"}); err != nil {
		t.Errorf("WrapStorageErrorWithContext(nil) = %v, want nil", err)
	}

	wrapped := WrapStorageErrorWithContext("Insert", errors.New("database is locked"), map[string]string{
		"app_id": "42",
	})

	var domErr *DomainError
	if !errors.As(wrapped, &domErr) {
		t.Fatal("WrapStorageErrorWithContext() should return a DomainError")
	}
	if domErr.Code != ErrCodeBusy {
		t.Errorf("WrapStorageErrorWithContext() code = %v, want BUSY", domErr.Code)
	}
	if domErr.GetContext()["app_id"] != "42" {
		t.Errorf("WrapStorageErrorWithContext() context = %v, want app_id=42", domErr.GetContext())
	}
}

func TestHandleNotFound(t *testing.T) {
	err := HandleNotFound("GetByID", "registered_app", "abc")

	if !IsNotFound(err) {
		t.Error("HandleNotFound() should produce NOT_FOUND")
	}
	if !errors.Is(err, sql.ErrNoRows) {
		t.Error("HandleNotFound() should wrap sql.ErrNoRows")
	}

	var domErr *DomainError
	errors.As(err, &domErr)
	if domErr.GetContext()["resource"] != "registered_app" || domErr.GetContext()["identifier"] != "abc" {
		t.Errorf("HandleNotFound() context = %v", domErr.GetContext())
	}
}

func TestHandleValidationError(t *testing.T) {
	err := HandleValidationError("Add", "name", "", "name cannot be empty")

	if !IsValidation(err) {
		t.Error("HandleValidationError() should produce VALIDATION")
	}
	if IsRetryable(err) {
		t.Error("validation errors must not be retryable")
	}

	var domErr *DomainError
	errors.As(err, &domErr)
	if domErr.GetContext()["reason"] != "name cannot be empty" {
		t.Errorf("HandleValidationError() context = %v", domErr.GetContext())
	}
}

func TestHandleLaunchError(t *testing.T) {
	cause := errors.New("no such file or directory")
	err := HandleLaunchError("Launch", "/missing/binary", cause)

	if !IsLaunch(err) {
		t.Error("HandleLaunchError() should produce LAUNCH")
	}
	if !errors.Is(err, cause) {
		t.Error("HandleLaunchError() should preserve the spawn error")
	}

	var domErr *DomainError
	errors.As(err, &domErr)
	if domErr.GetContext()["path"] != "/missing/binary" {
		t.Errorf("HandleLaunchError() context = %v, want path set", domErr.GetContext())
	}
}

func TestHandleNotRunningError(t *testing.T) {
	err := HandleNotRunningError("Stop", "app-7")

	if !IsNotRunning(err) {
		t.Error("HandleNotRunningError() should produce NOT_RUNNING")
	}
	if IsRetryable(err) {
		t.Error("not-running errors must not be retryable")
	}

	var domErr *DomainError
	errors.As(err, &domErr)
	if domErr.GetContext()["app_id"] != "app-7" {
		t.Errorf("HandleNotRunningError() context = %v, want app_id set", domErr.GetContext())
	}
}

func TestHandleConnectionError(t *testing.T) {
	err := HandleConnectionError("Connect", "failed to open database")

	if !IsConnection(err) {
		t.Error("HandleConnectionError() should produce CONNECTION")
	}
	if !IsRetryable(err) {
		t.Error("connection errors should be retryable")
	}
}

func TestHandleTransactionError(t *testing.T) {
	err := HandleTransactionError("SaveBatch", "commit", "disk io error")

	var domErr *DomainError
	if !errors.As(err, &domErr) {
		t.Fatal("HandleTransactionError() should return a DomainError")
	}
	if domErr.Code != ErrCodeTransaction {
		t.Errorf("HandleTransactionError() code = %v, want TRANSACTION", domErr.Code)
	}
	if domErr.GetContext()["phase"] != "commit" {
		t.Errorf("HandleTransactionError() context = %v, want phase=commit", domErr.GetContext())
	}
}
