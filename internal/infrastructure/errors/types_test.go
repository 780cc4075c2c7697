package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestErrorCode_String(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected string
	}{
		{ErrCodeNotFound, "NOT_FOUND"},
		{ErrCodeValidation, "VALIDATION"},
		{ErrCodeLaunch, "LAUNCH"},
		{ErrCodeNotRunning, "NOT_RUNNING"},
		{ErrCodeDuplicate, "DUPLICATE"},
		{ErrCodeConstraint, "CONSTRAINT"},
		{ErrCodeConnection, "CONNECTION"},
		{ErrCodeTransaction, "TRANSACTION"},
		{ErrCodeTimeout, "TIMEOUT"},
		{ErrCodePermission, "PERMISSION"},
		{ErrCodeDiskSpace, "DISK_SPACE"},
		{ErrCodeCorruption, "CORRUPTION"},
		{ErrCodeInternal, "INTERNAL"},
		{ErrCodeBusy, "BUSY"},
		{ErrCodeSchema, "SCHEMA"},
		{ErrCodeUnknown, "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.code.String(); got != tt.expected {
				t.Errorf("ErrorCode.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *DomainError
		contains []string
	}{
		{
			name: "basic error",
			err: &DomainError{
				Op:   "test_operation",
				Err:  errors.New("test error"),
				Code: ErrCodeNotFound,
			},
			contains: []string{"test error", "op=test_operation", "code=NOT_FOUND"},
		},
		{
			name: "error with context",
			err: &DomainError{
				Op:   "test_operation",
				Err:  errors.New("test error"),
				Code: ErrCodeLaunch,
				Context: map[string]string{
					"path":   "/usr/bin/editor",
					"app_id": "123",
				},
			},
			contains: []string{"test error", "code=LAUNCH", "path=/usr/bin/editor", "app_id=123"},
		},
		{
			name: "retryable error",
			err: &DomainError{
				Op:        "test_operation",
				Err:       errors.New("test error"),
				Code:      ErrCodeConnection,
				Retryable: true,
			},
			contains: []string{"test error", "code=CONNECTION", "retryable=true"},
		},
		{
			name: "nil underlying error",
			err: &DomainError{
				Op:   "test_operation",
				Code: ErrCodeInternal,
			},
			contains: []string{"domain error", "op=test_operation", "code=INTERNAL"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errStr := tt.err.Error()
			for _, contain := range tt.contains {
				if !strings.Contains(errStr, contain) {
					t.Errorf("DomainError.Error() = %v, should contain %v", errStr, contain)
				}
			}
		})
	}
}

func TestDomainError_Error_NilReceiver(t *testing.T) {
	var err *DomainError
	if got := err.Error(); got != "domain error" {
		t.Errorf("nil DomainError.Error() = %v, want 'domain error'", got)
	}
}

func TestDomainError_Error_DeterministicContext(t *testing.T) {
	err := &DomainError{
		Op:  "op",
		Err: errors.New("boom"),
		Context: map[string]string{
			"zebra": "1",
			"alpha": "2",
			"mike":  "3",
		},
	}

	first := err.Error()
	for i := 0; i < 10; i++ {
		if got := err.Error(); got != first {
			t.Fatalf("DomainError.Error() output not deterministic: %v vs %v", first, got)
		}
	}
}

func TestDomainError_Is(t *testing.T) {
	err1 := &DomainError{Code: ErrCodeNotFound}
	err2 := &DomainError{Code: ErrCodeNotFound}
	err3 := &DomainError{Code: ErrCodeLaunch}
	otherErr := errors.New("other error")

	if !errors.Is(err1, err2) {
		t.Error("Expected errors with same code to match")
	}
	if errors.Is(err1, err3) {
		t.Error("Expected errors with different codes not to match")
	}
	if errors.Is(err1, otherErr) {
		t.Error("Expected domain error not to match plain error")
	}
}

func TestDomainError_Is_WrappedError(t *testing.T) {
	base := errors.New("base error")
	domErr := NewDomainError("op", base, ErrCodeInternal)

	if !errors.Is(domErr, base) {
		t.Error("Expected domain error to match its wrapped error")
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	base := errors.New("base error")
	domErr := NewDomainError("op", base, ErrCodeInternal)

	if !errors.Is(errors.Unwrap(domErr), base) {
		t.Error("Unwrap() should return the underlying error")
	}

	wrapped := fmt.Errorf("outer: %w", domErr)
	var target *DomainError
	if !errors.As(wrapped, &target) {
		t.Error("errors.As should find DomainError through wrapping")
	}
	if target.Code != ErrCodeInternal {
		t.Errorf("errors.As found code %v, want INTERNAL", target.Code)
	}
}

func TestNewDomainError_Retryability(t *testing.T) {
	tests := []struct {
		code      ErrorCode
		retryable bool
	}{
		{ErrCodeConnection, true},
		{ErrCodeTimeout, true},
		{ErrCodeTransaction, true},
		{ErrCodeBusy, true},
		{ErrCodeNotFound, false},
		{ErrCodeValidation, false},
		{ErrCodeLaunch, false},
		{ErrCodeNotRunning, false},
		{ErrCodeDuplicate, false},
		{ErrCodePermission, false},
		{ErrCodeCorruption, false},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			err := NewDomainError("op", errors.New("test"), tt.code)
			if err.IsRetryable() != tt.retryable {
				t.Errorf("NewDomainError(%v).IsRetryable() = %v, want %v", tt.code, err.IsRetryable(), tt.retryable)
			}
		})
	}
}

func TestNewDomainError_UnknownCodeUsesMessage(t *testing.T) {
	retryable := NewDomainError("op", errors.New("resource temporarily unavailable, retry later"), ErrCodeUnknown)
	if !retryable.IsRetryable() {
		t.Error("unknown code with retry hint in message should be retryable")
	}

	permanent := NewDomainError("op", errors.New("something broke"), ErrCodeUnknown)
	if permanent.IsRetryable() {
		t.Error("unknown code without retry hint should not be retryable")
	}
}

func TestNewDomainErrorWithContext_ClonesContext(t *testing.T) {
	original := map[string]string{"key": "value"}
	err := NewDomainErrorWithContext("op", errors.New("test"), ErrCodeInternal, original)

	original["key"] = "mutated"
	if err.GetContext()["key"] != "value" {
		t.Error("NewDomainErrorWithContext() should clone the context map")
	}
}

func TestDomainError_WithContext(t *testing.T) {
	err := NewDomainError("op", errors.New("test"), ErrCodeInternal)
	err.WithContext("table", "registered_apps").WithContext("id", "42")

	ctx := err.GetContext()
	if ctx["table"] != "registered_apps" || ctx["id"] != "42" {
		t.Errorf("WithContext() context = %v, want both keys present", ctx)
	}
}

func TestDomainError_Getters(t *testing.T) {
	before := time.Now()
	err := NewDomainError("op", errors.New("test"), ErrCodeValidation)
	after := time.Now()

	if err.GetCode() != "VALIDATION" {
		t.Errorf("GetCode() = %v, want VALIDATION", err.GetCode())
	}
	if ts := err.GetTimestamp(); ts.Before(before) || ts.After(after) {
		t.Errorf("GetTimestamp() = %v, want between %v and %v", ts, before, after)
	}

	var nilErr *DomainError
	if nilErr.GetCode() != "UNKNOWN" {
		t.Errorf("nil GetCode() = %v, want UNKNOWN", nilErr.GetCode())
	}
	if nilErr.GetContext() == nil {
		t.Error("nil GetContext() should return empty map, not nil")
	}
	if nilErr.IsRetryable() {
		t.Error("nil IsRetryable() should be false")
	}
}

func TestErrorClassificationHelpers(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"IsNotFound match", NewDomainError("op", errors.New("x"), ErrCodeNotFound), IsNotFound, true},
		{"IsNotFound mismatch", NewDomainError("op", errors.New("x"), ErrCodeLaunch), IsNotFound, false},
		{"IsNotFound plain error", errors.New("not found"), IsNotFound, false},
		{"IsValidation match", NewDomainError("op", errors.New("x"), ErrCodeValidation), IsValidation, true},
		{"IsLaunch match", NewDomainError("op", errors.New("x"), ErrCodeLaunch), IsLaunch, true},
		{"IsNotRunning match", NewDomainError("op", errors.New("x"), ErrCodeNotRunning), IsNotRunning, true},
		{"IsDuplicate match", NewDomainError("op", errors.New("x"), ErrCodeDuplicate), IsDuplicate, true},
		{"IsConstraint match", NewDomainError("op", errors.New("x"), ErrCodeConstraint), IsConstraint, true},
		{"IsConnection match", NewDomainError("op", errors.New("x"), ErrCodeConnection), IsConnection, true},
		{"IsTimeout match", NewDomainError("op", errors.New("x"), ErrCodeTimeout), IsTimeout, true},
		{"IsBusy match", NewDomainError("op", errors.New("x"), ErrCodeBusy), IsBusy, true},
		{"IsSchema match", NewDomainError("op", errors.New("x"), ErrCodeSchema), IsSchema, true},
		{"IsPermission match", NewDomainError("op", errors.New("x"), ErrCodePermission), IsPermission, true},
		{"IsDiskSpace match", NewDomainError("op", errors.New("x"), ErrCodeDiskSpace), IsDiskSpace, true},
		{"IsCorruption match", NewDomainError("op", errors.New("x"), ErrCodeCorruption), IsCorruption, true},
		{"IsRetryable busy", NewDomainError("op", errors.New("x"), ErrCodeBusy), IsRetryable, true},
		{"IsRetryable launch", NewDomainError("op", errors.New("x"), ErrCodeLaunch), IsRetryable, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.check(tt.err); got != tt.want {
				t.Errorf("classification check = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorClassificationHelpers_Wrapped(t *testing.T) {
	inner := NewDomainError("op", errors.New("spawn failed"), ErrCodeLaunch)
	wrapped := fmt.Errorf("launch sequence: %w", inner)

	if !IsLaunch(wrapped) {
		t.Error("IsLaunch() should see through error wrapping")
	}
	if IsNotFound(wrapped) {
		t.Error("IsNotFound() should not match a wrapped launch error")
	}
}
