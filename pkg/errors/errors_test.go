package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name: "without underlying error",
			appErr: &AppError{
				Code:    CodeNotFound,
				Message: "Booking not found",
			},
			expected: "NOT_FOUND: Booking not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "internal error",
				Err:     errors.New("connection refused"),
			},
			expected: "INTERNAL_ERROR: internal error (caused by: connection refused)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.appErr.Error()
			if got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	originalErr := errors.New("original error")
	appErr := Internal("wrapped", originalErr)

	if unwrapped := errors.Unwrap(appErr); unwrapped != originalErr {
		t.Errorf("Unwrap() should return original error")
	}
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"not found", NotFound("Listing"), CodeNotFound, http.StatusNotFound},
		{"forbidden", Forbidden("Not authorized to view this booking"), CodeForbidden, http.StatusForbidden},
		{"unauthorized", Unauthorized("invalid token"), CodeUnauthorized, http.StatusUnauthorized},
		{"invalid state", InvalidState("Booking is already confirmed"), CodeInvalidState, http.StatusBadRequest},
		{"conflict", Conflict("Review already exists for this booking"), CodeConflict, http.StatusBadRequest},
		{"validation", Validation("Booking validation failed", nil), CodeValidation, http.StatusBadRequest},
		{"internal", Internal("boom", errors.New("x")), CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %s, want %s", tt.err.Code, tt.code)
			}
			if tt.err.StatusCode() != tt.status {
				t.Errorf("StatusCode() = %d, want %d", tt.err.StatusCode(), tt.status)
			}
		})
	}
}

func TestNotFoundWithID(t *testing.T) {
	err := NotFoundWithID("Booking", "6653f1a2b3c4d5e6f7a8b9c0")

	if err.Message != "Booking not found" {
		t.Errorf("Message = %q, want %q", err.Message, "Booking not found")
	}
	if err.Details["id"] != "6653f1a2b3c4d5e6f7a8b9c0" {
		t.Errorf("expected id detail, got %v", err.Details["id"])
	}
}

func TestAsAppError(t *testing.T) {
	appErr := Forbidden("nope")
	if AsAppError(appErr) != appErr {
		t.Error("AsAppError should return the same AppError unchanged")
	}

	plain := errors.New("driver failure")
	wrapped := AsAppError(plain)
	if wrapped.Code != CodeInternal {
		t.Errorf("Code = %s, want %s", wrapped.Code, CodeInternal)
	}
	if !errors.Is(wrapped, plain) {
		t.Error("wrapped error should preserve the original via Unwrap")
	}
}
