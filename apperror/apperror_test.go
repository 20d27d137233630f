package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want int
	}{
		{"validation", NewValidationError("bad input", nil), http.StatusBadRequest},
		{"not found", NewNotFoundError("missing", nil), http.StatusNotFound},
		{"conflict", NewConflictError("duplicate", nil), http.StatusConflict},
		{"auth", NewAuthError("nope", nil), http.StatusUnauthorized},
		{"storage", NewStorageError("disk", nil), http.StatusInternalServerError},
		{"database", NewDatabaseError("db", nil), http.StatusInternalServerError},
		{"internal", NewInternalError("boom", nil), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.StatusCode(); got != tt.want {
				t.Errorf("StatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestUnwrapPreservesCause(t *testing.T) {
	cause := errors.New("root cause")
	err := NewDatabaseError("query failed", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	wrapped := fmt.Errorf("outer: %w", err)
	got, ok := FromError(wrapped)
	if !ok {
		t.Fatal("FromError should find AppError through wrapping")
	}
	if got.Type != DatabaseError {
		t.Errorf("type = %v, want DatabaseError", got.Type)
	}
}

func TestToResponseHidesUnderlyingError(t *testing.T) {
	err := NewDatabaseError("query failed", errors.New("password=hunter2 dial failed"))
	resp := err.ToResponse()
	if resp.Error != "query failed" {
		t.Errorf("response error = %q", resp.Error)
	}
	if resp.Details != "" {
		t.Errorf("details should be empty, got %q", resp.Details)
	}

	detailed := err.WithDetails("posts table")
	if detailed.ToResponse().Details != "posts table" {
		t.Errorf("details = %q", detailed.ToResponse().Details)
	}
	// WithDetails must not mutate the original.
	if err.Details != "" {
		t.Error("WithDetails mutated the receiver")
	}
}
