package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "simple error",
			err:      errors.New("something went wrong"),
			expected: "Error: something went wrong",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.err)
			if result != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, result, tt.expected)
			}
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", Invalid("title", "is required"), http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("create step: %w", Invalid("title", "is required")), http.StatusBadRequest},
		{"not found", NotFound("habit", "h1"), http.StatusNotFound},
		{"conflict", fmt.Errorf("dup: %w", ErrConflict), http.StatusConflict},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := Invalid("selectedDays", "unknown token %q", "funday")
	if err.Error() != `selectedDays: unknown token "funday"` {
		t.Errorf("unexpected message: %q", err.Error())
	}
	if !errors.Is(err, ErrValidation) {
		t.Error("expected ValidationError to wrap ErrValidation")
	}
	if Code(err) != "validation_error" {
		t.Errorf("expected validation_error code, got %q", Code(err))
	}
}
