package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsValidationError(t *testing.T) {
	for _, sentinel := range validationSentinels {
		if !IsValidationError(sentinel) {
			t.Errorf("Expected %v to be a validation error", sentinel)
		}
		wrapped := fmt.Errorf("creating user: %w", sentinel)
		if !IsValidationError(wrapped) {
			t.Errorf("Expected wrapped %v to be a validation error", sentinel)
		}
	}

	if IsValidationError(nil) {
		t.Error("Expected nil to not be a validation error")
	}
	if IsValidationError(errors.New("connection refused")) {
		t.Error("Expected unrelated error to not be a validation error")
	}
}
