package errors

import (
	"fmt"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	err := NewValidationError("price", "price cannot be negative")

	if err.Error() != "price: price cannot be negative" {
		t.Errorf("Expected field-prefixed message, got %q", err.Error())
	}
	if err.Details["price"] != "price cannot be negative" {
		t.Errorf("Expected details to carry the field message, got %v", err.Details)
	}
}

func TestIsHelpers(t *testing.T) {
	wrapped := fmt.Errorf("get product: %w", ErrNotFound)
	if !IsNotFound(wrapped) {
		t.Error("Expected wrapped ErrNotFound to be detected")
	}

	validation := fmt.Errorf("checkout: %w", NewValidationError("cart", "cart is empty"))
	if !IsValidation(validation) {
		t.Error("Expected wrapped validation error to be detected")
	}
	if IsValidation(wrapped) {
		t.Error("Expected ErrNotFound not to be a validation error")
	}
}
