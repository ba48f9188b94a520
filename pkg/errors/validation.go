package errors

import (
	"strings"
	"unicode"
)

// maxIDLength bounds identifiers accepted at the engine boundary.
const maxIDLength = 128

// ValidateID validates an opaque identifier for a task, resource or project.
// kind names the entity in the error message ("task", "resource", ...).
//
// Validation rules:
//   - ID cannot be empty or only whitespace
//   - Maximum length of 128 characters
//   - No control characters
func ValidateID(kind, id string) error {
	if strings.TrimSpace(id) == "" {
		return New(ErrCodeInvalidInput, "%s id cannot be empty", kind)
	}
	if len(id) > maxIDLength {
		return New(ErrCodeInvalidInput, "%s id too long (max %d characters)", kind, maxIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s id contains invalid control characters", kind)
		}
	}
	return nil
}

// ValidateDuration validates a task duration in days.
func ValidateDuration(days int) error {
	if days <= 0 {
		return New(ErrCodeInvalidInput, "duration must be a positive number of days, got %d", days)
	}
	return nil
}

// ValidateQuantity validates a requested resource quantity.
func ValidateQuantity(quantity int) error {
	if quantity <= 0 {
		return New(ErrCodeInvalidInput, "quantity must be positive, got %d", quantity)
	}
	return nil
}

// ValidateCapacity validates a resource capacity.
func ValidateCapacity(capacity int) error {
	if capacity <= 0 {
		return New(ErrCodeInvalidInput, "capacity must be positive, got %d", capacity)
	}
	return nil
}
