package types

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// checkRequired rejects a blank required field.
func checkRequired(key, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", ErrValidation, key)
	}
	return nil
}

// checkOptional rejects a patch field that is present but blank.
func checkOptional(key string, value *string) error {
	if value != nil && strings.TrimSpace(*value) == "" {
		return fmt.Errorf("%w: %s must not be empty", ErrValidation, key)
	}
	return nil
}

// checkUUID rejects a reference that is not a UUID.
func checkUUID(key, value string) error {
	if err := checkRequired(key, value); err != nil {
		return err
	}
	if !IsID(value) {
		return fmt.Errorf("%w: %s must be a UUID", ErrValidation, key)
	}
	return nil
}

// IsID reports whether s has the shape of a store-generated identity.
func IsID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil && len(s) == 36
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// NewID generates a UUID v7 for entity IDs, falling back to a v4 UUID if
// v7 generation fails.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
