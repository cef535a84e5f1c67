// Package validator provides input validation for the application
package validator

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrInvalidID is returned when an identity is not a well-formed record id
var ErrInvalidID = errors.New("invalid id")

// ValidateID validates that id is a record identity issued by the store
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty", ErrInvalidID)
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}
