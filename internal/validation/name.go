package validation

import (
	"errors"
	"strings"
)

// ValidateName validates a contact person or operator name
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)

	if trimmed == "" {
		return errors.New("name is required")
	}

	if len(trimmed) > 100 {
		return errors.New("name is too long (max 100 characters)")
	}

	return nil
}

// ValidateUsername validates a login name
func ValidateUsername(username string) error {
	trimmed := strings.TrimSpace(username)

	if trimmed == "" {
		return errors.New("username is required")
	}

	if len(trimmed) > 50 {
		return errors.New("username is too long (max 50 characters)")
	}

	return nil
}
