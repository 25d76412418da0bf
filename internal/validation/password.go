package validation

import (
	"errors"
)

// ValidatePassword only enforces what bcrypt needs: a non-empty password
// of at most 72 bytes (bcrypt silently truncates anything longer).
func ValidatePassword(password string) error {
	if password == "" {
		return errors.New("password is required")
	}

	if len(password) > 72 {
		return errors.New("password must not exceed 72 characters")
	}

	return nil
}
