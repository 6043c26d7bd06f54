package validation

import (
	"errors"
	"strings"
)

var weakPasswords = []string{"password", "123456", "qwerty", "letmein", "heartroom"}

// ValidatePassword validates password strength.
// bcrypt ignores everything past 72 bytes, so longer passwords are rejected.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}

	if len(password) > 72 {
		return errors.New("password must not exceed 72 characters")
	}

	lower := strings.ToLower(password)
	for _, weak := range weakPasswords {
		if strings.Contains(lower, weak) {
			return errors.New("password is too common, please choose a stronger one")
		}
	}

	return nil
}
