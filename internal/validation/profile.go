package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/templui/heartroom/internal/model"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 30
)

// ValidateUsername validates the display name chosen at registration
func ValidateUsername(username string) error {
	trimmed := strings.TrimSpace(username)

	if trimmed == "" {
		return errors.New("username is required")
	}

	n := utf8.RuneCountInString(trimmed)
	if n < minUsernameLength || n > maxUsernameLength {
		return fmt.Errorf("username must be between %d and %d characters", minUsernameLength, maxUsernameLength)
	}

	if strings.ContainsAny(trimmed, " \t\n") {
		return errors.New("username cannot contain spaces")
	}

	return nil
}

// ValidateDescription checks the trimmed profile description. Empty is allowed.
func ValidateDescription(description string) error {
	if utf8.RuneCountInString(strings.TrimSpace(description)) > model.MaxDescriptionLength {
		return fmt.Errorf("description cannot exceed %d characters", model.MaxDescriptionLength)
	}
	return nil
}
