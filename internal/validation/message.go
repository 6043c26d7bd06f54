package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/templui/heartroom/internal/model"
)

var (
	ErrEmptyContent   = errors.New("message content cannot be empty")
	ErrContentTooLong = fmt.Errorf("message content cannot exceed %d characters", model.MaxMessageLength)
)

// ValidateContent checks a chat message before it is trimmed and stored.
// Length is counted in characters of the raw input.
func ValidateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyContent
	}

	if utf8.RuneCountInString(content) > model.MaxMessageLength {
		return ErrContentTooLong
	}

	return nil
}

// RequireID rejects empty or whitespace-only identifiers.
func RequireID(id, field string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}
