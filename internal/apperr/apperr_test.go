package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"plain error", errors.New("boom"), KindBackend},
		{"direct", Validation("empty"), KindValidation},
		{"wrapped", fmt.Errorf("outer: %w", New(KindSelfHeart, "no")), KindSelfHeart},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Backend("failed to load messages", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to load messages: connection refused", err.Error())
	assert.True(t, Is(err, KindBackend))
	assert.False(t, Is(err, KindNotFound))
}

func TestIsDuplicate(t *testing.T) {
	dup := Wrap(KindDuplicateHeart, "already hearted", errors.New("23505"))

	assert.True(t, IsDuplicate(dup))
	assert.True(t, IsDuplicate(fmt.Errorf("give heart: %w", dup)))
	assert.False(t, IsDuplicate(Backend("insert failed", nil)))
	assert.False(t, IsDuplicate(nil))
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "message is empty", UserMessage(Validation("message is empty")))
	assert.Equal(t, "something went wrong", UserMessage(errors.New("driver: bad conn")))
}
