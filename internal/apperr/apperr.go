// Package apperr classifies failures so transports can map them to
// statuses and users can be shown a meaningful message.
package apperr

import (
	"errors"
)

type Kind string

const (
	KindValidation      Kind = "validation"
	KindSelfHeart       Kind = "self_heart"
	KindDuplicateHeart  Kind = "duplicate_heart"
	KindBackend         Kind = "backend"
	KindNotFound        Kind = "not_found"
	KindEquipLimit      Kind = "equip_limit"
	KindLocked          Kind = "locked"
	KindUnauthenticated Kind = "unauthenticated"
	KindConflict        Kind = "conflict"
)

type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil && e.Message == "" {
		return e.Cause.Error()
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func Validation(message string) *Error {
	return New(KindValidation, message)
}

func Backend(message string, cause error) *Error {
	return Wrap(KindBackend, message, cause)
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

// KindOf returns the kind of the first *Error in err's chain.
// Unclassified errors are backend failures.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindBackend
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsDuplicate reports whether err is a rejected repeat heart.
func IsDuplicate(err error) bool {
	return Is(err, KindDuplicateHeart)
}

// UserMessage returns the text safe to show to an end user.
func UserMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return "something went wrong"
}
