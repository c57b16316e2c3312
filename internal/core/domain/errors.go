package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is matched by every "target does not exist" error.
var ErrNotFound = errors.New("not found")

var (
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)
	ErrThoughtNotFound = fmt.Errorf("thought %w", ErrNotFound)
	ErrAuthorNotFound  = fmt.Errorf("author %w", ErrNotFound)
)

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("validation failed")

const (
	ReasonInvalid      = "invalid"
	ReasonDuplicateKey = "duplicate_key"
)

// FieldError describes one rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports a payload that failed field constraints. Reason is
// ReasonDuplicateKey when a uniqueness constraint was violated.
type ValidationError struct {
	Reason string
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	if len(msgs) == 0 {
		return ErrValidation.Error()
	}
	return ErrValidation.Error() + ": " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError builds an invalid-payload error for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Reason: ReasonInvalid,
		Fields: []FieldError{{Field: field, Message: message}},
	}
}

// NewDuplicateKeyError reports a uniqueness violation on field.
func NewDuplicateKeyError(field string) *ValidationError {
	return &ValidationError{
		Reason: ReasonDuplicateKey,
		Fields: []FieldError{{Field: field, Message: field + " already exists"}},
	}
}

// Multi-document protocols.
const (
	ProtocolCreateThought = "create_thought"
	ProtocolDeleteThought = "delete_thought"
	ProtocolDeleteUser    = "delete_user"
	ProtocolAddFriend     = "add_friend"
	ProtocolRemoveFriend  = "remove_friend"
)

// ProtocolError reports which step of a multi-document protocol failed and
// the partial state it left behind, if any.
type ProtocolError struct {
	Protocol string
	Step     string
	Partial  string
	Err      error
}

func (e *ProtocolError) Error() string {
	msg := e.Protocol + ": " + e.Step + ": " + e.Err.Error()
	if e.Partial != "" {
		msg += " (partial state: " + e.Partial + ")"
	}
	return msg
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}
