package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrActiveRequestExists = errors.New("user already has an open membership request")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrForbidden           = errors.New("forbidden")
	// ErrUpstream marks failures talking to GitHub.
	ErrUpstream            = errors.New("upstream service failure")
)

// TransitionError describes a rejected status change. It matches ErrInvalidTransition.
type TransitionError struct {
	From MembershipStatus
	To   MembershipStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move membership request from %q to %q", e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// ValidationError is returned for malformed input before any store or network call.
// Fields carries every failing field when more than one was checked.
type ValidationError struct {
	Field   string
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
