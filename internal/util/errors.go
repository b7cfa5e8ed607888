package util

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrAuth              = errors.New("invalid username or password")
	ErrNotFound          = errors.New("resource not found")
	ErrUnauthorized      = errors.New("authentication required")
	ErrPaymentInitiation = errors.New("payment initiation failed")
	ErrPaymentProvider   = errors.New("payment provider error")

	ErrUsernameTaken     = NewValidationError("username", "A user with that username already exists.")
	ErrPasswordMismatch  = NewValidationError("password2", "The two password fields didn't match.")
	ErrUnknownOption     = NewValidationError("answer", "Submitted answer does not belong to this exam.")
	ErrDuplicateAnswer   = NewValidationError("answer", "Each question can only be answered once.")
	ErrInvalidCorrectSet = NewValidationError("options", "Each question must have exactly one correct option.")
)

// ValidationError is a form or input error shown inline next to Field.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	if target == ErrValidation {
		return true
	}
	t, ok := target.(*ValidationError)
	return ok && t.Field == e.Field && t.Message == e.Message
}

// PaymentError wraps a gateway failure. Kind is ErrPaymentInitiation or
// ErrPaymentProvider.
type PaymentError struct {
	Kind    error
	OrderID string
	Err     error
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("%v (order %s): %v", e.Kind, e.OrderID, e.Err)
}

func (e *PaymentError) Is(target error) bool {
	return target == e.Kind
}

func (e *PaymentError) Unwrap() error {
	return e.Err
}

// NotFoundf returns an error wrapping ErrNotFound.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}
