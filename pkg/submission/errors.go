package submission

import (
	"errors"
	"fmt"
)

// Error codes returned by the API
const (
	CodeEmailExists      = "EMAIL_EXISTS"
	CodeValidationFailed = "VALIDATION_FAILED"
)

// User-facing messages
const (
	ConflictMessage = "This email address is already registered. Please use a different email or log in."
	FailureMessage  = "Failed to submit form"
	SuccessMessage  = "Subscription created successfully"
)

// ConflictError reports that the email address is already registered
type ConflictError struct {
	Code    string
	Message string
	Err     error
}

func (e *ConflictError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

// NewConflictError creates a ConflictError for a duplicate email
func NewConflictError(err error) *ConflictError {
	return &ConflictError{Code: CodeEmailExists, Message: ConflictMessage, Err: err}
}

// SubmissionError is any non-conflict submission failure
type SubmissionError struct {
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// NewSubmissionError wraps err as a generic submission failure
func NewSubmissionError(err error) *SubmissionError {
	return &SubmissionError{Message: FailureMessage, Err: err}
}

// IsConflict reports whether err is, or wraps, a *ConflictError
func IsConflict(err error) bool {
	var conflict *ConflictError
	return errors.As(err, &conflict)
}
