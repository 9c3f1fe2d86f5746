package errors

import (
	stderrors "errors"
	"fmt"
)

// Error method implementation for ValidationError
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Error method implementation for StorageError
func (e *StorageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

// Error returns the collaborator's message unchanged
func (e *StageError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s failed", e.Stage)
	}
	return e.Cause.Error()
}

func (e *StageError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewStorageError creates a new StorageError
func NewStorageError(message string, cause error) *StorageError {
	return &StorageError{
		Message: message,
		Cause:   cause,
	}
}

// NewStageError creates a new StageError
func NewStageError(stage Stage, cause error) *StageError {
	return &StageError{
		Stage: stage,
		Cause: cause,
	}
}

// StageOf reports the failed stage carried by err, if any
func StageOf(err error) (Stage, bool) {
	var stageErr *StageError
	if stderrors.As(err, &stageErr) {
		return stageErr.Stage, true
	}
	return "", false
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return stderrors.As(err, &validationErr)
}
