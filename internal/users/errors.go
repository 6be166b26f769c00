package users

import (
	"errors"
	"fmt"
)

// UserError represents errors related to user operations
type UserError struct {
	Type    string
	Message string
	Cause   error
}

func (e *UserError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("user error [%s]: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("user error [%s]: %s", e.Type, e.Message)
}

func (e *UserError) Unwrap() error {
	return e.Cause
}

// User error types
const (
	UserErrorTypeNotFound         = "not_found"
	UserErrorTypeEmailExists      = "email_exists"
	UserErrorTypeValidationFailed = "validation_failed"
	UserErrorTypeStorageFailed    = "storage_failed"
)

// NewUserNotFoundError creates an error for when a user is not found
func NewUserNotFoundError(id int64) *UserError {
	return &UserError{
		Type:    UserErrorTypeNotFound,
		Message: fmt.Sprintf("user with id %d not found", id),
	}
}

// NewEmailExistsError creates an error for when a user's email is already taken
func NewEmailExistsError(email string) *UserError {
	return &UserError{
		Type:    UserErrorTypeEmailExists,
		Message: fmt.Sprintf("email %s is already registered", email),
	}
}

// NewUserValidationError creates an error for user validation failures
func NewUserValidationError(field, message string) *UserError {
	return &UserError{
		Type:    UserErrorTypeValidationFailed,
		Message: fmt.Sprintf("field '%s': %s", field, message),
	}
}

// NewUserStorageError creates an error for storage-level failures
func NewUserStorageError(operation string, cause error) *UserError {
	return &UserError{
		Type:    UserErrorTypeStorageFailed,
		Message: fmt.Sprintf("storage operation %s failed", operation),
		Cause:   cause,
	}
}

func isErrorType(err error, errType string) bool {
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.Type == errType
	}
	return false
}

// IsNotFound reports whether err is a user-not-found error
func IsNotFound(err error) bool {
	return isErrorType(err, UserErrorTypeNotFound)
}

// IsEmailExists reports whether err is a duplicate-email conflict
func IsEmailExists(err error) bool {
	return isErrorType(err, UserErrorTypeEmailExists)
}

// IsValidation reports whether err is a validation failure
func IsValidation(err error) bool {
	return isErrorType(err, UserErrorTypeValidationFailed)
}
