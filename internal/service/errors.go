package service

import (
	"errors"
	"fmt"

	"user_auth/internal/repository"
	"user_auth/internal/validator"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrNotAuthenticated   = errors.New("you are not logged in")
	ErrForbidden          = errors.New("you do not have permission to perform this action")
	ErrProfileNotFound    = errors.New("profile not found")
)

// ValidationError carries per-field failures back to the caller
type ValidationError struct {
	Fields validator.Errors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

// ConflictError reports a uniqueness violation only detected by the database
type ConflictError struct {
	Field   string
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// asConflict turns duplicate errors from the store into a ConflictError on
// the given field names and passes anything else through
func asConflict(err error, emailField, phoneField string) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateEmail):
		return &ConflictError{Field: emailField, Message: repository.ErrDuplicateEmail.Error()}
	case errors.Is(err, repository.ErrDuplicatePhone):
		return &ConflictError{Field: phoneField, Message: repository.ErrDuplicatePhone.Error()}
	}
	return err
}
