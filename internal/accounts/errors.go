package accounts

import (
	"errors"
	"strings"
)

var (
	ErrEmailRequired      = errors.New("email is required")
	ErrEmailInvalid       = errors.New("please enter a valid email")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
	ErrNameRequired       = errors.New("name is required")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError collects every form problem so they can be shown together.
type ValidationError struct {
	Problems []error
}

func (e *ValidationError) Error() string {
	return "accounts: " + strings.Join(e.Messages(), "; ")
}

// Unwrap lets errors.Is match individual problems.
func (e *ValidationError) Unwrap() []error {
	return e.Problems
}

// Messages returns the text of each problem.
func (e *ValidationError) Messages() []string {
	out := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		out = append(out, p.Error())
	}
	return out
}
