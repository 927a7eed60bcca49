package services

import "errors"

var (
	// ErrBusy is returned when another login or register flow is in flight.
	ErrBusy = errors.New("another authentication is in progress")
	// ErrAlreadyAuthenticated is returned by login and register when a
	// session already exists. Log out first.
	ErrAlreadyAuthenticated = errors.New("already signed in")
	ErrNotAuthenticated     = errors.New("not signed in")
	// ErrInterrupted is returned by a login or register that finished after
	// a logout. The session stays signed out.
	ErrInterrupted = errors.New("signed out before sign-in finished")
)

// MsgPasswordMismatch is reported when the two register passwords differ.
const MsgPasswordMismatch = "passwords do not match"

// LocalValidationError is a form problem caught before any network call.
type LocalValidationError struct {
	Field   string
	Message string
}

func (e *LocalValidationError) Error() string {
	return e.Message
}
