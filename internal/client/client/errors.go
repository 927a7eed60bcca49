package client

import (
	"errors"
	"strings"

	"github.com/dmitrijs2005/authdash/internal/client/models"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
)

// Default messages used when the server gives no usable "message" field.
const (
	MsgLoginFailed    = "login failed, please try again"
	MsgRegisterFailed = "registration failed, please try again"
	MsgMeFailed       = "failed to fetch user data"
	MsgUsersFailed    = "failed to fetch users"
)

// AuthError is a network or server failure carrying a single user-facing
// message. Status is the HTTP status code, or 0 when no response arrived.
type AuthError struct {
	Message string
	Status  int
	Err     error
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// ValidationFailure is a registration rejection with per-field detail.
type ValidationFailure struct {
	Errors  []models.ValidationError
	Message string
}

func (e *ValidationFailure) Error() string {
	if e.Message != "" {
		return e.Message
	}
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
