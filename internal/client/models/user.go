// Package models defines client-side data models used by the authdash CLI.
package models

import "time"

// Credentials is what the login form submits. It is built per submission and
// never persisted.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterCredentials is what the register form submits. ConfirmPassword is
// checked locally and never sent to the server.
type RegisterCredentials struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"-"`
}

// Credentials returns the part of the registration sent over the wire.
func (r RegisterCredentials) Credentials() Credentials {
	return Credentials{Email: r.Email, Password: r.Password}
}

// UserRecord is the profile returned by the API for an authenticated token.
type UserRecord struct {
	Email     string    `json:"email" yaml:"email"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// ValidationError is a single field-level failure reported on registration.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
