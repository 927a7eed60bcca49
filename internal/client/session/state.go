// Package session holds the client's authentication state: the bearer token,
// the hydrated user record and the status of the flow that produced them.
//
// The Store is the single owner of that state. Only the auth service mutates
// it; views read snapshots through the Observer interface and react to
// changes via Subscribe.
package session

import (
	"slices"

	"github.com/dmitrijs2005/authdash/internal/client/models"
)

// Phase is the state of the authentication state machine.
type Phase string

const (
	PhaseAnonymous      Phase = "anonymous"
	PhaseAuthenticating Phase = "authenticating"
	PhaseAuthenticated  Phase = "authenticated"
	PhaseError          Phase = "error"
)

// State is an immutable snapshot of the session.
type State struct {
	Phase            Phase
	Token            string
	User             *models.UserRecord
	Loading          bool
	LastError        string
	ValidationErrors []models.ValidationError
}

// IsAuthenticated reports whether both a token and a user are present.
func (s State) IsAuthenticated() bool {
	return s.Token != "" && s.User != nil
}

// FieldError returns the validation message for field, or "".
func (s State) FieldError(field string) string {
	for _, ve := range s.ValidationErrors {
		if ve.Field == field {
			return ve.Message
		}
	}
	return ""
}

func (s State) clone() State {
	out := s
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	out.ValidationErrors = slices.Clone(s.ValidationErrors)
	return out
}
