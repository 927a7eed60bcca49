package services

import (
	"fmt"
	"slices"
	"sync"

	"github.com/dmitrijs2005/authdash/internal/client/models"
)

// Register form field names. They match the field names the API uses in
// validation errors.
const (
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
)

type formListener struct {
	id int
	fn func(field string)
}

// RegisterForm holds register input between edits and announces every change.
type RegisterForm struct {
	mu        sync.Mutex
	values    models.RegisterCredentials
	listeners []formListener
	nextID    int
}

func NewRegisterForm() *RegisterForm {
	return &RegisterForm{}
}

// Set updates field and notifies listeners. Unknown fields are rejected.
func (f *RegisterForm) Set(field, value string) error {
	f.mu.Lock()
	switch field {
	case FieldEmail:
		f.values.Email = value
	case FieldPassword:
		f.values.Password = value
	case FieldConfirmPassword:
		f.values.ConfirmPassword = value
	default:
		f.mu.Unlock()
		return fmt.Errorf("unknown register field %q", field)
	}
	listeners := slices.Clone(f.listeners)
	f.mu.Unlock()

	for _, l := range listeners {
		l.fn(field)
	}
	return nil
}

// OnChange registers fn to run after each Set.
func (f *RegisterForm) OnChange(fn func(field string)) (unsubscribe func()) {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.listeners = append(f.listeners, formListener{id: id, fn: fn})
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.listeners = slices.DeleteFunc(f.listeners, func(l formListener) bool { return l.id == id })
	}
}

func (f *RegisterForm) Credentials() models.RegisterCredentials {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values
}

// Reset empties the form without notifying listeners.
func (f *RegisterForm) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values = models.RegisterCredentials{}
}
