// Package services contains application services for the authdash client.
// This file defines the auth service, the only writer of the session store:
// login, register, logout, silent session restore and the users listing.
package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/authdash/internal/client/client"
	"github.com/dmitrijs2005/authdash/internal/client/models"
	"github.com/dmitrijs2005/authdash/internal/client/router"
	"github.com/dmitrijs2005/authdash/internal/client/session"
	"github.com/dmitrijs2005/authdash/internal/logging"
)

// MsgSessionNotSaved is reported when the token could not be persisted.
const MsgSessionNotSaved = "could not save the session, please try again"

// Navigator receives the route the service wants the view layer to show.
type Navigator interface {
	Navigate(to router.Route)
}

// NavigatorFunc adapts a plain function to Navigator.
type NavigatorFunc func(to router.Route)

func (f NavigatorFunc) Navigate(to router.Route) { f(to) }

// AuthService drives the session state machine for the CLI.
//
// Contract:
//   - Bootstrap: restore a stored token by fetching its user; any failure
//     clears the session silently.
//   - Login/Register: one flow at a time (ErrBusy otherwise); on success the
//     session is saved and the dashboard is requested, on failure the store
//     is cleared and holds the error. A flow overtaken by Logout returns
//     ErrInterrupted and changes nothing.
//   - Logout: always succeeds, ends any flow in flight and requests the
//     login view.
//   - ListUsers: fetch all users with the current token.
//   - WatchRegisterForm: clear shown errors whenever a register field changes.
//
// Failures are recorded in the session state and also returned, so callers
// can branch with errors.Is / errors.As.
type AuthService interface {
	Bootstrap(ctx context.Context) error
	Login(ctx context.Context, creds models.Credentials) error
	Register(ctx context.Context, creds models.RegisterCredentials) error
	Logout(ctx context.Context)
	ListUsers(ctx context.Context) ([]models.UserRecord, error)
	WatchRegisterForm(form *RegisterForm) (stop func())
	Session() session.Observer
}

type authService struct {
	client client.Client
	store  *session.Store
	nav    Navigator
	log    logging.Logger
}

// NewAuthService constructs an AuthService. It performs no I/O; call
// Bootstrap once the view layer is ready to follow navigation.
func NewAuthService(c client.Client, store *session.Store, nav Navigator, log logging.Logger) AuthService {
	return &authService{client: c, store: store, nav: nav, log: log}
}

func (a *authService) Session() session.Observer {
	return a.store
}

func (a *authService) Bootstrap(ctx context.Context) error {
	token, err := a.store.StoredToken(ctx)
	if errors.Is(err, session.ErrNoToken) {
		a.nav.Navigate(router.RouteLogin)
		return nil
	}
	if err != nil {
		a.log.Warn(ctx, "cannot read stored session", "error", err)
		a.Logout(ctx)
		return nil
	}

	flow, err := a.begin()
	if errors.Is(err, ErrAlreadyAuthenticated) {
		a.nav.Navigate(router.RouteDashboard)
		return nil
	}
	if err != nil {
		return err
	}

	user, err := a.client.GetCurrentUser(ctx, token)
	if err != nil {
		a.log.Debug(ctx, "stored session rejected", "error", err)
		a.discard(ctx, flow)
		return nil
	}
	err = a.store.SetSession(ctx, flow, token, user)
	if errors.Is(err, session.ErrFlowEnded) {
		a.log.Debug(ctx, "session restore superseded")
		return nil
	}
	if err != nil {
		a.log.Warn(ctx, "cannot restore session", "error", err)
		a.discard(ctx, flow)
		return nil
	}

	a.log.Info(ctx, "session restored", "email", user.Email)
	a.nav.Navigate(router.RouteDashboard)
	return nil
}

// discard drops a restore that failed, like a logout, unless the flow was
// already superseded.
func (a *authService) discard(ctx context.Context, flow session.Flow) {
	err := a.store.Cancel(ctx, flow)
	if errors.Is(err, session.ErrFlowEnded) {
		return
	}
	if err != nil {
		a.log.Error(ctx, "failed to wipe stored session", "error", err)
	}
	a.nav.Navigate(router.RouteLogin)
}

func (a *authService) Login(ctx context.Context, creds models.Credentials) error {
	flow, err := a.begin()
	if err != nil {
		return err
	}

	token, err := a.client.Login(ctx, creds)
	if err != nil {
		return a.reject(ctx, flow, "login", err)
	}
	return a.establish(ctx, flow, "login", token)
}

func (a *authService) Register(ctx context.Context, creds models.RegisterCredentials) error {
	flow, err := a.begin()
	if err != nil {
		return err
	}

	if creds.Password != creds.ConfirmPassword {
		lerr := &LocalValidationError{Field: FieldConfirmPassword, Message: MsgPasswordMismatch}
		if err := a.store.Fail(flow, lerr.Message); err != nil {
			return ErrInterrupted
		}
		return lerr
	}

	token, err := a.client.Register(ctx, creds.Credentials())
	if err != nil {
		return a.reject(ctx, flow, "register", err)
	}
	return a.establish(ctx, flow, "register", token)
}

// begin starts a flow, mapping the store's refusals to service errors.
func (a *authService) begin() (session.Flow, error) {
	flow, err := a.store.BeginAuth()
	switch {
	case errors.Is(err, session.ErrAuthenticated):
		return 0, ErrAlreadyAuthenticated
	case err != nil:
		return 0, ErrBusy
	}
	return flow, nil
}

func (a *authService) Logout(ctx context.Context) {
	if err := a.store.ClearSession(ctx); err != nil {
		a.log.Error(ctx, "failed to wipe stored session", "error", err)
	}
	a.nav.Navigate(router.RouteLogin)
}

func (a *authService) ListUsers(ctx context.Context) ([]models.UserRecord, error) {
	token := a.store.Token()
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	return a.client.ListUsers(ctx, token)
}

func (a *authService) WatchRegisterForm(form *RegisterForm) (stop func()) {
	return form.OnChange(func(string) {
		a.store.ClearErrors()
	})
}

// establish hydrates the user behind a freshly issued token and publishes
// the session. Until it returns the token lives only in this frame.
func (a *authService) establish(ctx context.Context, flow session.Flow, name, token string) error {
	user, err := a.client.GetCurrentUser(ctx, token)
	if err != nil {
		return a.reject(ctx, flow, name, err)
	}
	err = a.store.SetSession(ctx, flow, token, user)
	if errors.Is(err, session.ErrFlowEnded) {
		a.log.Info(ctx, name+" discarded, signed out meanwhile", "email", user.Email)
		return ErrInterrupted
	}
	if err != nil {
		return a.reject(ctx, flow, name, &client.AuthError{Message: MsgSessionNotSaved, Err: err})
	}

	a.log.Info(ctx, name+" succeeded", "email", user.Email)
	a.nav.Navigate(router.RouteDashboard)
	return nil
}

// reject records err in the store, wiping any session, and returns it.
// A superseded flow leaves the store alone.
func (a *authService) reject(ctx context.Context, flow session.Flow, name string, err error) error {
	var (
		vf       *client.ValidationFailure
		clearErr error
	)
	if errors.As(err, &vf) {
		clearErr = a.store.Reject(ctx, flow, vf.Message, vf.Errors)
	} else {
		clearErr = a.store.Reject(ctx, flow, userMessage(err), nil)
	}
	switch {
	case errors.Is(clearErr, session.ErrFlowEnded):
		a.log.Info(ctx, name+" discarded, signed out meanwhile", "error", err)
		return ErrInterrupted
	case clearErr != nil:
		a.log.Error(ctx, "failed to wipe stored session", "error", clearErr)
	}

	a.log.Warn(ctx, name+" failed", "error", err)
	return err
}

func userMessage(err error) string {
	var ae *client.AuthError
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	return err.Error()
}
