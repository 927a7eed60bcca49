package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/authdash/internal/client/models"
	"github.com/dmitrijs2005/authdash/internal/client/router"
	"github.com/dmitrijs2005/authdash/internal/client/services"
	"github.com/dmitrijs2005/authdash/internal/common"
)

// Login shows the login view, prompts for credentials and signs in.
//
// The password is wiped before returning. Failures are printed from the
// session state and returned unchanged.
func (a *App) Login(ctx context.Context) error {
	if a.isLoggedIn() {
		return a.alreadySignedIn()
	}
	a.open(router.RouteLogin)

	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out, "Password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	err = a.auth.Login(ctx, models.Credentials{Email: email, Password: string(password)})
	if err != nil {
		a.reportFailure(err)
		return err
	}

	a.println("Signed in. Welcome!")
	return nil
}

// Register shows the register view and fills the register form field by
// field. Editing a field clears errors left by the previous attempt.
func (a *App) Register(ctx context.Context) error {
	if a.isLoggedIn() {
		return a.alreadySignedIn()
	}
	a.open(router.RouteRegister)

	form := services.NewRegisterForm()
	stop := a.auth.WatchRegisterForm(form)
	defer stop()

	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	if err := form.Set(services.FieldEmail, email); err != nil {
		return err
	}

	password, err := getPassword(a.out, "Password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	if err := form.Set(services.FieldPassword, string(password)); err != nil {
		return err
	}

	confirm, err := getPassword(a.out, "Confirm password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)
	if err := form.Set(services.FieldConfirmPassword, string(confirm)); err != nil {
		return err
	}

	err = a.auth.Register(ctx, form.Credentials())
	form.Reset()
	if err != nil {
		a.reportFailure(err)
		return err
	}

	a.println("Account created. Welcome!")
	return nil
}

// Logout ends the session. It cannot fail.
func (a *App) Logout(ctx context.Context) error {
	a.auth.Logout(ctx)
	a.println("Signed out.")
	return nil
}

func (a *App) alreadySignedIn() error {
	if u := a.session.State().User; u != nil {
		a.printf("Already signed in as %s. Log out first.\n", u.Email)
	}
	return services.ErrAlreadyAuthenticated
}

// reportFailure renders the outcome of a failed flow: field errors beneath
// their field names, anything else as a single line.
func (a *App) reportFailure(err error) {
	if errors.Is(err, services.ErrBusy) {
		a.println("Please wait, another sign-in is in progress.")
		return
	}
	if errors.Is(err, services.ErrInterrupted) {
		a.println("Signed out before sign-in finished.")
		return
	}

	st := a.session.State()
	if len(st.ValidationErrors) > 0 {
		if st.LastError != "" {
			a.println("Error:", st.LastError)
		}
		for _, ve := range st.ValidationErrors {
			a.printf("  %s: %s\n", ve.Field, ve.Message)
		}
		return
	}

	msg := st.LastError
	if msg == "" {
		msg = err.Error()
	}
	a.println("Error:", msg)
}
