package cli

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/authdash/internal/client/output"
	"github.com/dmitrijs2005/authdash/internal/client/services"
	"github.com/dmitrijs2005/authdash/internal/jwtx"
)

// Dashboard renders the signed-in user's account.
func (a *App) Dashboard(ctx context.Context) error {
	st := a.session.State()
	if !st.IsAuthenticated() {
		a.println("Please sign in first.")
		return services.ErrNotAuthenticated
	}

	a.println("Dashboard")
	a.printf("  Email:          %s\n", st.User.Email)
	a.printf("  Member since:   %s\n", a.formatTime(st.User.CreatedAt))

	if info, err := jwtx.Inspect(st.Token); err == nil && !info.ExpiresAt.IsZero() {
		now := a.now()
		if info.Expired(now) {
			a.printf("  Token expired:  %s\n", a.formatTime(info.ExpiresAt))
		} else {
			a.printf("  Token expires:  %s (in %s)\n", a.formatTime(info.ExpiresAt),
				info.ExpiresAt.Sub(now).Round(time.Minute))
		}
	}

	a.println("Type 'users' to see all users.")
	return nil
}

// Users lists every account known to the API in the configured format.
func (a *App) Users(ctx context.Context) error {
	users, err := a.auth.ListUsers(ctx)
	if err != nil {
		if errors.Is(err, services.ErrNotAuthenticated) {
			a.println("Please sign in first.")
		} else {
			a.println("Error:", err.Error())
		}
		return err
	}
	for i := range users {
		users[i].CreatedAt = users[i].CreatedAt.In(a.loc)
	}
	return a.formatter.Format(a.out, users)
}

// Whoami prints who the session belongs to.
func (a *App) Whoami(ctx context.Context) error {
	st := a.session.State()
	if !st.IsAuthenticated() {
		a.println("Not signed in.")
		return nil
	}
	a.println(st.User.Email)
	return nil
}

func (a *App) formatTime(t time.Time) string {
	return t.In(a.loc).Format(output.DateLayout)
}
