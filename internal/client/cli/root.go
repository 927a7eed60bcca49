package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/authdash/internal/client/router"
)

func (a *App) getStatus() string {
	s := string(a.router.Current())
	if u := a.session.State().User; u != nil {
		s = u.Email + " " + s
	}
	return fmt.Sprintf("(%s)", s)
}

// Run shows the current view and runs the REPL until the user exits. Call
// Start first to restore a stored session.
func (a *App) Run(ctx context.Context) error {
	a.println("Welcome to authdash (type 'help' for commands)")
	a.routeChanged.Store(false)
	a.showView(ctx)

	runREPL(ctx, a, a.getStatus, a.reader, a.out)
	return nil
}

// open moves to a view the user asked for. It is not re-rendered afterwards.
func (a *App) open(to router.Route) {
	a.router.Navigate(to)
	a.routeChanged.Store(false)
}

// refresh renders the current view if a session change moved the router.
func (a *App) refresh(ctx context.Context) {
	if a.routeChanged.Swap(false) {
		a.showView(ctx)
	}
}

func (a *App) showView(ctx context.Context) {
	switch a.router.Current() {
	case router.RouteDashboard:
		_ = a.Dashboard(ctx)
	case router.RouteLogin:
		a.println("Please sign in: type 'login', or 'register' to create an account.")
	}
}
