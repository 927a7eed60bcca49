// Package router implements the navigation contract between the public
// views (login, register) and the protected dashboard.
package router

import (
	"sync"

	"github.com/dmitrijs2005/authdash/internal/client/session"
)

type Route string

const (
	RouteIndex     Route = "/"
	RouteLogin     Route = "/login"
	RouteRegister  Route = "/register"
	RouteDashboard Route = "/dashboard"
)

// Protected reports whether the route requires an authenticated session.
func (r Route) Protected() bool {
	return r == RouteDashboard
}

// Resolve applies the route guards: the index and unknown routes land on
// login, protected routes need a session and public routes are skipped when
// one exists.
func Resolve(requested Route, authenticated bool) Route {
	switch requested {
	case RouteLogin, RouteRegister:
		if authenticated {
			return RouteDashboard
		}
		return requested
	case RouteDashboard:
		if !authenticated {
			return RouteLogin
		}
		return requested
	default:
		return Resolve(RouteLogin, authenticated)
	}
}

// Router tracks the current route and re-applies the guards whenever the
// session changes.
type Router struct {
	mu        sync.Mutex
	current   Route
	observer  session.Observer
	listeners []func(Route)
	stop      func()
}

// New starts on the index route, resolved against the current session.
func New(observer session.Observer) *Router {
	r := &Router{
		observer: observer,
		current:  Resolve(RouteIndex, observer.State().IsAuthenticated()),
	}
	r.stop = observer.Subscribe(func(st session.State) {
		r.move(r.Current(), st.IsAuthenticated())
	})
	return r
}

func (r *Router) Current() Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Navigate moves to the guarded version of to.
func (r *Router) Navigate(to Route) {
	r.move(to, r.observer.State().IsAuthenticated())
}

// OnChange registers fn to be called with each new route.
func (r *Router) OnChange(fn func(Route)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// Close detaches the router from the session.
func (r *Router) Close() {
	if r.stop != nil {
		r.stop()
	}
}

func (r *Router) move(to Route, authenticated bool) {
	next := Resolve(to, authenticated)

	r.mu.Lock()
	if next == r.current {
		r.mu.Unlock()
		return
	}
	r.current = next
	listeners := append([]func(Route){}, r.listeners...)
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(next)
	}
}
