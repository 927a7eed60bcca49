// Package cli provides the authdash terminal client: the view layer over the
// auth service.
//
// It wires configuration, local session storage, the API client and the
// router, then either runs one command (login, register, logout, whoami,
// users) or an interactive REPL whose prompt follows the current route:
// /login and /register while anonymous, /dashboard once signed in.
//
// Views never mutate the session. They call services.AuthService and read
// snapshots through session.Observer; route changes published by the router
// are rendered after each command.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See NewCommandApp for the command-line surface.
package cli
