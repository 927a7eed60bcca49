package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Dashboard(ctx context.Context) error
	Users(ctx context.Context) error
	Whoami(ctx context.Context) error
	refresh(ctx context.Context)
}

// runREPL starts a simple read–eval–print loop for the authdash CLI.
//
// It reads a line from reader, writes the prompt and its own notices to out
// (the writer the views print to), parses the first token as the command, and
// dispatches to methods on 'a'. After every command the current view is
// re-rendered if the route changed. The loop exits on EOF, on context
// cancellation, or when the user types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help           show available commands
//	  - login          sign in
//	  - register       create an account
//	  - whoami         show who is signed in
//	  - exit | quit    leave the program
//
//	Logged in:
//	  - help           show available commands
//	  - dashboard      show the account
//	  - users          list all users
//	  - whoami         show who is signed in
//	  - logout         sign out
//	  - exit | quit    leave the program
//
// Errors returned by command handlers are ignored here; handlers print their
// own failures. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, out io.Writer) {
	for ctx.Err() == nil {
		fmt.Fprintf(out, "authdash %s> ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(out, "Available commands: dashboard, users, whoami, logout, exit")
			} else {
				fmt.Fprintln(out, "Available commands: login, register, whoami, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "register":
			_ = a.Register(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "dashboard":
			_ = a.Dashboard(ctx)

		case "users":
			_ = a.Users(ctx)

		case "whoami":
			_ = a.Whoami(ctx)

		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return

		default:
			fmt.Fprintln(out, "Unknown command:", cmd)
		}

		a.refresh(ctx)
	}
}
