package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn  bool
	calls     []string
	refreshes int
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(context.Context) error {
	f.calls = append(f.calls, "register")
	return nil
}
func (f *fakeExec) Login(context.Context) error {
	f.calls = append(f.calls, "login")
	f.loggedIn = true
	return nil
}
func (f *fakeExec) Logout(context.Context) error {
	f.calls = append(f.calls, "logout")
	f.loggedIn = false
	return nil
}
func (f *fakeExec) Dashboard(context.Context) error {
	f.calls = append(f.calls, "dashboard")
	return nil
}
func (f *fakeExec) Users(context.Context) error { f.calls = append(f.calls, "users"); return nil }
func (f *fakeExec) Whoami(context.Context) error {
	f.calls = append(f.calls, "whoami")
	return nil
}
func (f *fakeExec) refresh(context.Context) { f.refreshes++ }

func TestRunREPL_DispatchesCommands(t *testing.T) {
	input := strings.Join([]string{
		"help",
		"login",
		"help",
		"dashboard",
		"",
		"users",
		"whoami",
		"logout",
		"register",
		"foobar",
		"exit",
		"login",
	}, "\n")

	var out bytes.Buffer
	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "(status)" }, rdr(input), &out)

	assert.Equal(t, []string{"login", "dashboard", "users", "whoami", "logout", "register"}, exec.calls)
	assert.Equal(t, 9, exec.refreshes, "one refresh per dispatched command")

	got := out.String()
	assert.True(t, strings.HasPrefix(got, "authdash (status)> Available commands: login, register, whoami, exit\n"))
	assert.Contains(t, got, "Available commands: dashboard, users, whoami, logout, exit")
	assert.Contains(t, got, "Unknown command: foobar")
	assert.True(t, strings.HasSuffix(got, "authdash (status)> Bye!\n"))
}

func TestRunREPL_StopsAtEOF(t *testing.T) {
	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, rdr("whoami"), io.Discard)

	assert.Equal(t, []string{"whoami"}, exec.calls, "a last line without newline still runs")
}

func TestRunREPL_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	exec := &fakeExec{}
	runREPL(ctx, exec, func() string { return "" }, rdr("login\n"), &out)
	assert.Empty(t, exec.calls)
	assert.Empty(t, out.String())
}
