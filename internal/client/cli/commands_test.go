package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	urfave "github.com/urfave/cli/v2"

	"github.com/dmitrijs2005/authdash/internal/client/config"
	"github.com/dmitrijs2005/authdash/internal/testutil/fakeapi"
)

// captureStreams redirects the App's terminal output and silences logs.
func captureStreams(t *testing.T) *bytes.Buffer {
	t.Helper()
	var out bytes.Buffer
	origOut, origErr := stdout, stderr
	stdout, stderr = &out, io.Discard
	t.Cleanup(func() {
		stdout, stderr = origOut, origErr
	})
	return &out
}

func runCommand(t *testing.T, args ...string) error {
	t.Helper()
	return NewCommandApp().Run(append([]string{"authdash"}, args...))
}

func TestNewCommandApp_Surface(t *testing.T) {
	app := NewCommandApp()
	assert.Equal(t, "authdash", app.Name)

	var commands []string
	for _, c := range app.Commands {
		commands = append(commands, c.Name)
	}
	assert.Equal(t, []string{"shell", "login", "register", "logout", "whoami", "dashboard", "users"}, commands)

	var flags []string
	for _, f := range app.Flags {
		flags = append(flags, f.Names()[0])
	}
	assert.Equal(t, []string{"config", "server", "base-path", "storage", "timeout", "log-level", "output"}, flags)
}

func TestCommands_SessionSurvivesBetweenRuns(t *testing.T) {
	out := captureStreams(t)
	api := fakeapi.New(t)
	api.AddUser(t, "a@b.com", "secret", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	api.AddUser(t, "c@d.com", "secret", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	storage := filepath.Join(t.TempDir(), "state", "session.db")
	common := []string{"-a", api.URL, "--storage", storage}

	stubInputs(t, "a@b.com", "secret")
	require.NoError(t, runCommand(t, append(common, "login")...))
	assert.Contains(t, out.String(), "Signed in. Welcome!")
	assert.Contains(t, out.String(), "Dashboard")

	out.Reset()
	require.NoError(t, runCommand(t, append(common, "whoami")...))
	assert.Equal(t, "a@b.com\n", out.String())

	out.Reset()
	require.NoError(t, runCommand(t, append(common, "-o", "json", "users")...))
	var users []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &users))
	require.Len(t, users, 2)
	assert.Equal(t, "c@d.com", users[1]["email"])

	out.Reset()
	require.NoError(t, runCommand(t, append(common, "logout")...))
	assert.Equal(t, "Signed out.\n", out.String())

	out.Reset()
	require.NoError(t, runCommand(t, append(common, "whoami")...))
	assert.Equal(t, "Not signed in.\n", out.String())
}

func TestCommands_FailureIsReported(t *testing.T) {
	out := captureStreams(t)
	api := fakeapi.New(t)
	storage := filepath.Join(t.TempDir(), "session.db")

	stubInputs(t, "a@b.com", "wrong")
	err := runCommand(t, "-a", api.URL, "--storage", storage, "login")
	require.ErrorIs(t, err, ErrReported)
	assert.Contains(t, out.String(), "Error: Invalid credentials")

	err = runCommand(t, "-a", api.URL, "--storage", storage, "users")
	require.ErrorIs(t, err, ErrReported)
}

func TestCommands_BadSettingsAreNotReported(t *testing.T) {
	captureStreams(t)
	storage := filepath.Join(t.TempDir(), "session.db")

	err := runCommand(t, "--storage", storage, "--log-level", "loud", "whoami")
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrReported))

	err = runCommand(t, "--storage", storage, "-o", "xml", "whoami")
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrReported))
}

func TestLoadSettings_Precedence(t *testing.T) {
	captureStreams(t)

	path := filepath.Join(t.TempDir(), "cfg.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"api_base_url": "http://from-file:1",
		"base_path": "/file/auth",
		"output": "json"
	}`), 0o600))
	t.Setenv("AUTHDASH_OUTPUT", "yaml")

	var got *config.Config
	app := NewCommandApp()
	app.Commands = append(app.Commands, &urfave.Command{
		Name: "probe",
		Action: func(c *urfave.Context) error {
			got = c.App.Metadata[metaConfig].(*config.Config)
			return nil
		},
	})

	err := app.RunContext(context.Background(), []string{"authdash", "-c", path, "--timeout", "3s", "--base-path", "/flag/auth", "probe"})
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "http://from-file:1", got.APIBaseURL, "file over defaults")
	assert.Equal(t, "/flag/auth", got.BasePath, "flag over file")
	assert.Equal(t, "yaml", got.Output, "env over file")
	assert.Equal(t, 3*time.Second, got.RequestTimeout)
	assert.Equal(t, "session.db", got.StoragePath, "defaults kept")
}
