package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	urfave "github.com/urfave/cli/v2"

	"github.com/dmitrijs2005/authdash/internal/client/config"
	"github.com/dmitrijs2005/authdash/internal/logging"
)

// Build information, set via ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// ErrReported marks a command failure that has already been shown to the
// user. Callers should exit non-zero without printing it again.
var ErrReported = errors.New("command failed")

// stderr is a test seam for log output.
var stderr io.Writer = os.Stderr

const (
	metaConfig = "config"
	metaLogger = "logger"
)

// NewCommandApp builds the command-line surface. Without a command it starts
// the interactive shell.
func NewCommandApp() *urfave.App {
	return &urfave.App{
		Name:    "authdash",
		Usage:   "sign in to an /api/auth service and view your account",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildTime),
		Flags:   globalFlags(),
		Before:  loadSettings,
		Action:  withApp(false, (*App).Run),
		Commands: []*urfave.Command{
			{
				Name:   "shell",
				Usage:  "Start the interactive shell (default)",
				Action: withApp(false, (*App).Run),
			},
			{
				Name:   "login",
				Usage:  "Sign in and store the session",
				Action: withApp(true, (*App).Login),
			},
			{
				Name:   "register",
				Usage:  "Create an account and sign in",
				Action: withApp(true, (*App).Register),
			},
			{
				Name:   "logout",
				Usage:  "Sign out and wipe the stored session",
				Action: withApp(false, (*App).Logout),
			},
			{
				Name:   "whoami",
				Usage:  "Show who is signed in",
				Action: withApp(false, (*App).Whoami),
			},
			{
				Name:    "dashboard",
				Aliases: []string{"me"},
				Usage:   "Show the signed-in account",
				Action:  withApp(false, (*App).Dashboard),
			},
			{
				Name:   "users",
				Usage:  "List all users",
				Action: withApp(false, (*App).Users),
			},
		},
	}
}

func globalFlags() []urfave.Flag {
	return []urfave.Flag{
		&urfave.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "JSON config file",
			EnvVars: []string{"AUTHDASH_CONFIG"},
		},
		&urfave.StringFlag{
			Name:    "server",
			Aliases: []string{"a"},
			Usage:   "API server URL (default http://127.0.0.1:8080)",
			EnvVars: []string{"AUTHDASH_SERVER"},
		},
		&urfave.StringFlag{
			Name:    "base-path",
			Usage:   "path the auth API is mounted at (default /api/auth)",
			EnvVars: []string{"AUTHDASH_BASE_PATH"},
		},
		&urfave.StringFlag{
			Name:    "storage",
			Usage:   "local session database (default session.db)",
			EnvVars: []string{"AUTHDASH_STORAGE"},
		},
		&urfave.DurationFlag{
			Name:    "timeout",
			Usage:   "API request timeout, 0 waits forever",
			EnvVars: []string{"AUTHDASH_TIMEOUT"},
		},
		&urfave.StringFlag{
			Name:    "log-level",
			Usage:   "debug, info, warn or error (default info)",
			EnvVars: []string{"AUTHDASH_LOG_LEVEL"},
		},
		&urfave.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format for users: table, json, yaml",
			EnvVars: []string{"AUTHDASH_OUTPUT"},
		},
	}
}

// loadSettings builds the Config (defaults, JSON file, then env and flags)
// and the logger, and stores both in the app metadata.
func loadSettings(c *urfave.Context) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}
	applyFlags(c, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.NewTextLogger(stderr, cfg.LogLevel)
	if err != nil {
		return err
	}

	c.App.Metadata[metaConfig] = cfg
	c.App.Metadata[metaLogger] = log
	return nil
}

func applyFlags(c *urfave.Context, cfg *config.Config) {
	if c.IsSet("server") {
		cfg.APIBaseURL = c.String("server")
	}
	if c.IsSet("base-path") {
		cfg.BasePath = c.String("base-path")
	}
	if c.IsSet("storage") {
		cfg.StoragePath = c.String("storage")
	}
	if c.IsSet("timeout") {
		cfg.RequestTimeout = c.Duration("timeout")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("output") {
		cfg.Output = c.String("output")
	}
}

// withApp wires an App for one command, restores the stored session and runs
// fn. With render set, the view the command lands on is shown afterwards.
func withApp(render bool, fn func(*App, context.Context) error) urfave.ActionFunc {
	return func(c *urfave.Context) error {
		cfg, ok := c.App.Metadata[metaConfig].(*config.Config)
		if !ok {
			return errors.New("configuration not loaded")
		}
		log, ok := c.App.Metadata[metaLogger].(logging.Logger)
		if !ok {
			return errors.New("logger not configured")
		}

		ctx := c.Context
		a, err := NewApp(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Start(ctx); err != nil {
			return err
		}
		a.routeChanged.Store(false)

		if err := fn(a, ctx); err != nil {
			return fmt.Errorf("%w: %w", ErrReported, err)
		}
		if render {
			a.refresh(ctx)
		}
		return nil
	}
}
