package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/authdash/internal/client/client"
	"github.com/dmitrijs2005/authdash/internal/client/config"
	"github.com/dmitrijs2005/authdash/internal/client/output"
	"github.com/dmitrijs2005/authdash/internal/client/router"
	"github.com/dmitrijs2005/authdash/internal/client/services"
	"github.com/dmitrijs2005/authdash/internal/client/session"
	"github.com/dmitrijs2005/authdash/internal/logging"
)

// stdin and stdout are test seams for the terminal streams.
var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
)

type App struct {
	config    *config.Config
	db        *sql.DB
	auth      services.AuthService
	session   session.Observer
	router    *router.Router
	formatter output.Formatter
	log       logging.Logger
	reader    *bufio.Reader
	out       io.Writer
	loc       *time.Location
	now       func() time.Time

	routeChanged atomic.Bool
}

// NewApp opens local storage and wires the API client, session store, router
// and auth service. It performs no network I/O.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	format, err := output.ParseFormat(c.Output)
	if err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, c.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	api, err := client.NewHTTPClient(c.APIBaseURL, c.BasePath, c.RequestTimeout, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	store := session.NewStore(session.NewSQLiteTokenStore(db))
	r := router.New(store)
	as := services.NewAuthService(api, store, r, log)

	a := &App{
		config:    c,
		db:        db,
		auth:      as,
		session:   as.Session(),
		router:    r,
		formatter: output.NewFormatter(format),
		log:       log,
		reader:    bufio.NewReader(stdin),
		out:       stdout,
		loc:       time.Local,
		now:       time.Now,
	}
	r.OnChange(func(router.Route) { a.routeChanged.Store(true) })
	return a, nil
}

// Start restores a stored session, if any.
func (a *App) Start(ctx context.Context) error {
	return a.auth.Bootstrap(ctx)
}

// Close detaches the router and closes local storage.
func (a *App) Close() error {
	a.router.Close()
	return a.db.Close()
}

func (a *App) isLoggedIn() bool {
	return a.session.State().IsAuthenticated()
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
