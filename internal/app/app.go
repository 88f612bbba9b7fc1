// Package app assembles a ledger session from a project directory: config,
// logger, persistence backend, and the hydrated store.
package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"go.uber.org/dig"

	"github.com/tallyhq/tally/internal/config"
	"github.com/tallyhq/tally/internal/display"
	"github.com/tallyhq/tally/internal/ledger"
	"github.com/tallyhq/tally/internal/logging"
	"github.com/tallyhq/tally/internal/storage"
)

// Backend is a ledger gateway that holds resources until closed.
type Backend interface {
	ledger.Gateway
	Close() error
}

// Options locate the project and direct diagnostic output.
type Options struct {
	Dir       string
	LogOutput io.Writer
}

// App is an open ledger session.
type App struct {
	Dir     string
	Config  *config.Config
	Logger  *logrus.Logger
	Money   *display.Money
	Store   *ledger.Store
	backend Backend
}

// Build loads the project configuration, opens the configured backend and
// hydrates the store from it.
func Build(ctx context.Context, opts Options) (*App, error) {
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if opts.LogOutput == nil {
		opts.LogOutput = os.Stderr
	}

	c := dig.New()
	providers := []any{
		func() context.Context { return ctx },
		func() Options { return opts },
		func(o Options) (*config.Config, error) { return config.LoadDir(o.Dir) },
		func(cfg *config.Config, o Options) (*logrus.Logger, error) { return logging.New(cfg.Log, o.LogOutput) },
		func(cfg *config.Config) (*display.Money, error) { return display.NewMoney(cfg.Display.Currency) },
		func(ctx context.Context, cfg *config.Config, o Options, log *logrus.Logger) (Backend, error) {
			return OpenBackend(ctx, cfg, o.Dir, log)
		},
		newStore,
	}
	for _, p := range providers {
		if err := c.Provide(p); err != nil {
			return nil, fmt.Errorf("registering provider: %w", err)
		}
	}

	var a *App
	err := c.Invoke(func(
		cfg *config.Config,
		log *logrus.Logger,
		m *display.Money,
		backend Backend,
		store *ledger.Store,
	) {
		a = &App{
			Dir:     opts.Dir,
			Config:  cfg,
			Logger:  log,
			Money:   m,
			Store:   store,
			backend: backend,
		}
	})
	if err != nil {
		return nil, dig.RootCause(err)
	}
	return a, nil
}

func newStore(ctx context.Context, backend Backend, log *logrus.Logger) *ledger.Store {
	store := ledger.NewStore(backend, ledger.WithLogger(log))
	store.LoadAll(ctx)
	return store
}

// OpenBackend opens the gateway selected by cfg.Storage.Driver.
func OpenBackend(ctx context.Context, cfg *config.Config, dir string, log logrus.FieldLogger) (Backend, error) {
	switch cfg.Storage.Driver {
	case config.DriverFile:
		return storage.NewFileGateway(cfg.LedgerPath(dir), log), nil
	case config.DriverPostgres:
		gw, err := storage.OpenPostgres(ctx, cfg.Storage.DatabaseURL, log)
		if err != nil {
			return nil, err
		}
		return gw, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// Commit reports whether the last mutation reached the backend.
func (a *App) Commit() error {
	if err := a.Store.LastCommitError(); err != nil {
		return fmt.Errorf("saving ledger: %w", err)
	}
	return nil
}

// Close releases the backend.
func (a *App) Close() error {
	return a.backend.Close()
}
