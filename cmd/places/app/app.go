// Package app wires configuration, logging and commands for the places
// CLI.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/helgo/places/internal/appcontext"
	"github.com/helgo/places/internal/config"
	"github.com/helgo/places/pkg/errors"
	"github.com/helgo/places/pkg/taxonomy"
)

// buildInfo is stamped in by the release build through main's ldflags.
type buildInfo struct {
	version, commit, date, builtBy string
}

// App carries the config, logger and lazily loaded taxonomy that every
// command reads through appcontext.Interface.
type App struct {
	build  buildInfo
	config *config.Config
	logger *zerolog.Logger

	mu     sync.Mutex
	tables *taxonomy.Tables
}

// New applies opts, then loads config from the default search path and
// builds a logger from it for whatever opts left unset.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	a := &App{build: buildInfo{version, commit, date, builtBy}}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}

	if a.config == nil {
		cfg, err := config.Load("")
		if err != nil {
			return nil, errors.WrapResource("load", "config", "", err)
		}
		a.config = cfg
	}
	if a.logger == nil {
		l := NewLogger(a.config)
		a.logger = &l
	}
	return a, nil
}

func (a *App) Version() string { return a.build.version }
func (a *App) Commit() string { return a.build.commit }
func (a *App) Date() string { return a.build.date }
func (a *App) BuiltBy() string { return a.build.builtBy }

func (a *App) Config() *config.Config { return a.config }
func (a *App) Logger() *zerolog.Logger { return a.logger }
func (a *App) OutputFormat() string { return a.config.Format }

// Tables returns the vocabulary tables. An override file named in config
// replaces the built-in tables; it is loaded once.
func (a *App) Tables() (*taxonomy.Tables, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.tables != nil {
		return a.tables, nil
	}
	if a.config.Taxonomy == "" {
		a.tables = taxonomy.Default()
		return a.tables, nil
	}
	tables, err := taxonomy.Load(a.config.Taxonomy)
	if err != nil {
		return nil, errors.WrapResource("load", "taxonomy", a.config.Taxonomy, err)
	}
	a.tables = tables
	return tables, nil
}

// Shutdown is called by main once the command returns. The App holds no
// open resources, so it only logs.
func (a *App) Shutdown(_ context.Context) error {
	a.logger.Debug().Msg("Shutdown complete")
	return nil
}

// Option adjusts an App before New fills in defaults.
type Option func(*App) error

// WithConfig skips config discovery. Tests use it with a temp dataset path.
func WithConfig(cfg *config.Config) Option {
	return func(a *App) error {
		if cfg == nil {
			return errors.NewValidationError("config", nil, "config is required")
		}
		a.config = cfg
		return nil
	}
}

// WithConfigFile reads config from path instead of the search path.
func WithConfigFile(path string) Option {
	return func(a *App) error {
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		a.config = cfg
		return nil
	}
}

// WithLogger skips NewLogger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

var _ appcontext.Interface = (*App)(nil)
