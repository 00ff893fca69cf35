// Package appcontext is what command packages see of the application.
// Commands take an Interface so their tests can pass a Mock with a temp
// dataset path instead of building a full App.
package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/helgo/places/internal/config"
	"github.com/helgo/places/pkg/taxonomy"
)

// Interface is implemented by app.App and Mock.
type Interface interface {
	// Config includes the global flags applied before the command ran.
	// Commands may adjust it, e.g. the dataset path from --dataset.
	Config() *config.Config
	// Tables loads the taxonomy override named in config once, or returns
	// the built-in vocabulary.
	Tables() (*taxonomy.Tables, error)
	Logger() *zerolog.Logger
	// OutputFormat is table, json, yaml or text.
	OutputFormat() string

	Version() string
	Commit() string
	Date() string
	BuiltBy() string
}
