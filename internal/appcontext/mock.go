package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/helgo/places/internal/config"
	"github.com/helgo/places/pkg/taxonomy"
)

// Mock provides a mock implementation of Interface for testing.
// If a function field is nil, the method returns a default value.
type Mock struct {
	ConfigFunc       func() *config.Config
	TablesFunc       func() (*taxonomy.Tables, error)
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
}

// Config returns the mock config or an empty one.
func (m *Mock) Config() *config.Config {
	if m.ConfigFunc != nil {
		return m.ConfigFunc()
	}
	return &config.Config{}
}

// Tables returns the mock tables or the built-in ones.
func (m *Mock) Tables() (*taxonomy.Tables, error) {
	if m.TablesFunc != nil {
		return m.TablesFunc()
	}
	return taxonomy.Default(), nil
}

// Logger returns the mock logger or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns the mock format or json.
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "json"
}

// Version returns a fixed test version.
func (m *Mock) Version() string { return "test" }

// Commit returns a fixed test commit.
func (m *Mock) Commit() string { return "none" }

// Date returns a fixed test date.
func (m *Mock) Date() string { return "unknown" }

// BuiltBy returns a fixed builder name.
func (m *Mock) BuiltBy() string { return "test" }

var _ Interface = (*Mock)(nil)
