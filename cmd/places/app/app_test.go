package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helgo/places/internal/config"
	"github.com/helgo/places/pkg/errors"
	"github.com/helgo/places/pkg/places"
	"github.com/helgo/places/pkg/taxonomy"
)

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	logger := zerolog.Nop()
	app, err := New("1.0.0", "abc123", "2024-01-01", "test", WithConfig(cfg), WithLogger(&logger))
	require.NoError(t, err)
	return app
}

// TestApp_New verifies app initialization.
func TestApp_New(t *testing.T) {
	app := newTestApp(t, &config.Config{Dataset: "places.json"})

	assert.Equal(t, "1.0.0", app.Version())
	assert.Equal(t, "abc123", app.Commit())
	assert.Equal(t, "2024-01-01", app.Date())
	assert.Equal(t, "test", app.BuiltBy())
	assert.NotNil(t, app.Logger())
	assert.Equal(t, "places.json", app.Config().Dataset)

	_, err := New("1.0.0", "", "", "", WithConfig(nil))
	assert.True(t, errors.IsValidationError(err))
}

// TestApp_Tables_ThreadSafe verifies concurrent Tables() calls share one
// instance.
func TestApp_Tables_ThreadSafe(t *testing.T) {
	app := newTestApp(t, &config.Config{})

	const goroutines = 50
	var wg sync.WaitGroup
	results := make([]*taxonomy.Tables, goroutines)
	for i := range goroutines {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			tables, err := app.Tables()
			assert.NoError(t, err)
			results[idx] = tables
		}(i)
	}
	wg.Wait()

	for i, tables := range results[1:] {
		assert.Same(t, results[0], tables, "goroutine %d got different tables", i+1)
	}
}

func TestApp_TablesOverride(t *testing.T) {
	app := newTestApp(t, &config.Config{Taxonomy: filepath.Join(t.TempDir(), "missing.yaml")})
	_, err := app.Tables()
	assert.Error(t, err)
}

func TestExecuteStats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "places.json")
	ds := places.New()
	require.NoError(t, ds.Insert(&places.Place{ID: "a", Name: "A", Category: taxonomy.Museum, Lat: 47.37, Lon: 8.54}))
	require.NoError(t, ds.Save(path))

	app := newTestApp(t, &config.Config{Dataset: "unused.json", LogFormat: "json", LogOutput: "stderr"})
	root := app.rootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"stats", "--dataset", path, "-o", "json", "-q"})
	require.NoError(t, root.ExecuteContext(context.Background()))

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "museum", rows[0]["category"])
	assert.Equal(t, path, app.Config().Dataset)
	assert.Equal(t, "json", app.OutputFormat())
}

func TestExecuteRejectsFormat(t *testing.T) {
	app := newTestApp(t, &config.Config{Dataset: "places.json"})
	err := app.Execute(context.Background(), []string{"version", "-o", "xml"})
	assert.True(t, errors.IsValidationError(err))
}

func TestExecuteConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	cfgPath := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("dataset: from-file.json\ncity: Basel\n"), 0o644))

	app := newTestApp(t, &config.Config{Dataset: "places.json"})
	root := app.rootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"version", "--config", cfgPath, "-o", "json", "-q"})
	require.NoError(t, root.ExecuteContext(context.Background()))

	assert.Equal(t, "from-file.json", app.Config().Dataset)
	assert.Equal(t, "Basel", app.Config().City)
}
