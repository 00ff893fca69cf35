package logging

import (
	"context"

	"github.com/rs/zerolog"
)

type ctxKey struct{ name string }

var (
	loggerCtxKey = ctxKey{"logger"}
	runIDCtxKey  = ctxKey{"run_id"}
)

// WithLogger stores l on ctx. A nil l stores Default.
func WithLogger(ctx context.Context, l *zerolog.Logger) context.Context {
	if l == nil {
		l = Default()
	}
	return context.WithValue(ctx, loggerCtxKey, l)
}

// FromContext returns the logger stored by WithLogger, or Default. Library
// code that may run without the CLI (pkg/merge, pkg/enrich) logs through it.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if l, _ := ctx.Value(loggerCtxKey).(*zerolog.Logger); l != nil {
			return l
		}
	}
	return Default()
}

// WithField returns ctx with a logger that adds key to every event.
func WithField(ctx context.Context, key string, value any) context.Context {
	l := FromContext(ctx).With().Interface(key, value).Logger()
	return WithLogger(ctx, &l)
}

func withStr(ctx context.Context, key, value string) context.Context {
	l := FromContext(ctx).With().Str(key, value).Logger()
	return WithLogger(ctx, &l)
}

// WithRunID tags one CLI invocation. Batch uploads put it in the input
// file name so a remote job can be traced back to its run.
func WithRunID(ctx context.Context, runID string) context.Context {
	return withStr(context.WithValue(ctx, runIDCtxKey, runID), "run_id", runID)
}

// RunID is empty when WithRunID was never called.
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDCtxKey).(string)
	return id
}

// WithSource tags events with the upstream in use: osm, zurich, wikidata,
// openai or gemini.
func WithSource(ctx context.Context, source string) context.Context {
	return withStr(ctx, "source", source)
}

func WithPlace(ctx context.Context, placeID string) context.Context {
	return withStr(ctx, "place_id", placeID)
}

// WithOperation tags events with the pass, e.g. build, enrich or attach.
func WithOperation(ctx context.Context, operation string) context.Context {
	return withStr(ctx, "operation", operation)
}
