// Package errors holds the typed errors of the places pipeline.
//
// Expected absences (a record without a name, a place with no candidate in
// range) are not errors. The types here cover what a pass has to react to:
// bad input, a collaborator that failed or refused, and files that could not
// be read or written. Each type matches one of the sentinels below through
// errors.Is, so callers branch on the Is* helpers rather than on types.
package errors

import (
	"context"
	"errors"
)

// Aliases of the standard library so callers need one import.
var (
	New  = errors.New
	Is   = errors.Is
	As   = errors.As
	Join = errors.Join
)

// Sentinels matched by the typed errors.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrAPIKeyRequired    = errors.New("API key required")
	ErrAPIKeyInvalid     = errors.New("API key invalid")
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrRateLimited       = errors.New("rate limited")
	ErrTimeout           = errors.New("timed out")
	ErrCanceled          = errors.New("canceled")
	// ErrLookupFailed marks a collaborator failure scoped to one place.
	ErrLookupFailed = errors.New("lookup failed")
	// ErrBatchFailed marks a remote batch that ended without output.
	ErrBatchFailed = errors.New("batch failed")
)

// IsNotFound reports a missing dataset, job file or entity.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsValidationError reports rejected flags, config values or input.
func IsValidationError(err error) bool { return errors.Is(err, ErrInvalidInput) }

// IsAPIKeyError reports a missing or rejected credential.
func IsAPIKeyError(err error) bool {
	return errors.Is(err, ErrAPIKeyRequired) || errors.Is(err, ErrAPIKeyInvalid)
}

// IsRateLimited reports an upstream 429.
func IsRateLimited(err error) bool { return errors.Is(err, ErrRateLimited) }

// IsSourceUnavailable reports an upstream 5xx or an open circuit.
func IsSourceUnavailable(err error) bool { return errors.Is(err, ErrSourceUnavailable) }

// IsTimeout reports a wait that gave up.
func IsTimeout(err error) bool { return errors.Is(err, ErrTimeout) }

// IsCanceled reports ErrCanceled or a canceled context.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled) || errors.Is(err, context.Canceled)
}
