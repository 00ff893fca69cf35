package errors_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	pkgerrors "github.com/helgo/places/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestNotFoundError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := &pkgerrors.NotFoundError{
			Resource: "place",
			ID:       "osm-node-1-kronenhalle",
		}
		assert.Equal(t, `place "osm-node-1-kronenhalle" not found`, err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
	})

	t.Run("wrapped error", func(t *testing.T) {
		base := pkgerrors.NewNotFoundError("category", "museum")
		wrapped := errors.Join(errors.New("failed"), base)
		assert.True(t, pkgerrors.IsNotFound(wrapped))
	})
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{
			Field:   "max_km",
			Message: "must be positive",
		}
		assert.Equal(t, "invalid max_km: must be positive", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrInvalidInput))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "invalid configuration"}
		assert.Equal(t, "invalid: invalid configuration", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})
}

func TestAPIError(t *testing.T) {
	t.Run("rate limited", func(t *testing.T) {
		err := pkgerrors.NewAPIError("wikidata", 429, "too many requests")
		assert.Contains(t, err.Error(), "wikidata")
		assert.Contains(t, err.Error(), "429")
		assert.True(t, pkgerrors.IsRateLimited(err))
		assert.False(t, pkgerrors.IsSourceUnavailable(err))
	})

	t.Run("server error", func(t *testing.T) {
		err := pkgerrors.NewAPIError("overpass", 504, "gateway timeout")
		assert.True(t, pkgerrors.IsSourceUnavailable(err))
		assert.False(t, pkgerrors.IsRateLimited(err))
	})

	t.Run("client error", func(t *testing.T) {
		err := pkgerrors.NewAPIError("zurich", 404, "missing")
		assert.False(t, pkgerrors.IsSourceUnavailable(err))
		assert.False(t, pkgerrors.IsRateLimited(err))
	})
}

func TestLookupError(t *testing.T) {
	base := pkgerrors.NewAPIError("wikidata", 503, "down")
	err := pkgerrors.NewLookupError("wikidata", "zurich-1-lindenhof", base)

	assert.ErrorIs(t, err, pkgerrors.ErrLookupFailed)
	assert.True(t, pkgerrors.IsSourceUnavailable(err))
	assert.Contains(t, err.Error(), "zurich-1-lindenhof")
}

func TestBatchError(t *testing.T) {
	err := pkgerrors.NewBatchError("batch_123", "expired", "")
	assert.True(t, errors.Is(err, pkgerrors.ErrBatchFailed))
	assert.Equal(t, "batch batch_123 ended expired", err.Error())
}

func TestAuthenticationError(t *testing.T) {
	err := pkgerrors.NewAuthenticationError("openai", "api_key", "OPENAI_API_KEY is not set", nil)
	assert.True(t, pkgerrors.IsAPIKeyError(err))
	assert.Contains(t, err.Error(), "openai")
}

func TestParseError(t *testing.T) {
	t.Run("with file and line", func(t *testing.T) {
		err := &pkgerrors.ParseError{Format: "jsonl", File: "out.jsonl", Line: 3, Message: "unexpected EOF"}
		assert.Equal(t, "malformed jsonl in out.jsonl:3: unexpected EOF", err.Error())
	})

	t.Run("wrap", func(t *testing.T) {
		base := errors.New("invalid character")
		err := pkgerrors.WrapParse("json", "places.json", base)
		var pe *pkgerrors.ParseError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, "places.json", pe.File)
		assert.ErrorIs(t, err, base)
	})

	t.Run("without file", func(t *testing.T) {
		err := pkgerrors.NewParseError("taxonomy", "", "empty document", nil)
		assert.Equal(t, "malformed taxonomy in taxonomy input: empty document", err.Error())
	})
}

func TestIOError(t *testing.T) {
	base := errors.New("permission denied")
	err := pkgerrors.WrapIO("write", "/tmp/places.json", base)
	assert.Contains(t, err.Error(), "write")
	assert.Contains(t, err.Error(), "/tmp/places.json")
	assert.ErrorIs(t, err, base)
	assert.Nil(t, pkgerrors.WrapIO("write", "x", nil))
}

func TestTimeoutError(t *testing.T) {
	err := pkgerrors.NewTimeoutError("batch poll", "1h0m0s", "still in_progress")
	assert.True(t, pkgerrors.IsTimeout(err))
	assert.Contains(t, err.Error(), "1h0m0s")
}

func TestResourceError(t *testing.T) {
	err := pkgerrors.WrapResource("fetch", "category", "72", errors.New("eof"))
	assert.Equal(t, "failed to fetch category 72: eof", err.Error())
	assert.Nil(t, pkgerrors.WrapResource("fetch", "category", "72", nil))
}

func TestIsCanceled(t *testing.T) {
	assert.True(t, pkgerrors.IsCanceled(pkgerrors.ErrCanceled))
	assert.True(t, pkgerrors.IsCanceled(fmt.Errorf("walk: %w", context.Canceled)))
	assert.False(t, pkgerrors.IsCanceled(context.DeadlineExceeded))
}
