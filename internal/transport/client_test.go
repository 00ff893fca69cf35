package transport

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helgo/places/pkg/errors"
)

func testClient(opts ...Option) *Client {
	base := []Option{WithInterval(0), WithRetries(2, time.Millisecond)}
	return New("test", append(base, opts...)...)
}

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "places-test/1", r.Header.Get("User-Agent"))
		assert.Equal(t, "Zurich", r.URL.Query().Get("q"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		fmt.Fprint(w, `{"name":"Zurich"}`)
	}))
	defer srv.Close()

	c := testClient(WithUserAgent("places-test/1"))
	var out struct {
		Name string `json:"name"`
	}
	err := c.GetJSON(context.Background(), srv.URL+"?limit=1", url.Values{"q": {"Zurich"}}, &out)
	require.NoError(t, err)
	assert.Equal(t, "Zurich", out.Name)
}

func TestPostFormJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "[out:json];", r.PostForm.Get("data"))
		fmt.Fprint(w, `{"elements":[]}`)
	}))
	defer srv.Close()

	var out map[string]any
	err := testClient().PostFormJSON(context.Background(), srv.URL, url.Values{"data": {"[out:json];"}}, &out)
	require.NoError(t, err)
	assert.Contains(t, out, "elements")
}

func TestRetryOn429(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	var out map[string]any
	require.NoError(t, testClient().GetJSON(context.Background(), srv.URL, nil, &out))
	assert.Equal(t, int32(3), calls.Load())
}

func TestRetryBudgetExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := testClient().Get(context.Background(), srv.URL, nil)
	require.Error(t, err)
	assert.True(t, errors.IsRateLimited(err))
	assert.Equal(t, int32(3), calls.Load())
}

func TestServerErrorAndBreaker(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := testClient()
	for range 10 {
		_, err := c.Get(context.Background(), srv.URL, nil)
		require.Error(t, err)
		assert.True(t, errors.IsSourceUnavailable(err))
	}
	assert.Equal(t, int32(5), calls.Load(), "breaker opens after consecutive failures")
}

func TestDecodeResponseErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{not json`)
	}))
	defer srv.Close()

	c := testClient()
	var out map[string]any

	err := c.GetJSON(context.Background(), srv.URL+"/missing", nil, &out)
	var apiErr *errors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "test", apiErr.Source)

	err = c.GetJSON(context.Background(), srv.URL+"/bad", nil, &out)
	var parseErr *errors.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestCanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New("test", WithRetries(3, time.Hour)).Get(ctx, srv.URL, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
