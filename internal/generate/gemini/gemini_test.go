package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helgo/places/internal/generate"
	"github.com/helgo/places/pkg/errors"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		if strings.Contains(r.URL.Path, "mbedContent") {
			var body struct {
				Requests []json.RawMessage `json:"requests"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			n := max(len(body.Requests), 1)
			vecs := make([]string, n)
			for i := range vecs {
				vecs[i] = fmt.Sprintf(`{"values": [%d, 0.5]}`, i+1)
			}
			fmt.Fprintf(w, `{"embeddings": [%s]}`, strings.Join(vecs, ","))
			return
		}
		assert.Contains(t, r.URL.Path, "gemini-2.0-flash:generateContent")
		fmt.Fprint(w, `{"candidates": [{"content": {"role": "model", "parts": [{"text": " Old town hill. "}]}}]}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewRequiresKey(t *testing.T) {
	_, err := New("")
	assert.True(t, errors.IsAPIKeyError(err))
}

func TestDescribe(t *testing.T) {
	c, err := New("test-key", WithBaseURL(newServer(t).URL+"/"))
	require.NoError(t, err)

	text, err := c.Describe(context.Background(), generate.Instructions, "Name: Lindenhof")
	require.NoError(t, err)
	assert.Equal(t, "Old town hill.", text)
}

func TestEmbed(t *testing.T) {
	c, err := New("test-key", WithBaseURL(newServer(t).URL+"/"), WithEmbeddingModel("", 2))
	require.NoError(t, err)

	vectors, err := c.Embed(context.Background(), []string{"Lindenhof | viewpoint"})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 0.5}}, vectors)
}

func TestUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error": {"code": 401, "message": "API key not valid", "status": "UNAUTHENTICATED"}}`)
	}))
	t.Cleanup(srv.Close)

	c, err := New("test-key", WithBaseURL(srv.URL+"/"))
	require.NoError(t, err)
	_, err = c.Describe(context.Background(), generate.Instructions, "Name: Lindenhof")
	assert.True(t, errors.IsAPIKeyError(err))
}
