// Package gemini generates descriptions and embeddings with the Gemini API.
package gemini

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/helgo/places/internal/generate"
	"github.com/helgo/places/pkg/constants"
	"github.com/helgo/places/pkg/errors"
)

const service = "gemini"

// Client implements generate.Describer and generate.Embedder. The SDK client
// is created on first use and reused.
type Client struct {
	apiKey     string
	model      string
	embedModel string
	dimensions int
	baseURL    string
	httpClient *http.Client

	genaiClient *genai.Client
	mu          sync.Mutex
}

// Option configures a Client.
type Option func(*Client)

// WithModel sets the generation model.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithEmbeddingModel sets the embedding model and output size. Zero keeps
// the model's native size.
func WithEmbeddingModel(model string, dimensions int) Option {
	return func(c *Client) {
		if model != "" {
			c.embedModel = model
		}
		c.dimensions = dimensions
	}
}

// WithBaseURL points the client at another API root.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithHTTPClient sets the HTTP client used by the SDK.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a client. An empty key is an authentication error.
func New(apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.NewAuthenticationError(service, "api_key", "GEMINI_API_KEY is not set", errors.ErrAPIKeyRequired)
	}
	c := &Client{
		apiKey:     apiKey,
		model:      constants.DefaultGeminiModel,
		embedModel: constants.DefaultGeminiEmbed,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) client(ctx context.Context) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.genaiClient != nil {
		return c.genaiClient, nil
	}
	cfg := &genai.ClientConfig{
		Backend:    genai.BackendGeminiAPI,
		APIKey:     c.apiKey,
		HTTPClient: c.httpClient,
	}
	if c.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: c.baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, errors.NewConfigError(service, "create client", err)
	}
	c.genaiClient = client
	return client, nil
}

// Describe implements generate.Describer.
func (c *Client) Describe(ctx context.Context, instructions, input string) (string, error) {
	client, err := c.client(ctx)
	if err != nil {
		return "", err
	}
	resp, err := client.Models.GenerateContent(ctx, c.model, genai.Text(input), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(instructions, genai.RoleUser),
		MaxOutputTokens:   constants.MaxDescriptionTokens,
	})
	if err != nil {
		return "", mapError(err, "generate content")
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.NewAPIError(service, 0, "generate content returned empty text")
	}
	return text, nil
}

// Embed implements generate.Embedder.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	client, err := c.client(ctx)
	if err != nil {
		return nil, err
	}
	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = genai.NewContentFromText(t, genai.RoleUser)
	}
	cfg := &genai.EmbedContentConfig{}
	if c.dimensions > 0 {
		cfg.OutputDimensionality = genai.Ptr(int32(c.dimensions))
	}
	resp, err := client.Models.EmbedContent(ctx, c.embedModel, contents, cfg)
	if err != nil {
		return nil, mapError(err, "embed content")
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, errors.NewAPIError(service, 0, "embed content returned a different number of vectors")
	}
	out := make([][]float64, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		if e == nil || len(e.Values) == 0 {
			return nil, errors.NewAPIError(service, 0, "embed content returned an empty vector")
		}
		out[i] = make([]float64, len(e.Values))
		for j, v := range e.Values {
			out[i][j] = float64(v)
		}
	}
	return out, nil
}

var (
	_ generate.Describer = (*Client)(nil)
	_ generate.Embedder  = (*Client)(nil)
)

func mapError(err error, op string) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return errors.NewAuthenticationError(service, "api_key", apiErr.Message, errors.ErrAPIKeyInvalid)
		}
		return &errors.APIError{Source: service, StatusCode: apiErr.Code, Message: op + ": " + apiErr.Message, Err: err}
	}
	return &errors.APIError{Source: service, Message: op + ": " + err.Error(), Err: err}
}
