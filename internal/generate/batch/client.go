// Package batch talks to the OpenAI Batch and synchronous APIs. It builds
// JSONL request files, submits and polls batch jobs, downloads their output
// and exposes the synchronous chat and embedding endpoints as
// generate.Describer and generate.Embedder.
package batch

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"github.com/helgo/places/internal/generate"
	"github.com/helgo/places/pkg/constants"
	"github.com/helgo/places/pkg/errors"
	"github.com/helgo/places/pkg/logging"
)

const service = "openai"

// Terminal batch statuses.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusExpired   = "expired"
	StatusCanceled  = "cancelled"
)

// Client wraps the OpenAI API.
type Client struct {
	api      *openai.Client
	models   Models
	interval time.Duration
	timeout  time.Duration
}

type config struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client, *config)

// WithBaseURL points the client at another API root, such as a proxy.
func WithBaseURL(u string) Option {
	return func(_ *Client, cfg *config) {
		cfg.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(_ *Client, cfg *config) {
		cfg.httpClient = hc
	}
}

// WithModels sets the chat and embedding models.
func WithModels(m Models) Option {
	return func(c *Client, _ *config) {
		if m.Chat != "" {
			c.models.Chat = m.Chat
		}
		if m.Embedding != "" {
			c.models.Embedding = m.Embedding
		}
		c.models.Dimensions = m.Dimensions
	}
}

// WithPoll sets the poll interval and the overall wait bound.
func WithPoll(interval, timeout time.Duration) Option {
	return func(c *Client, _ *config) {
		if interval > 0 {
			c.interval = interval
		}
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// New creates a client. An empty key is an authentication error.
func New(apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.NewAuthenticationError(service, "api_key", "OPENAI_API_KEY is not set", errors.ErrAPIKeyRequired)
	}
	c := &Client{
		models:   DefaultModels(),
		interval: constants.BatchPollInterval,
		timeout:  constants.BatchPollTimeout,
	}
	cfg := &config{}
	for _, opt := range opts {
		opt(c, cfg)
	}

	oc := openai.DefaultConfig(apiKey)
	if cfg.baseURL != "" {
		oc.BaseURL = cfg.baseURL
	}
	if cfg.httpClient != nil {
		oc.HTTPClient = cfg.httpClient
	}
	c.api = openai.NewClientWithConfig(oc)
	return c, nil
}

// Models returns the configured models.
func (c *Client) Models() Models {
	return c.models
}

// Job records a submitted batch so a later poll can pick it up.
type Job struct {
	ID          string        `json:"id"`
	RunID       string        `json:"runId"`
	Kind        generate.Kind `json:"kind"`
	InputFileID string        `json:"inputFileId"`
	Status      string        `json:"status"`
	Requests    int           `json:"requests"`
	Completed   int           `json:"completed,omitempty"`
	Failed      int           `json:"failed,omitempty"`
	OutputFile  string        `json:"outputFileId,omitempty"`
	SubmittedAt time.Time     `json:"submittedAt"`
}

// Submit uploads lines as a batch input file and creates the batch.
func (c *Client) Submit(ctx context.Context, kind generate.Kind, lines []Line) (*Job, error) {
	if len(lines) == 0 {
		return nil, &errors.ValidationError{Field: "lines", Value: 0, Message: "nothing to submit"}
	}
	data, err := EncodeJSONL(lines)
	if err != nil {
		return nil, err
	}

	runID := logging.RunID(ctx)
	if runID == "" {
		runID = uuid.NewString()
	}
	file, err := c.api.CreateFileBytes(ctx, openai.FileBytesRequest{
		Name:    "places-" + string(kind) + "-" + runID + ".jsonl",
		Bytes:   data,
		Purpose: openai.PurposeBatch,
	})
	if err != nil {
		return nil, mapError(err, "upload batch input")
	}

	resp, err := c.api.CreateBatch(ctx, openai.CreateBatchRequest{
		InputFileID:      file.ID,
		Endpoint:         Endpoint(kind),
		CompletionWindow: constants.DefaultBatchWindow,
		Metadata:         map[string]any{"run_id": runID, "kind": string(kind)},
	})
	if err != nil {
		return nil, mapError(err, "create batch")
	}

	logging.FromContext(ctx).Info().
		Str("batch_id", resp.ID).
		Int("requests", len(lines)).
		Msg("Submitted batch")

	return &Job{
		ID:          resp.ID,
		RunID:       runID,
		Kind:        kind,
		InputFileID: file.ID,
		Status:      resp.Status,
		Requests:    len(lines),
		SubmittedAt: time.Now().UTC(),
	}, nil
}

// Status fetches the current state of a batch.
func (c *Client) Status(ctx context.Context, id string) (openai.Batch, error) {
	resp, err := c.api.RetrieveBatch(ctx, id)
	if err != nil {
		return openai.Batch{}, mapError(err, "retrieve batch")
	}
	return resp.Batch, nil
}

// Wait polls a batch until it reaches a terminal status. A batch that ends
// failed, expired or cancelled is a BatchError.
func (c *Client) Wait(ctx context.Context, id string) (openai.Batch, error) {
	log := logging.FromContext(ctx)
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		b, err := c.Status(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return b, c.stopped(ctx, id, b.Status)
			}
			return b, err
		}
		log.Debug().
			Str("batch_id", id).
			Str("status", b.Status).
			Int("completed", b.RequestCounts.Completed).
			Int("failed", b.RequestCounts.Failed).
			Int("total", b.RequestCounts.Total).
			Msg("Batch status")

		switch b.Status {
		case StatusCompleted:
			return b, nil
		case StatusFailed, StatusExpired, StatusCanceled, "canceled":
			return b, errors.NewBatchError(id, b.Status, "")
		}

		select {
		case <-ctx.Done():
			return b, c.stopped(ctx, id, b.Status)
		case <-ticker.C:
		}
	}
}

func (c *Client) stopped(ctx context.Context, id, status string) error {
	if ctx.Err() == context.DeadlineExceeded {
		return errors.NewTimeoutError("batch poll", c.timeout.String(), "batch "+id+" still "+status)
	}
	return ctx.Err()
}

// Download copies the output file of a completed batch to w.
func (c *Client) Download(ctx context.Context, b openai.Batch, w io.Writer) error {
	if b.OutputFileID == nil || *b.OutputFileID == "" {
		return errors.NewBatchError(b.ID, b.Status, "no output file")
	}
	content, err := c.api.GetFileContent(ctx, *b.OutputFileID)
	if err != nil {
		return mapError(err, "download batch output")
	}
	defer content.Close()
	if _, err := io.Copy(w, content); err != nil {
		return errors.WrapIO("read", *b.OutputFileID, err)
	}
	return nil
}

// Describe implements generate.Describer with one chat completion.
func (c *Client) Describe(ctx context.Context, instructions, input string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.models.Chat,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: instructions},
			{Role: openai.ChatMessageRoleUser, Content: input},
		},
		MaxCompletionTokens: constants.MaxDescriptionTokens,
	})
	if err != nil {
		return "", mapError(err, "chat completion")
	}
	if len(resp.Choices) == 0 {
		return "", errors.NewAPIError(service, 0, "chat completion returned no choices")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.NewAPIError(service, 0, "chat completion returned empty text")
	}
	return text, nil
}

// Embed implements generate.Embedder with one embeddings call.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      texts,
		Model:      openai.EmbeddingModel(c.models.Embedding),
		Dimensions: c.models.Dimensions,
	})
	if err != nil {
		return nil, mapError(err, "embeddings")
	}
	out := make([][]float64, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			continue
		}
		out[d.Index] = widen(d.Embedding)
	}
	for i, v := range out {
		if v == nil {
			return nil, errors.NewAPIError(service, 0, "missing embedding for input "+strconv.Itoa(i))
		}
	}
	return out, nil
}

var (
	_ generate.Describer = (*Client)(nil)
	_ generate.Embedder  = (*Client)(nil)
)

func widen(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}

// mapError turns SDK errors into the typed errors the pipeline checks for.
func mapError(err error, op string) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusUnauthorized {
			return errors.NewAuthenticationError(service, "api_key", apiErr.Message, errors.ErrAPIKeyInvalid)
		}
		return &errors.APIError{Source: service, StatusCode: apiErr.HTTPStatusCode, Message: op + ": " + apiErr.Message, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode == http.StatusUnauthorized {
			return errors.NewAuthenticationError(service, "api_key", "request rejected", errors.ErrAPIKeyInvalid)
		}
		return &errors.APIError{Source: service, StatusCode: reqErr.HTTPStatusCode, Message: op + " failed", Err: err}
	}
	return &errors.APIError{Source: service, Message: op + ": " + err.Error(), Err: err}
}
