package batch

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/helgo/places/internal/generate"
	"github.com/helgo/places/pkg/constants"
	"github.com/helgo/places/pkg/errors"
	"github.com/helgo/places/pkg/places"
)

// Line is one request of a batch input file.
type Line struct {
	CustomID string               `json:"custom_id"`
	Method   string               `json:"method"`
	URL      openai.BatchEndpoint `json:"url"`
	Body     any                  `json:"body"`
}

// Models names the models batch requests are built for.
type Models struct {
	Chat       string
	Embedding  string
	Dimensions int
}

// DefaultModels returns the default chat and embedding models.
func DefaultModels() Models {
	return Models{Chat: constants.DefaultChatModel, Embedding: constants.DefaultEmbedModel}
}

// Endpoint returns the batch endpoint for kind.
func Endpoint(kind generate.Kind) openai.BatchEndpoint {
	if kind == generate.Embeddings {
		return openai.BatchEndpointEmbeddings
	}
	return openai.BatchEndpointChatCompletions
}

// BuildLines renders one request per place, using the place id as the
// custom id.
func BuildLines(ps []*places.Place, kind generate.Kind, models Models) []Line {
	lines := make([]Line, 0, len(ps))
	for _, p := range ps {
		line := Line{CustomID: p.ID, Method: "POST", URL: Endpoint(kind)}
		switch kind {
		case generate.Embeddings:
			line.Body = openai.EmbeddingRequest{
				Input:      []string{generate.EmbeddingText(p)},
				Model:      openai.EmbeddingModel(models.Embedding),
				Dimensions: models.Dimensions,
			}
		default:
			line.Body = openai.ChatCompletionRequest{
				Model: models.Chat,
				Messages: []openai.ChatCompletionMessage{
					{Role: openai.ChatMessageRoleSystem, Content: generate.Instructions},
					{Role: openai.ChatMessageRoleUser, Content: generate.DescriptionInput(p)},
				},
				MaxCompletionTokens: constants.MaxDescriptionTokens,
			}
		}
		lines = append(lines, line)
	}
	return lines
}

// WriteJSONL writes lines as JSON Lines.
func WriteJSONL(w io.Writer, lines []Line) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, l := range lines {
		if err := enc.Encode(l); err != nil {
			return errors.WrapParse("jsonl", "batch input", err)
		}
	}
	return nil
}

// EncodeJSONL renders lines as JSON Lines in memory.
func EncodeJSONL(lines []Line) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSONL(&buf, lines); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadJSONL reads a request file written by WriteJSONL. Bodies are kept
// as raw JSON and re-encoded unchanged.
func ReadJSONL(r io.Reader, name string) ([]Line, error) {
	var lines []Line
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		var l struct {
			CustomID string               `json:"custom_id"`
			Method   string               `json:"method"`
			URL      openai.BatchEndpoint `json:"url"`
			Body     json.RawMessage      `json:"body"`
		}
		if err := json.Unmarshal(raw, &l); err != nil {
			return nil, &errors.ParseError{Format: "jsonl", File: name, Line: lineNo, Message: err.Error(), Err: err}
		}
		if l.CustomID == "" {
			return nil, &errors.ParseError{Format: "jsonl", File: name, Line: lineNo, Message: "missing custom_id"}
		}
		lines = append(lines, Line{CustomID: l.CustomID, Method: l.Method, URL: l.URL, Body: l.Body})
	}
	if err := sc.Err(); err != nil {
		return nil, errors.WrapIO("read", name, err)
	}
	return lines, nil
}

// Results is the parsed content of a batch output file.
type Results struct {
	Texts   map[string]string
	Vectors map[string][]float64
	// Failed counts lines that carried an error or no usable output.
	Failed int
}

type resultLine struct {
	CustomID string `json:"custom_id"`
	Response *struct {
		StatusCode int             `json:"status_code"`
		Body       json.RawMessage `json:"body"`
	} `json:"response"`
	Body  json.RawMessage `json:"body"`
	Error json.RawMessage `json:"error"`
}

type resultBody struct {
	OutputText string `json:"output_text"`
	Output     []struct {
		Type    string `json:"type"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// text extracts generated text from a responses, or chat completions body.
func (b resultBody) text() string {
	if s := strings.TrimSpace(b.OutputText); s != "" {
		return s
	}
	for _, item := range b.Output {
		if item.Type != "message" {
			continue
		}
		for _, c := range item.Content {
			if (c.Type == "output_text" || c.Type == "text") && strings.TrimSpace(c.Text) != "" {
				return strings.TrimSpace(c.Text)
			}
		}
	}
	if len(b.Choices) > 0 {
		return strings.TrimSpace(b.Choices[0].Message.Content)
	}
	return ""
}

// ParseResults reads a batch output file. Blank lines are skipped; a line
// that is not JSON fails the whole parse.
func ParseResults(r io.Reader, name string) (*Results, error) {
	res := &Results{Texts: make(map[string]string), Vectors: make(map[string][]float64)}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		var line resultLine
		if err := json.Unmarshal(raw, &line); err != nil {
			return nil, &errors.ParseError{Format: "jsonl", File: name, Line: lineNo, Message: err.Error(), Err: err}
		}

		body := line.Body
		if line.Response != nil && len(line.Response.Body) > 0 {
			body = line.Response.Body
		}
		if line.CustomID == "" || len(body) == 0 || string(body) == "null" {
			res.Failed++
			continue
		}

		var b resultBody
		if err := json.Unmarshal(body, &b); err != nil {
			res.Failed++
			continue
		}
		switch {
		case len(b.Data) > 0 && len(b.Data[0].Embedding) > 0:
			res.Vectors[line.CustomID] = b.Data[0].Embedding
		case b.text() != "":
			res.Texts[line.CustomID] = b.text()
		default:
			res.Failed++
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.WrapIO("read", name, err)
	}
	return res, nil
}
