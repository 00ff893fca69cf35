// Package generate prepares model input for places and collects model
// output keyed by place id. The outputs feed enrich.AttachDescriptions and
// enrich.AttachEmbeddings; the models themselves live in the batch and
// gemini subpackages.
package generate

import (
	"context"
	"strings"

	"github.com/helgo/places/pkg/errors"
	"github.com/helgo/places/pkg/logging"
	"github.com/helgo/places/pkg/places"
)

// Kind selects what is generated.
type Kind string

// Generation kinds.
const (
	Descriptions Kind = "descriptions"
	Embeddings   Kind = "embeddings"
)

// Instructions is the system prompt for description generation.
const Instructions = "Write a compact, vivid, single-sentence description for a Zurich place. " +
	"Tone: helpful, travel-guide style."

// DescriptionInput renders the user prompt for p.
func DescriptionInput(p *places.Place) string {
	var b strings.Builder
	b.WriteString("Name: " + p.Name + "\n")
	b.WriteString("Category: " + string(p.Category) + "\n")
	b.WriteString("Tags: " + strings.Join(p.Tags, ", ") + "\n")
	b.WriteString("Notes: " + p.Description)
	return b.String()
}

// EmbeddingText renders the text embedded for p. The generated description
// is preferred over the source description.
func EmbeddingText(p *places.Place) string {
	desc := p.AIDescription
	if desc == "" {
		desc = p.Description
	}
	parts := make([]string, 0, 4)
	for _, s := range []string{p.Name, string(p.Category), strings.Join(p.Tags, ", "), desc} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " | ")
}

// Describer writes one description.
type Describer interface {
	Describe(ctx context.Context, instructions, input string) (string, error)
}

// Embedder embeds a batch of texts, returning one vector per text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// Selection filters the places a generation pass covers.
type Selection struct {
	// Missing restricts the pass to places whose output field is empty.
	Missing bool
	// Limit caps the number of places. Zero means all.
	Limit int
}

// Select returns the places of ds a pass of kind covers, in dataset order.
func Select(ds *places.Dataset, kind Kind, sel Selection) []*places.Place {
	var out []*places.Place
	for _, p := range ds.Places() {
		if sel.Limit > 0 && len(out) >= sel.Limit {
			break
		}
		if sel.Missing {
			if kind == Descriptions && p.AIDescription != "" {
				continue
			}
			if kind == Embeddings && len(p.Embedding) > 0 {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

// Describe runs d over ps. A failing place is logged and left out of the
// result; the pass continues.
func Describe(ctx context.Context, d Describer, ps []*places.Place) (map[string]string, error) {
	log := logging.FromContext(ctx)
	texts := make(map[string]string, len(ps))
	failed := 0
	for _, p := range ps {
		if err := ctx.Err(); err != nil {
			return texts, err
		}
		text, err := d.Describe(ctx, Instructions, DescriptionInput(p))
		if err != nil {
			if errors.IsAPIKeyError(err) {
				return texts, err
			}
			failed++
			log.Warn().Err(err).Str("place_id", p.ID).Bool("rate_limited", errors.IsRateLimited(err)).Msg("Description failed")
			continue
		}
		texts[p.ID] = text
	}
	log.Info().Int("described", len(texts)).Int("failed", failed).Msg("Generated descriptions")
	return texts, nil
}

// Embed runs e over ps in chunks of size. A failing chunk is logged and
// left out of the result.
func Embed(ctx context.Context, e Embedder, ps []*places.Place, size int) (map[string][]float64, error) {
	log := logging.FromContext(ctx)
	if size <= 0 {
		size = len(ps)
	}
	vectors := make(map[string][]float64, len(ps))
	failed := 0
	for start := 0; start < len(ps); start += size {
		if err := ctx.Err(); err != nil {
			return vectors, err
		}
		chunk := ps[start:min(start+size, len(ps))]
		texts := make([]string, len(chunk))
		for i, p := range chunk {
			texts[i] = EmbeddingText(p)
		}

		out, err := e.Embed(ctx, texts)
		if err == nil && len(out) != len(chunk) {
			err = &errors.ValidationError{Field: "embeddings", Value: len(out), Message: "count does not match input"}
		}
		if err != nil {
			if errors.IsAPIKeyError(err) {
				return vectors, err
			}
			failed += len(chunk)
			log.Warn().Err(err).Int("offset", start).Int("size", len(chunk)).Bool("rate_limited", errors.IsRateLimited(err)).Msg("Embedding chunk failed")
			continue
		}
		for i, p := range chunk {
			vectors[p.ID] = out[i]
		}
	}
	log.Info().Int("embedded", len(vectors)).Int("failed", failed).Msg("Generated embeddings")
	return vectors, nil
}
