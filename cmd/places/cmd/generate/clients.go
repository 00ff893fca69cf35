package generate

import (
	"github.com/helgo/places/internal/appcontext"
	"github.com/helgo/places/internal/generate"
	"github.com/helgo/places/internal/generate/batch"
	"github.com/helgo/places/internal/generate/gemini"
	"github.com/helgo/places/pkg/errors"
	"github.com/helgo/places/pkg/sources"
)

// Providers for synchronous generation.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

func models(app appcontext.Interface) batch.Models {
	cfg := app.Config()
	return batch.Models{
		Chat:       cfg.OpenAI.DescriptionModel,
		Embedding:  cfg.OpenAI.EmbeddingModel,
		Dimensions: cfg.EmbeddingDim,
	}
}

func openAIClient(app appcontext.Interface, opts ...batch.Option) (*batch.Client, error) {
	cfg := app.Config()
	opts = append([]batch.Option{batch.WithModels(models(app))}, opts...)
	if cfg.OpenAI.BaseURL != "" {
		opts = append(opts, batch.WithBaseURL(cfg.OpenAI.BaseURL))
	}
	return batch.New(cfg.OpenAI.APIKey, opts...)
}

// provider is a synchronous model backend.
type provider interface {
	generate.Describer
	generate.Embedder
}

// newProvider returns the synchronous backend and the source id recorded
// on attached values.
func newProvider(app appcontext.Interface, name string) (provider, sources.ID, error) {
	cfg := app.Config()
	switch name {
	case ProviderOpenAI:
		c, err := openAIClient(app)
		if err != nil {
			return nil, "", err
		}
		return c, sources.OpenAI, nil
	case ProviderGemini:
		c, err := gemini.New(cfg.Gemini.APIKey,
			gemini.WithModel(cfg.Gemini.Model),
			gemini.WithEmbeddingModel(cfg.Gemini.EmbeddingModel, cfg.EmbeddingDim))
		if err != nil {
			return nil, "", err
		}
		return c, sources.Gemini, nil
	default:
		return nil, "", errors.NewValidationError("provider", name, "must be openai or gemini")
	}
}
