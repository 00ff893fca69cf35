// Package config loads settings for the places CLI from config files,
// .env files and the environment.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/helgo/places/pkg/constants"
	"github.com/helgo/places/pkg/errors"
)

// EnvPrefix prefixes environment overrides of config keys, so
// PLACES_MAX_KM sets max_km.
const EnvPrefix = "PLACES"

// Config holds the resolved settings.
type Config struct {
	// Global flags
	Verbose  bool
	Quiet    bool
	NoColor  bool
	Format   string
	LogLevel string

	// Logging
	LogFormat string
	LogOutput string

	ConfigFile string

	// Dataset and vocabulary
	Dataset  string
	Taxonomy string
	RawDir   string
	BatchDir string

	// Locality
	City     string
	Country  string
	Locality string

	// HTTP
	UserAgent     string
	HTTPTimeout   time.Duration
	OverpassSleep time.Duration
	ZurichSleep   time.Duration
	WikidataSleep time.Duration

	// Passes
	LimitPerCategory int
	MaxKm            float64
	EnrichLimit      int
	EmbeddingDim     int
	EmbedChunk       int

	Endpoints Endpoints
	OpenAI    OpenAI
	Gemini    Gemini
}

// Endpoints overrides upstream URLs. Empty values keep the public
// endpoints.
type Endpoints struct {
	Nominatim string
	Overpass  string
	Zurich    string
	Wikidata  string
	Commons   string
}

// OpenAI holds OpenAI settings.
type OpenAI struct {
	APIKey           string
	BaseURL          string
	DescriptionModel string
	EmbeddingModel   string
}

// Gemini holds Gemini settings.
type Gemini struct {
	APIKey         string
	Model          string
	EmbeddingModel string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("dataset", constants.DefaultDatasetPath)
	v.SetDefault("raw_dir", "data/raw")
	v.SetDefault("batch_dir", "data/batches")
	v.SetDefault("city", constants.DefaultCity)
	v.SetDefault("country", constants.DefaultCountry)
	v.SetDefault("locality", constants.DefaultCity)
	v.SetDefault("user_agent", constants.DefaultUserAgent)
	v.SetDefault("http_timeout", constants.DefaultHTTPTimeout)
	v.SetDefault("sleep.overpass", time.Second)
	v.SetDefault("sleep.zurich", 300*time.Millisecond)
	v.SetDefault("sleep.wikidata", constants.DefaultSleep)
	v.SetDefault("limit_per_category", constants.DefaultLimitPerCategory)
	v.SetDefault("max_km", constants.DefaultMaxKm)
	v.SetDefault("enrich_limit", constants.DefaultEnrichLimit)
	v.SetDefault("embedding_dim", 0)
	v.SetDefault("embed_chunk", 100)
	v.SetDefault("openai.description_model", constants.DefaultChatModel)
	v.SetDefault("openai.embedding_model", constants.DefaultEmbedModel)
	v.SetDefault("gemini.model", constants.DefaultGeminiModel)
	v.SetDefault("gemini.embedding_model", constants.DefaultGeminiEmbed)
}

// Load resolves configuration in order of precedence:
//  1. Command-line flags (applied later by the caller)
//  2. Environment variables
//  3. .env files
//  4. Config file (./.places.yaml or ~/.places.yaml, or configFile)
//  5. Defaults
func Load(configFile string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if err := bindAPIKeys(v); err != nil {
		return nil, err
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("config", "read "+configFile, err)
		}
	} else {
		v.SetConfigName(".places")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.NewConfigError("config", "read config file", err)
			}
		}
	}

	cfg := &Config{
		ConfigFile: v.ConfigFileUsed(),

		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", "stderr"),
		LogLevel:  os.Getenv("LOG_LEVEL"),

		Dataset:  v.GetString("dataset"),
		Taxonomy: v.GetString("taxonomy"),
		RawDir:   v.GetString("raw_dir"),
		BatchDir: v.GetString("batch_dir"),

		City:     v.GetString("city"),
		Country:  v.GetString("country"),
		Locality: v.GetString("locality"),

		UserAgent:     v.GetString("user_agent"),
		HTTPTimeout:   v.GetDuration("http_timeout"),
		OverpassSleep: v.GetDuration("sleep.overpass"),
		ZurichSleep:   v.GetDuration("sleep.zurich"),
		WikidataSleep: v.GetDuration("sleep.wikidata"),

		LimitPerCategory: v.GetInt("limit_per_category"),
		MaxKm:            v.GetFloat64("max_km"),
		EnrichLimit:      v.GetInt("enrich_limit"),
		EmbeddingDim:     v.GetInt("embedding_dim"),
		EmbedChunk:       v.GetInt("embed_chunk"),

		Endpoints: Endpoints{
			Nominatim: v.GetString("endpoints.nominatim"),
			Overpass:  v.GetString("endpoints.overpass"),
			Zurich:    v.GetString("endpoints.zurich"),
			Wikidata:  v.GetString("endpoints.wikidata"),
			Commons:   v.GetString("endpoints.commons"),
		},
		OpenAI: OpenAI{
			APIKey:           v.GetString("openai.api_key"),
			BaseURL:          v.GetString("openai.base_url"),
			DescriptionModel: v.GetString("openai.description_model"),
			EmbeddingModel:   v.GetString("openai.embedding_model"),
		},
		Gemini: Gemini{
			APIKey:         v.GetString("gemini.api_key"),
			Model:          v.GetString("gemini.model"),
			EmbeddingModel: v.GetString("gemini.embedding_model"),
		},
	}
	if cfg.Taxonomy != "" && !filepath.IsAbs(cfg.Taxonomy) && cfg.ConfigFile != "" {
		cfg.Taxonomy = filepath.Join(filepath.Dir(cfg.ConfigFile), cfg.Taxonomy)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings no pass can run with.
func (c *Config) Validate() error {
	switch {
	case c.Dataset == "":
		return errors.NewValidationError("dataset", c.Dataset, "dataset path is required")
	case c.LimitPerCategory < 0:
		return errors.NewValidationError("limit_per_category", c.LimitPerCategory, "must be zero or positive")
	case c.MaxKm < 0:
		return errors.NewValidationError("max_km", c.MaxKm, "must be zero or positive")
	case c.EnrichLimit < 0:
		return errors.NewValidationError("enrich_limit", c.EnrichLimit, "must be zero or positive")
	case c.EmbeddingDim < 0:
		return errors.NewValidationError("embedding_dim", c.EmbeddingDim, "must be zero or positive")
	}
	return nil
}

// UpdateFromFlags applies parsed global flags. Flags win over every other
// source.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel, dataset string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	if dataset != "" {
		c.Dataset = dataset
	}
}

// loadEnvFiles loads .env then .env.local. Values already in the
// environment are not overwritten.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}

// bindAPIKeys maps the conventional unprefixed key variables.
func bindAPIKeys(v *viper.Viper) error {
	bindings := map[string][]string{
		"openai.api_key":  {"OPENAI_API_KEY"},
		"openai.base_url": {"OPENAI_BASE_URL"},
		"gemini.api_key":  {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return errors.NewConfigError("config", "bind "+key, err)
		}
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
