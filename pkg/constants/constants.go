// Package constants provides shared constants used throughout the places codebase:
// timeouts, limits, file permissions and the upstream defaults each pass falls
// back to when neither config nor flags set a value.
package constants

import "time"

// Timeout constants
const (
	// DefaultHTTPTimeout is the per-request timeout for upstream APIs
	DefaultHTTPTimeout = 30 * time.Second

	// OverpassTimeout covers the server-side [timeout:120] plus transfer time
	OverpassTimeout = 180 * time.Second

	// BatchPollInterval is the pause between batch status checks
	BatchPollInterval = 10 * time.Second

	// BatchPollTimeout bounds how long a poll loop waits for a batch
	BatchPollTimeout = 24 * time.Hour

	// RetryBackoff is the linear backoff step applied after a 429
	RetryBackoff = 1500 * time.Millisecond

	// MaxRetryBackoff caps a single backoff wait
	MaxRetryBackoff = 30 * time.Second
)

// File permission constants
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Limit constants
const (
	// MaxRetries is the number of attempts for a rate-limited request
	MaxRetries = 3

	// MaxConcurrentFetches bounds parallel per-category catalog fetches
	MaxConcurrentFetches = 4

	// DefaultLimitPerCategory is the first-pass cap per category
	DefaultLimitPerCategory = 40

	// DefaultEnrichLimit is the number of knowledge lookups per enrich run
	DefaultEnrichLimit = 200

	// DefaultMaxKm is the enrichment match radius
	DefaultMaxKm = 2.0

	// CandidateSearchLimit is the number of knowledge-base hits fetched per place
	CandidateSearchLimit = 5

	// MaxDescriptionTokens bounds generated descriptions
	MaxDescriptionTokens = 50
)

// Rate limiting constants
const (
	// DefaultSleep is the pause between Overpass category queries and knowledge lookups
	DefaultSleep = 500 * time.Millisecond

	// BurstSize is the token bucket burst size for rate limiting
	BurstSize = 1

	// BreakerFailures trips the knowledge-source breaker after this many consecutive failures
	BreakerFailures = 5

	// BreakerCooldown is how long a tripped breaker stays open
	BreakerCooldown = 30 * time.Second
)

// Defaults for upstream endpoints and files
const (
	DefaultDatasetPath  = "data/places_zurich.json"
	DefaultUserAgent    = "places-builder/1.0 (+https://github.com/helgo/places)"
	DefaultCity         = "Zurich"
	DefaultCountry      = "Switzerland"
	NominatimURL        = "https://nominatim.openstreetmap.org/search"
	OverpassURL         = "https://overpass-api.de/api/interpreter"
	ZurichCatalogURL    = "https://www.zuerich.com/en/api/v2/data"
	WikidataAPIURL      = "https://www.wikidata.org/w/api.php"
	CommonsAPIURL       = "https://commons.wikimedia.org/w/api.php"
	DefaultChatModel    = "gpt-4o-mini"
	DefaultEmbedModel   = "text-embedding-3-small"
	DefaultGeminiModel  = "gemini-2.0-flash"
	DefaultGeminiEmbed  = "text-embedding-004"
	DefaultBatchWindow  = "24h"
	MapsURLPrefix       = "https://maps.google.com/?q="
	DefaultLanguage     = "en"
	FallbackPlaceholder = "place"
)
