package newsapi

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"briefly/pkg/config"
)

// defaultEndpoint is the article search endpoint of the news API.
const defaultEndpoint = "https://eventregistry.org/api/v1/article/getArticles"

// Config holds the configuration for the news API client.
type Config struct {
	// APIKey authenticates requests against the news API. Required.
	APIKey string

	// Endpoint is the article search URL.
	// Default: the Event Registry getArticles endpoint.
	Endpoint string

	// Timeout is the maximum duration for a single search request.
	// Default: 30s
	Timeout time.Duration

	// MaxItems caps the number of results taken per topic query.
	// Default: 100
	MaxItems int

	// Sources restricts results to these source domains (optional).
	Sources []string
}

// DefaultConfig returns the default client configuration (no API key).
func DefaultConfig() Config {
	return Config{
		Endpoint: defaultEndpoint,
		Timeout:  30 * time.Second,
		MaxItems: 100,
	}
}

// LoadConfigFromEnv loads the client configuration from environment variables.
//
// Environment variables:
//   - NEWS_API_KEY: API key (required)
//   - NEWS_API_URL: search endpoint (default: Event Registry)
//   - NEWS_API_TIMEOUT: request timeout (default: 30s)
//   - NEWS_API_MAX_ITEMS: per-topic result cap (default: 100)
//   - NEWS_API_SOURCES: comma-separated source domains (optional)
//
// Returns an error when the API key is missing; collection cannot run
// without credentials and the pipeline is expected to fail fast.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	cfg.APIKey = config.GetEnvString("NEWS_API_KEY", "")
	if cfg.APIKey == "" {
		return cfg, fmt.Errorf("NEWS_API_KEY not set")
	}

	cfg.Endpoint = config.GetEnvString("NEWS_API_URL", cfg.Endpoint)
	cfg.Timeout = config.GetEnvDuration("NEWS_API_TIMEOUT", cfg.Timeout)
	cfg.MaxItems = config.GetEnvInt("NEWS_API_MAX_ITEMS", cfg.MaxItems)
	cfg.Sources = config.GetEnvStringList("NEWS_API_SOURCES", nil)

	return cfg, nil
}

// TopicQuery describes one search the collector runs per invocation.
// Fields map onto the news API's complex query language; empty fields
// are omitted from the request.
type TopicQuery struct {
	// Name tags collected articles (stored as sub_category).
	Name string `yaml:"name"`

	// Category is the category recorded on collected articles
	// (e.g. "geopolitics", "singapore").
	Category string `yaml:"category"`

	// Keywords are OR-ed title keywords.
	Keywords []string `yaml:"keywords"`

	// CategoryURIs are OR-ed taxonomy category URIs.
	CategoryURIs []string `yaml:"category_uris"`

	// ConceptURIs are AND-ed concept URIs.
	ConceptURIs []string `yaml:"concept_uris"`
}

// LoadTopics reads topic queries from a YAML file. An empty path
// returns the default topics.
func LoadTopics(path string) ([]TopicQuery, error) {
	if path == "" {
		return DefaultTopics(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read topics file: %w", err)
	}

	var topics []TopicQuery
	if err := yaml.Unmarshal(data, &topics); err != nil {
		return nil, fmt.Errorf("parse topics file: %w", err)
	}
	if len(topics) == 0 {
		return nil, fmt.Errorf("topics file %s defines no topics", path)
	}
	return topics, nil
}

// DefaultTopics mirrors the standing searches the collection job runs
// when no topic file is configured.
func DefaultTopics() []TopicQuery {
	return []TopicQuery{
		{
			Name:     "security",
			Category: "geopolitics",
			CategoryURIs: []string{
				"dmoz/Society/Politics",
				"dmoz/Society/Issues/Warfare_and_Conflict",
				"dmoz/Regional/Asia",
				"dmoz/World",
			},
		},
		{
			Name:         "tariffs",
			Category:     "geopolitics",
			Keywords:     []string{"tariff", "tariffs", "geopolitics", "foreign policy", "diplomacy"},
			CategoryURIs: []string{"dmoz/Business"},
			ConceptURIs:  []string{"https://en.wikipedia.org/wiki/Tariff"},
		},
		{
			Name:         "singapore",
			Category:     "singapore",
			Keywords:     []string{"singapore"},
			CategoryURIs: []string{"dmoz/Regional/Asia"},
		},
	}
}
