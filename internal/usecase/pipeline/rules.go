package pipeline

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"briefly/internal/domain/entity"
	"briefly/pkg/config"
)

// Rules is the static rule set the filter stage applies. An article is
// excluded when ANY rule matches, which makes the evaluation
// order-independent. Zero values disable the corresponding rule.
type Rules struct {
	// BlockedKeywords excludes articles whose title contains any of
	// these (case-insensitive).
	BlockedKeywords []string `yaml:"blocked_keywords"`

	// AllowedCategories, when non-empty, excludes articles whose
	// category is not in the list (case-insensitive).
	AllowedCategories []string `yaml:"allowed_categories"`

	// MaxAge excludes articles published longer ago than this.
	MaxAge time.Duration `yaml:"max_age"`

	// MinBodyLength excludes articles with shorter bodies.
	MinBodyLength int `yaml:"min_body_length"`

	// MinSentiment excludes articles with sentiment below this value.
	// Nil disables the rule (zero is a meaningful sentiment).
	MinSentiment *float64 `yaml:"min_sentiment"`
}

// DefaultRules mirrors the standing filter of the collection job:
// drop very negative and very short articles.
func DefaultRules() Rules {
	minSentiment := -0.5
	return Rules{
		MinBodyLength: 500,
		MinSentiment:  &minSentiment,
	}
}

// LoadRules reads a rule set from a YAML file. An empty path returns the
// defaults.
func LoadRules(path string) (Rules, error) {
	if path == "" {
		return DefaultRules(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read rules file: %w", err)
	}

	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return Rules{}, fmt.Errorf("parse rules file: %w", err)
	}
	return rules, nil
}

// LoadRulesFromEnv loads rules from the file at path and layers
// environment overrides on top. A set variable replaces the loaded
// value wholesale; unset variables leave the file's rules untouched.
//
// Environment variables:
//   - FILTER_BLOCKED_KEYWORDS: comma-separated title keywords
//   - FILTER_ALLOWED_CATEGORIES: comma-separated category allow list
//   - FILTER_MAX_AGE: duration string, e.g. "72h"
//   - FILTER_MIN_BODY_LENGTH: integer character count
//   - FILTER_MIN_SENTIMENT: float in [-1, 1]
func LoadRulesFromEnv(path string) (Rules, error) {
	rules, err := LoadRules(path)
	if err != nil {
		return Rules{}, err
	}

	rules.BlockedKeywords = config.GetEnvStringList("FILTER_BLOCKED_KEYWORDS", rules.BlockedKeywords)
	rules.AllowedCategories = config.GetEnvStringList("FILTER_ALLOWED_CATEGORIES", rules.AllowedCategories)
	rules.MaxAge = config.GetEnvDuration("FILTER_MAX_AGE", rules.MaxAge)
	rules.MinBodyLength = config.GetEnvInt("FILTER_MIN_BODY_LENGTH", rules.MinBodyLength)
	if os.Getenv("FILTER_MIN_SENTIMENT") != "" {
		fallback := 0.0
		if rules.MinSentiment != nil {
			fallback = *rules.MinSentiment
		}
		minSentiment := config.GetEnvFloat64("FILTER_MIN_SENTIMENT", fallback)
		rules.MinSentiment = &minSentiment
	}

	return rules, nil
}

// UnmarshalYAML decodes a rule set, accepting Go duration strings
// ("72h", "30m") for max_age.
func (r *Rules) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		BlockedKeywords   []string `yaml:"blocked_keywords"`
		AllowedCategories []string `yaml:"allowed_categories"`
		MaxAge            string   `yaml:"max_age"`
		MinBodyLength     int      `yaml:"min_body_length"`
		MinSentiment      *float64 `yaml:"min_sentiment"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	r.BlockedKeywords = raw.BlockedKeywords
	r.AllowedCategories = raw.AllowedCategories
	r.MinBodyLength = raw.MinBodyLength
	r.MinSentiment = raw.MinSentiment
	if raw.MaxAge != "" {
		d, err := time.ParseDuration(raw.MaxAge)
		if err != nil {
			return fmt.Errorf("parse max_age: %w", err)
		}
		r.MaxAge = d
	}
	return nil
}

// Match reports whether the article should be excluded and, if so, which
// rule matched first (for logging only; evaluation is order-independent
// because any single match excludes).
func (r Rules) Match(article *entity.Article, now time.Time) (bool, string) {
	title := strings.ToLower(article.Title)
	for _, keyword := range r.BlockedKeywords {
		if keyword != "" && strings.Contains(title, strings.ToLower(keyword)) {
			return true, fmt.Sprintf("blocked keyword %q", keyword)
		}
	}

	if len(r.AllowedCategories) > 0 && !containsFold(r.AllowedCategories, article.Category) {
		return true, fmt.Sprintf("category %q not allowed", article.Category)
	}

	if r.MaxAge > 0 && !article.PublishedAt.IsZero() && now.Sub(article.PublishedAt) > r.MaxAge {
		return true, "older than max age"
	}

	if r.MinBodyLength > 0 && len(article.Body) < r.MinBodyLength {
		return true, "body too short"
	}

	if r.MinSentiment != nil && article.Sentiment < *r.MinSentiment {
		return true, "sentiment below minimum"
	}

	return false, ""
}

func containsFold(haystack []string, needle string) bool {
	for _, s := range haystack {
		if strings.EqualFold(s, needle) {
			return true
		}
	}
	return false
}
