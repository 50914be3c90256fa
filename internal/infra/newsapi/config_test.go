package newsapi

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromEnv_RequiresAPIKey(t *testing.T) {
	t.Setenv("NEWS_API_KEY", "")

	_, err := LoadConfigFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NEWS_API_KEY")
}

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	t.Setenv("NEWS_API_KEY", "secret")
	t.Setenv("NEWS_API_URL", "")
	t.Setenv("NEWS_API_TIMEOUT", "")
	t.Setenv("NEWS_API_MAX_ITEMS", "")
	t.Setenv("NEWS_API_SOURCES", "")

	cfg, err := LoadConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, defaultEndpoint, cfg.Endpoint)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 100, cfg.MaxItems)
	assert.Nil(t, cfg.Sources)
}

func TestLoadConfigFromEnv_Overrides(t *testing.T) {
	t.Setenv("NEWS_API_KEY", "secret")
	t.Setenv("NEWS_API_URL", "https://example.test/search")
	t.Setenv("NEWS_API_TIMEOUT", "5s")
	t.Setenv("NEWS_API_MAX_ITEMS", "25")
	t.Setenv("NEWS_API_SOURCES", "reuters.com, straitstimes.com")

	cfg, err := LoadConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "https://example.test/search", cfg.Endpoint)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 25, cfg.MaxItems)
	assert.Equal(t, []string{"reuters.com", "straitstimes.com"}, cfg.Sources)
}

func TestLoadTopics_EmptyPathReturnsDefaults(t *testing.T) {
	topics, err := LoadTopics("")
	require.NoError(t, err)
	require.Len(t, topics, 3)

	assert.Equal(t, "geopolitics", topics[0].Category)
	assert.Equal(t, "singapore", topics[2].Category)
}

func TestLoadTopics_ReadsYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topics.yaml")
	content := `
- name: energy
  category: geopolitics
  keywords: [oil, gas, pipeline]
  concept_uris: ["https://en.wikipedia.org/wiki/Energy_security"]
- name: housing
  category: singapore
  keywords: [hdb]
  category_uris: ["dmoz/Regional/Asia"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	topics, err := LoadTopics(path)
	require.NoError(t, err)
	require.Len(t, topics, 2)

	assert.Equal(t, "energy", topics[0].Name)
	assert.Equal(t, []string{"oil", "gas", "pipeline"}, topics[0].Keywords)
	assert.Equal(t, []string{"https://en.wikipedia.org/wiki/Energy_security"}, topics[0].ConceptURIs)
	assert.Equal(t, "housing", topics[1].Name)
	assert.Equal(t, []string{"dmoz/Regional/Asia"}, topics[1].CategoryURIs)
}

func TestLoadTopics_RejectsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topics.yaml")
	require.NoError(t, os.WriteFile(path, []byte("[]\n"), 0o600))

	_, err := LoadTopics(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no topics")
}

func TestLoadTopics_MissingFile(t *testing.T) {
	_, err := LoadTopics(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
