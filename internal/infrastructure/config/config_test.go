package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "lexical", cfg.Search.Strategy)
	assert.Equal(t, 5, cfg.Search.PageSize)
	assert.InDelta(t, 1.0, cfg.Search.TitleScore, 1e-9)
	assert.InDelta(t, 0.8, cfg.Search.PartialTitleScore, 1e-9)
	assert.InDelta(t, 0.6, cfg.Search.BodyScore, 1e-9)
	assert.InDelta(t, 0.8, cfg.Search.HighConfidence, 1e-9)
	assert.Equal(t, []string{"рис"}, cfg.Search.AmbiguousTerms)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, 1024, cfg.Webhook.MaxTextLength)
	assert.Equal(t, 1024, cfg.Webhook.MaxUtteranceLength)
	assert.Equal(t, "none", cfg.AI.Provider)
	require.NoError(t, validateConfig(cfg))
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"unknown strategy", func(c *Config) { c.Search.Strategy = "bm25" }, "unknown search strategy"},
		{"page size", func(c *Config) { c.Search.PageSize = 0 }, "page size"},
		{"score range", func(c *Config) { c.Search.HighConfidence = 1.5 }, "high_confidence"},
		{"semantic without provider", func(c *Config) { c.Search.Strategy = "semantic" }, "requires an ai provider"},
		{"openrouter key", func(c *Config) { c.AI.Provider = "openrouter" }, "api key"},
		{"cache backend", func(c *Config) { c.Cache.Backend = "memcached" }, "cache backend"},
		{"analyzer", func(c *Config) { c.NLP.Analyzer = "pymorphy" }, "nlp analyzer"},
		{"webhook length", func(c *Config) { c.Webhook.MaxTextLength = 10 }, "too small"},
		{"utterance length", func(c *Config) { c.Webhook.MaxUtteranceLength = 0 }, "max utterance length"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("RECIPES_FILE", "/data/recipes.json")
	t.Setenv("APP_SEARCH_PAGE_SIZE", "7")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "/data/recipes.json", cfg.Corpus.Path)
	assert.Equal(t, 7, cfg.Search.PageSize)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	t.Setenv("SEARCH_STRATEGY", "bogus")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", maskAPIKey("short"))
	assert.Equal(t, "sk-o...7890", maskAPIKey("sk-or-1234567890"))
}
