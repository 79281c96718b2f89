package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		JinaAPIKey: "key",
		TopK:       3,
		EmbedBatch: 32,
		Metric:     "cosine",
	}
}

func TestInit_Defaults(t *testing.T) {
	t.Setenv("JINA_API_KEY", "key")

	cfg := Config{}
	require.NoError(t, Init(&cfg))

	assert.Equal(t, "https://api.jina.ai/v1/embeddings", cfg.JinaURL)
	assert.Equal(t, "jina-embeddings-v3", cfg.EmbedModel)
	assert.Equal(t, 512, cfg.ChunkSize)
	assert.Equal(t, 50, cfg.ChunkOverlap)
	assert.Equal(t, 3, cfg.TopK)
	assert.Equal(t, "cosine", cfg.Metric)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"l2 metric", func(c *Config) { c.Metric = "l2" }, false},
		{"missing api key", func(c *Config) { c.JinaAPIKey = "" }, true},
		{"zero top-k", func(c *Config) { c.TopK = 0 }, true},
		{"zero batch", func(c *Config) { c.EmbedBatch = 0 }, true},
		{"unknown metric", func(c *Config) { c.Metric = "dot" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
