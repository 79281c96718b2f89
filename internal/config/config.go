package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	Doc          string `env:"DOC"`
	DataDir      string `env:"DATA_DIR" envDefault:"./data"`
	JinaAPIKey   string `env:"JINA_API_KEY"`
	JinaURL      string `env:"JINA_URL" envDefault:"https://api.jina.ai/v1/embeddings"`
	EmbedModel   string `env:"EMBED_MODEL" envDefault:"jina-embeddings-v3"`
	EmbedBatch   int    `env:"EMBED_BATCH" envDefault:"32"`
	ChunkSize    int    `env:"CHUNK_SIZE" envDefault:"512"`
	ChunkOverlap int    `env:"CHUNK_OVERLAP" envDefault:"50"`
	ChunkMethod  string `env:"CHUNK_METHOD"`
	TopK         int    `env:"TOP_K" envDefault:"3"`
	Metric       string `env:"DISTANCE_METRIC" envDefault:"cosine"`
	MetadataFile string
	DBFile       string
}

func Init(cfg interface{}) error {
	return env.Parse(cfg)
}

// Validate проверяет параметры, без которых приложение не может работать
func (c *Config) Validate() error {
	if c.JinaAPIKey == "" {
		return fmt.Errorf("JINA_API_KEY is required (put it in .env or environment)")
	}
	if c.TopK <= 0 {
		return fmt.Errorf("TOP_K must be positive, got %d", c.TopK)
	}
	if c.EmbedBatch <= 0 {
		return fmt.Errorf("EMBED_BATCH must be positive, got %d", c.EmbedBatch)
	}
	switch c.Metric {
	case "cosine", "l2":
	default:
		return fmt.Errorf("DISTANCE_METRIC must be cosine or l2, got %q", c.Metric)
	}
	return nil
}
