package ai

import (
	"errors"

	"github.com/hrygo/loreseek/internal/profile"
)

// Config represents AI configuration.
type Config struct {
	Embedding EmbeddingConfig
	Reranker  RerankerConfig
}

// EmbeddingConfig represents vector embedding configuration.
type EmbeddingConfig struct {
	Provider   string // siliconflow, openai
	Model      string // BAAI/bge-m3
	Dimensions int    // 1024
	APIKey     string
	BaseURL    string

	// RequestsPerSecond bounds outbound embedding calls. Zero disables limiting.
	RequestsPerSecond float64
	// CacheCapacity is the query-embedding cache size. Zero disables caching.
	CacheCapacity int
}

// RerankerConfig represents reranker configuration.
type RerankerConfig struct {
	Enabled  bool
	Provider string // siliconflow
	Model    string // BAAI/bge-reranker-v2-m3
	APIKey   string
	BaseURL  string
}

// NewConfigFromProfile creates AI config from profile.
func NewConfigFromProfile(p *profile.Profile) *Config {
	cfg := &Config{}

	cfg.Embedding = EmbeddingConfig{
		Provider:          p.AIEmbeddingProvider,
		Model:             p.AIEmbeddingModel,
		Dimensions:        p.AIEmbeddingDims,
		RequestsPerSecond: 10,
		CacheCapacity:     512,
	}

	switch p.AIEmbeddingProvider {
	case "siliconflow":
		cfg.Embedding.APIKey = p.AISiliconFlowAPIKey
		cfg.Embedding.BaseURL = p.AISiliconFlowBaseURL
	case "openai":
		cfg.Embedding.APIKey = p.AIOpenAIAPIKey
		cfg.Embedding.BaseURL = p.AIOpenAIBaseURL
	}

	cfg.Reranker = RerankerConfig{
		Enabled:  p.AIRerankEnabled && p.AISiliconFlowAPIKey != "",
		Provider: "siliconflow",
		Model:    p.AIRerankModel,
		APIKey:   p.AISiliconFlowAPIKey,
		BaseURL:  p.AISiliconFlowBaseURL,
	}

	return cfg
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Embedding.Provider == "" {
		return errors.New("embedding provider is required")
	}

	if c.Embedding.APIKey == "" {
		return errors.New("embedding API key is required")
	}

	if c.Embedding.Dimensions <= 0 {
		return errors.New("embedding dimensions must be positive")
	}

	return nil
}
