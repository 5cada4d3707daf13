package ai

import (
	"context"
	"testing"

	"github.com/hrygo/loreseek/internal/profile"
)

// TestNewEmbeddingService tests service creation.
func TestNewEmbeddingService(t *testing.T) {
	cfg := &EmbeddingConfig{
		Provider:   "siliconflow",
		Model:      "BAAI/bge-m3",
		Dimensions: 1024,
		APIKey:     "test-key",
		BaseURL:    "https://api.siliconflow.cn/v1",
	}

	service, err := NewEmbeddingService(cfg)
	if err != nil {
		t.Fatalf("NewEmbeddingService() error = %v", err)
	}
	if service == nil {
		t.Fatal("NewEmbeddingService() returned nil")
	}
	if service.Dimensions() != 1024 {
		t.Errorf("Dimensions() = %d, want 1024", service.Dimensions())
	}
}

// TestNewEmbeddingService_UnsupportedProvider tests provider validation.
func TestNewEmbeddingService_UnsupportedProvider(t *testing.T) {
	cfg := &EmbeddingConfig{
		Provider: "unknown-provider",
		Model:    "some-model",
	}

	if _, err := NewEmbeddingService(cfg); err == nil {
		t.Error("expected error for unsupported provider, got nil")
	}
}

// TestNewConfigFromProfile tests profile to config mapping.
func TestNewConfigFromProfile(t *testing.T) {
	p := &profile.Profile{
		AIEmbeddingProvider:  "siliconflow",
		AIEmbeddingModel:     "BAAI/bge-m3",
		AIEmbeddingDims:      1024,
		AISiliconFlowAPIKey:  "sf-key",
		AISiliconFlowBaseURL: "https://api.siliconflow.cn/v1",
		AIRerankEnabled:      true,
		AIRerankModel:        "BAAI/bge-reranker-v2-m3",
	}

	cfg := NewConfigFromProfile(p)

	if cfg.Embedding.APIKey != "sf-key" {
		t.Errorf("Embedding.APIKey = %q, want %q", cfg.Embedding.APIKey, "sf-key")
	}
	if !cfg.Reranker.Enabled {
		t.Error("Reranker should be enabled when rerank is on and the API key is set")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

// TestConfigValidate tests validation failures.
func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing provider", Config{Embedding: EmbeddingConfig{APIKey: "k", Dimensions: 8}}},
		{"missing api key", Config{Embedding: EmbeddingConfig{Provider: "openai", Dimensions: 8}}},
		{"bad dimensions", Config{Embedding: EmbeddingConfig{Provider: "openai", APIKey: "k"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

// TestMockEmbeddingService_Deterministic verifies identical input produces
// identical vectors.
func TestMockEmbeddingService_Deterministic(t *testing.T) {
	mock := NewMockEmbeddingService(16)

	a, err := mock.Embed(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	b, err := mock.Embed(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}

	if len(a) != 16 || len(b) != 16 {
		t.Fatalf("expected 16-dim vectors, got %d and %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("vectors differ at %d: %f != %f", i, a[i], b[i])
		}
	}
}
