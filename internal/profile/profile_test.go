package profile

import (
	"os"
	"testing"
)

func TestProfileDefaults(t *testing.T) {
	clearEnvVars()

	profile := &Profile{}
	profile.FromEnv()

	tests := []struct {
		name     string
		expected string
		actual   string
	}{
		{"AIEmbeddingProvider default", "siliconflow", profile.AIEmbeddingProvider},
		{"AISiliconFlowBaseURL default", "https://api.siliconflow.cn/v1", profile.AISiliconFlowBaseURL},
		{"AIOpenAIBaseURL default", "https://api.openai.com/v1", profile.AIOpenAIBaseURL},
		{"AIEmbeddingModel default", "BAAI/bge-m3", profile.AIEmbeddingModel},
		{"AIRerankModel default", "BAAI/bge-reranker-v2-m3", profile.AIRerankModel},
		{"RetrievalScheme default", "default", profile.RetrievalScheme},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.actual != tt.expected {
				t.Errorf("%s: expected %q, got %q", tt.name, tt.expected, tt.actual)
			}
		})
	}

	if profile.AIEmbeddingDims != 1024 {
		t.Errorf("AIEmbeddingDims: expected 1024, got %d", profile.AIEmbeddingDims)
	}
	if profile.AIRerankEnabled {
		t.Error("AIRerankEnabled should be false by default")
	}
}

func TestProfileFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		envVar   string
		envValue string
		field    func(*Profile) string
		expected string
	}{
		{
			name:     "LORESEEK_AI_EMBEDDING_PROVIDER",
			envVar:   "LORESEEK_AI_EMBEDDING_PROVIDER",
			envValue: "openai",
			field:    func(p *Profile) string { return p.AIEmbeddingProvider },
			expected: "openai",
		},
		{
			name:     "LORESEEK_AI_SILICONFLOW_API_KEY",
			envVar:   "LORESEEK_AI_SILICONFLOW_API_KEY",
			envValue: "test-key-123",
			field:    func(p *Profile) string { return p.AISiliconFlowAPIKey },
			expected: "test-key-123",
		},
		{
			name:     "LORESEEK_AI_OPENAI_BASE_URL",
			envVar:   "LORESEEK_AI_OPENAI_BASE_URL",
			envValue: "https://custom.openai.proxy/v1",
			field:    func(p *Profile) string { return p.AIOpenAIBaseURL },
			expected: "https://custom.openai.proxy/v1",
		},
		{
			name:     "LORESEEK_AI_EMBEDDING_MODEL",
			envVar:   "LORESEEK_AI_EMBEDDING_MODEL",
			envValue: "custom-embedding-model",
			field:    func(p *Profile) string { return p.AIEmbeddingModel },
			expected: "custom-embedding-model",
		},
		{
			name:     "LORESEEK_RETRIEVAL_SCHEME",
			envVar:   "LORESEEK_RETRIEVAL_SCHEME",
			envValue: "smart",
			field:    func(p *Profile) string { return p.RetrievalScheme },
			expected: "smart",
		},
		{
			name:     "LORESEEK_DSN",
			envVar:   "LORESEEK_DSN",
			envValue: "postgres://localhost:5432/loreseek",
			field:    func(p *Profile) string { return p.DSN },
			expected: "postgres://localhost:5432/loreseek",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnvVars()
			os.Setenv(tt.envVar, tt.envValue)
			defer os.Unsetenv(tt.envVar)

			profile := &Profile{}
			profile.FromEnv()

			actual := tt.field(profile)
			if actual != tt.expected {
				t.Errorf("%s: expected %q, got %q", tt.name, tt.expected, actual)
			}
		})
	}
}

func TestProfileValidate(t *testing.T) {
	tests := []struct {
		name      string
		profile   Profile
		expectErr bool
	}{
		{
			name:      "postgres with DSN",
			profile:   Profile{Mode: "dev", Driver: "postgres", DSN: "postgres://localhost/loreseek"},
			expectErr: false,
		},
		{
			name:      "postgres without DSN",
			profile:   Profile{Mode: "dev", Driver: "postgres"},
			expectErr: true,
		},
		{
			name:      "unknown driver",
			profile:   Profile{Mode: "dev", Driver: "mysql", DSN: "whatever"},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.profile.Validate()
			if tt.expectErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.expectErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func clearEnvVars() {
	envVars := []string{
		"LORESEEK_AI_EMBEDDING_PROVIDER",
		"LORESEEK_AI_SILICONFLOW_API_KEY",
		"LORESEEK_AI_SILICONFLOW_BASE_URL",
		"LORESEEK_AI_OPENAI_API_KEY",
		"LORESEEK_AI_OPENAI_BASE_URL",
		"LORESEEK_AI_EMBEDDING_MODEL",
		"LORESEEK_AI_EMBEDDING_DIMENSIONS",
		"LORESEEK_AI_RERANK_ENABLED",
		"LORESEEK_AI_RERANK_MODEL",
		"LORESEEK_RETRIEVAL_SCHEME",
		"LORESEEK_DSN",
		"LORESEEK_DRIVER",
	}
	for _, envVar := range envVars {
		os.Unsetenv(envVar)
	}
}
