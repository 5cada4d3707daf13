package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the retrieval engine.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Data is the data directory
	Data string
	// DSN points to where loreseek stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of the engine
	Version string

	// AI Configuration
	AIEmbeddingProvider  string // LORESEEK_AI_EMBEDDING_PROVIDER (default: siliconflow)
	AISiliconFlowAPIKey  string // LORESEEK_AI_SILICONFLOW_API_KEY
	AISiliconFlowBaseURL string // LORESEEK_AI_SILICONFLOW_BASE_URL (default: https://api.siliconflow.cn/v1)
	AIOpenAIAPIKey       string // LORESEEK_AI_OPENAI_API_KEY
	AIOpenAIBaseURL      string // LORESEEK_AI_OPENAI_BASE_URL (default: https://api.openai.com/v1)
	AIEmbeddingModel     string // LORESEEK_AI_EMBEDDING_MODEL (default: BAAI/bge-m3)
	AIEmbeddingDims      int    // LORESEEK_AI_EMBEDDING_DIMENSIONS (default: 1024)
	AIRerankEnabled      bool   // LORESEEK_AI_RERANK_ENABLED (default: false)
	AIRerankModel        string // LORESEEK_AI_RERANK_MODEL (default: BAAI/bge-reranker-v2-m3)

	// Retrieval Configuration
	RetrievalScheme string // LORESEEK_RETRIEVAL_SCHEME (default: default)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

func (p *Profile) IsDemo() bool {
	return p.Mode == "demo"
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from LORESEEK_* environment variables.
func (p *Profile) FromEnv() {
	p.AIEmbeddingProvider = getEnvOrDefault("LORESEEK_AI_EMBEDDING_PROVIDER", "siliconflow")
	p.AISiliconFlowAPIKey = os.Getenv("LORESEEK_AI_SILICONFLOW_API_KEY")
	p.AISiliconFlowBaseURL = getEnvOrDefault("LORESEEK_AI_SILICONFLOW_BASE_URL", "https://api.siliconflow.cn/v1")
	p.AIOpenAIAPIKey = os.Getenv("LORESEEK_AI_OPENAI_API_KEY")
	p.AIOpenAIBaseURL = getEnvOrDefault("LORESEEK_AI_OPENAI_BASE_URL", "https://api.openai.com/v1")
	p.AIEmbeddingModel = getEnvOrDefault("LORESEEK_AI_EMBEDDING_MODEL", "BAAI/bge-m3")
	p.AIRerankEnabled = os.Getenv("LORESEEK_AI_RERANK_ENABLED") == "true"
	p.AIRerankModel = getEnvOrDefault("LORESEEK_AI_RERANK_MODEL", "BAAI/bge-reranker-v2-m3")
	p.RetrievalScheme = getEnvOrDefault("LORESEEK_RETRIEVAL_SCHEME", "default")

	if dims, err := strconv.Atoi(os.Getenv("LORESEEK_AI_EMBEDDING_DIMENSIONS")); err == nil && dims > 0 {
		p.AIEmbeddingDims = dims
	} else {
		p.AIEmbeddingDims = 1024
	}

	if dsn := os.Getenv("LORESEEK_DSN"); dsn != "" {
		p.DSN = dsn
	}
	if driver := os.Getenv("LORESEEK_DRIVER"); driver != "" {
		p.Driver = driver
	}
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Driver != "sqlite" && p.Driver != "postgres" {
		return errors.Errorf("unsupported driver %q: only 'postgres' and 'sqlite' are supported", p.Driver)
	}

	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("DSN is required for the postgres driver")
	}

	if p.Driver == "sqlite" && p.DSN == "" {
		dataDir, err := checkDataDir(p.Data)
		if err != nil {
			return errors.Wrap(err, "failed to check data dir")
		}
		p.Data = dataDir
		p.DSN = filepath.Join(dataDir, fmt.Sprintf("loreseek_%s.db", p.Mode))
	}

	return nil
}
