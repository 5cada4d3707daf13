package ai

import (
	"context"
	"errors"
	"hash/fnv"
	"sync/atomic"
)

// MockEmbeddingService is a deterministic EmbeddingService for testing.
type MockEmbeddingService struct {
	Dims      int
	Err       error
	CallCount atomic.Int64
}

// NewMockEmbeddingService creates a mock with the given dimensions.
func NewMockEmbeddingService(dims int) *MockEmbeddingService {
	return &MockEmbeddingService{Dims: dims}
}

func (m *MockEmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (m *MockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.CallCount.Add(1)
	if m.Err != nil {
		return nil, m.Err
	}
	if len(texts) == 0 {
		return nil, errors.New("no texts provided for embedding")
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = deterministicVector(text, m.Dims)
	}
	return vectors, nil
}

func (m *MockEmbeddingService) Dimensions() int {
	return m.Dims
}

// deterministicVector derives a stable pseudo-vector from the text hash.
func deterministicVector(text string, dims int) []float32 {
	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	vector := make([]float32, dims)
	for i := range vector {
		seed = seed*6364136223846793005 + 1442695040888963407
		vector[i] = float32(seed%1000)/1000.0 - 0.5
	}
	return vector
}

// MockRerankerService is a configurable RerankerService for testing.
type MockRerankerService struct {
	Enabled   bool
	Results   []RerankResult
	Err       error
	CallCount atomic.Int64

	// LastQuery and LastDocuments capture the most recent call.
	LastQuery     string
	LastDocuments []string
}

func (m *MockRerankerService) IsEnabled() bool {
	return m.Enabled
}

func (m *MockRerankerService) Rerank(_ context.Context, query string, documents []string, topN int) ([]RerankResult, error) {
	m.CallCount.Add(1)
	m.LastQuery = query
	m.LastDocuments = documents

	if m.Err != nil {
		return nil, m.Err
	}
	if m.Results != nil {
		return m.Results, nil
	}

	// Default: original order with decaying scores.
	results := make([]RerankResult, len(documents))
	for i := range documents {
		results[i] = RerankResult{Index: i, Score: 1.0 - float32(i)*0.01}
	}
	if topN > 0 && topN < len(results) {
		results = results[:topN]
	}
	return results, nil
}
