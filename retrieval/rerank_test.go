package retrieval

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/loreseek/ai"
)

func TestRerankResults_PositionalMatching(t *testing.T) {
	results := []*Result{
		{ID: "A", Content: "first"},
		{ID: "B", Content: "second"},
		{ID: "C", Content: "third"},
	}
	// The reranker speaks in request positions, not IDs: index 2 is "C".
	mock := &ai.MockRerankerService{
		Enabled: true,
		Results: []ai.RerankResult{
			{Index: 2, Score: 0.99},
			{Index: 0, Score: 0.42},
			{Index: 1, Score: 0.10},
		},
	}

	reordered, err := rerankResults(context.Background(), mock, "query", results, 0)
	require.NoError(t, err)
	require.Len(t, reordered, 3)
	assert.Equal(t, "C", reordered[0].ID)
	assert.Equal(t, "A", reordered[1].ID)
	assert.Equal(t, "B", reordered[2].ID)
	assert.InDelta(t, 0.99, reordered[0].Score, 1e-6)
}

func TestRerankResults_DroppedResultsKeepFusedOrder(t *testing.T) {
	results := []*Result{
		{ID: "A", Content: "a"},
		{ID: "B", Content: "b"},
		{ID: "C", Content: "c"},
		{ID: "D", Content: "d"},
	}
	mock := &ai.MockRerankerService{
		Enabled: true,
		Results: []ai.RerankResult{{Index: 3, Score: 0.9}},
	}

	reordered, err := rerankResults(context.Background(), mock, "query", results, 0)
	require.NoError(t, err)
	require.Len(t, reordered, 4)
	assert.Equal(t, "D", reordered[0].ID)
	assert.Equal(t, "A", reordered[1].ID)
	assert.Equal(t, "B", reordered[2].ID)
	assert.Equal(t, "C", reordered[3].ID)
}

func TestRerankResults_IgnoresBogusIndices(t *testing.T) {
	results := []*Result{{ID: "A", Content: "a"}, {ID: "B", Content: "b"}}
	mock := &ai.MockRerankerService{
		Enabled: true,
		Results: []ai.RerankResult{
			{Index: 7, Score: 0.9},
			{Index: -1, Score: 0.8},
			{Index: 1, Score: 0.7},
			{Index: 1, Score: 0.6}, // duplicate index
		},
	}

	reordered, err := rerankResults(context.Background(), mock, "query", results, 0)
	require.NoError(t, err)
	require.Len(t, reordered, 2)
	assert.Equal(t, "B", reordered[0].ID)
	assert.Equal(t, "A", reordered[1].ID)
}

func TestRerankResults_TruncatesToTopN(t *testing.T) {
	results := []*Result{
		{ID: "A", Content: "a"},
		{ID: "B", Content: "b"},
		{ID: "C", Content: "c"},
	}
	mock := &ai.MockRerankerService{Enabled: true}

	reordered, err := rerankResults(context.Background(), mock, "query", results, 2)
	require.NoError(t, err)
	assert.Len(t, reordered, 2)
}

func TestRerankResults_PropagatesError(t *testing.T) {
	results := []*Result{{ID: "A", Content: "a"}}
	mock := &ai.MockRerankerService{Enabled: true, Err: errors.New("rerank backend down")}

	_, err := rerankResults(context.Background(), mock, "query", results, 0)
	assert.Error(t, err)
}

func TestRerankResults_EmptyInput(t *testing.T) {
	mock := &ai.MockRerankerService{Enabled: true}

	reordered, err := rerankResults(context.Background(), mock, "query", nil, 5)
	require.NoError(t, err)
	assert.Empty(t, reordered)
	assert.Equal(t, int64(0), mock.CallCount.Load())
}

func TestRerankDocument(t *testing.T) {
	assert.Equal(t, "title\nbody", rerankDocument(&Result{DisplayName: "title", Content: "body"}))
	assert.Equal(t, "body", rerankDocument(&Result{Content: "body"}))
	assert.Equal(t, "same", rerankDocument(&Result{DisplayName: "same", Content: "same"}))
}
