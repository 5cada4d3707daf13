package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func channelList(ids ...string) []*Result {
	results := make([]*Result, len(ids))
	for i, id := range ids {
		results[i] = &Result{ID: id, Content: "content " + id, Score: 1.0 - float64(i)*0.1}
	}
	return results
}

func TestFuseWithRRF_WeightedContributions(t *testing.T) {
	vector := channelList("A", "B")
	lexical := channelList("B", "C")

	fused := FuseWithRRF([]ChannelResults{
		{Channel: ChannelVector, Weight: 0.3, Results: vector},
		{Channel: ChannelLexical, Weight: 0.25, Results: lexical},
	}, 60)

	require.Len(t, fused, 3)
	assert.Equal(t, "B", fused[0].ID)
	assert.Equal(t, "A", fused[1].ID)
	assert.Equal(t, "C", fused[2].ID)

	// B appears at rank 1 in the vector list and rank 0 in the lexical
	// list, so both contributions accumulate.
	assert.InDelta(t, 0.3/62.0+0.25/61.0, fused[0].Score, 1e-9)
	assert.InDelta(t, 0.008937, fused[0].Score, 1e-5)
	assert.InDelta(t, 0.3/61.0, fused[1].Score, 1e-9)
	assert.InDelta(t, 0.25/62.0, fused[2].Score, 1e-9)
}

func TestFuseWithRRF_DeduplicatesByID(t *testing.T) {
	lists := []ChannelResults{
		{Channel: ChannelVector, Weight: 0.5, Results: channelList("X", "Y")},
		{Channel: ChannelLexical, Weight: 0.5, Results: channelList("Y", "X")},
		{Channel: ChannelGraph, Weight: 0.2, Results: channelList("X")},
	}

	fused := FuseWithRRF(lists, 60)

	seen := make(map[string]int)
	for _, result := range fused {
		seen[result.ID]++
	}
	for id, count := range seen {
		assert.Equal(t, 1, count, "id %s appears %d times", id, count)
	}
	assert.Len(t, fused, 2)
}

func TestFuseWithRRF_FirstOccurrenceRetained(t *testing.T) {
	vector := []*Result{{ID: "A", Content: "vector copy", SourceKind: SourceEntity}}
	lexical := []*Result{{ID: "A", Content: "lexical copy", SourceKind: SourceEpisode}}

	fused := FuseWithRRF([]ChannelResults{
		{Channel: ChannelVector, Weight: 0.5, Results: vector},
		{Channel: ChannelLexical, Weight: 0.5, Results: lexical},
	}, 60)

	require.Len(t, fused, 1)
	assert.Equal(t, "vector copy", fused[0].Content)
	assert.Equal(t, SourceEntity, fused[0].SourceKind)
}

func TestFuseWithRRF_Deterministic(t *testing.T) {
	lists := []ChannelResults{
		{Channel: ChannelVector, Weight: 0.4, Results: channelList("A", "B", "C")},
		{Channel: ChannelLexical, Weight: 0.3, Results: channelList("C", "D", "A")},
		{Channel: ChannelGraph, Weight: 0.2, Results: channelList("E", "B")},
	}

	first := FuseWithRRF(lists, 60)
	for i := 0; i < 10; i++ {
		again := FuseWithRRF(lists, 60)
		require.Len(t, again, len(first))
		for j := range first {
			assert.Equal(t, first[j].ID, again[j].ID, "run %d diverged at position %d", i, j)
			assert.Equal(t, first[j].Score, again[j].Score)
		}
	}
}

func TestFuseWithRRF_TiesBrokenByID(t *testing.T) {
	// Two items sharing weight and rank in disjoint channels tie exactly.
	fused := FuseWithRRF([]ChannelResults{
		{Channel: ChannelVector, Weight: 0.5, Results: channelList("zeta")},
		{Channel: ChannelLexical, Weight: 0.5, Results: channelList("alpha")},
	}, 60)

	require.Len(t, fused, 2)
	assert.Equal(t, "alpha", fused[0].ID)
	assert.Equal(t, "zeta", fused[1].ID)
}

func TestFuseWithRRF_WeightMonotonicity(t *testing.T) {
	vector := channelList("A")
	lexical := channelList("B")

	run := func(vectorWeight float64) []*Result {
		return FuseWithRRF([]ChannelResults{
			{Channel: ChannelVector, Weight: vectorWeight, Results: vector},
			{Channel: ChannelLexical, Weight: 0.5, Results: lexical},
		}, 60)
	}

	low := run(0.4)
	require.Equal(t, "B", low[0].ID)

	high := run(0.8)
	require.Equal(t, "A", high[0].ID, "raising a channel's weight must not demote its results")
}

func TestFuseWithRRF_ZeroWeightContributesNothing(t *testing.T) {
	fused := FuseWithRRF([]ChannelResults{
		{Channel: ChannelVector, Weight: 0, Results: channelList("A")},
		{Channel: ChannelLexical, Weight: 0.5, Results: channelList("B")},
	}, 60)

	require.Len(t, fused, 2)
	assert.Equal(t, "B", fused[0].ID)
	assert.Equal(t, float64(0), fused[1].Score)
}

func TestFuseWithRRF_EmptyInput(t *testing.T) {
	assert.Empty(t, FuseWithRRF(nil, 60))
	assert.Empty(t, FuseWithRRF([]ChannelResults{
		{Channel: ChannelVector, Weight: 0.5, Results: nil},
	}, 60))
}

func TestFuseWithRRF_DoesNotMutateInput(t *testing.T) {
	vector := channelList("A")
	originalScore := vector[0].Score

	fused := FuseWithRRF([]ChannelResults{
		{Channel: ChannelVector, Weight: 0.5, Results: vector},
	}, 60)

	assert.Equal(t, originalScore, vector[0].Score)
	assert.NotEqual(t, originalScore, fused[0].Score)
}
