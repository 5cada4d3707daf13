package sectiongraph

import (
	"context"
	"math"
	"testing"

	"github.com/pkg/errors"

	"github.com/hrygo/loreseek/ai"
	"github.com/hrygo/loreseek/store"
)

// fakeStore is a controllable Store for builder tests.
type fakeStore struct {
	sections   []*store.Section
	upserts    []string
	upsertErrs map[string]error
}

func (f *fakeStore) ListSections(_ context.Context, _ *store.FindSection) ([]*store.Section, error) {
	return f.sections, nil
}

func (f *fakeStore) UpsertEmbedding(_ context.Context, upsert *store.Embedding) error {
	f.upserts = append(f.upserts, upsert.ItemID)
	if err, ok := f.upsertErrs[upsert.ItemID]; ok {
		return err
	}
	return nil
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float64
	}{
		{
			name:     "identical vectors",
			a:        []float32{1, 0, 0},
			b:        []float32{1, 0, 0},
			expected: 1.0,
		},
		{
			name:     "orthogonal vectors",
			a:        []float32{1, 0},
			b:        []float32{0, 1},
			expected: 0.0,
		},
		{
			name:     "opposite vectors",
			a:        []float32{1, 0},
			b:        []float32{-1, 0},
			expected: -1.0,
		},
		{
			name:     "length mismatch",
			a:        []float32{1, 0},
			b:        []float32{1, 0, 0},
			expected: 0.0,
		},
		{
			name:     "zero vector",
			a:        []float32{0, 0},
			b:        []float32{1, 1},
			expected: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := cosineSimilarity(tt.a, tt.b)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("cosineSimilarity() = %f, want %f", result, tt.expected)
			}
		})
	}
}

func TestBuildAdjacencyEdges(t *testing.T) {
	b := &Builder{config: DefaultConfig()}

	nodes := []SectionNode{
		{ID: "s1", DocOrder: 0},
		{ID: "s2", DocOrder: 1},
		{ID: "s3", DocOrder: 2},
	}

	edges := b.buildAdjacencyEdges(nodes)
	if len(edges) != 2 {
		t.Fatalf("got %d edges, want 2", len(edges))
	}
	if edges[0].Source != "s1" || edges[0].Target != "s2" {
		t.Errorf("edges[0] = %s->%s, want s1->s2", edges[0].Source, edges[0].Target)
	}
	for _, edge := range edges {
		if edge.Type != EdgeTypeAdjacent {
			t.Errorf("edge type = %s, want %s", edge.Type, EdgeTypeAdjacent)
		}
		if edge.Weight != b.config.AdjacencyWeight {
			t.Errorf("edge weight = %f, want %f", edge.Weight, b.config.AdjacencyWeight)
		}
	}

	if edges := b.buildAdjacencyEdges(nodes[:1]); len(edges) != 0 {
		t.Errorf("single node should produce no edges, got %d", len(edges))
	}
}

func TestBuildSemanticEdges(t *testing.T) {
	b := &Builder{config: GraphConfig{
		MinSemanticSimilarity:   0.9,
		MaxSemanticEdgesPerNode: 3,
	}}

	// s1 and s2 point the same way, s3 is orthogonal to both.
	nodes := []SectionNode{
		{ID: "s1", Vector: []float32{1, 0}},
		{ID: "s2", Vector: []float32{1, 0.01}},
		{ID: "s3", Vector: []float32{0, 1}},
	}

	edges := b.buildSemanticEdges(nodes)
	if len(edges) != 1 {
		t.Fatalf("got %d semantic edges, want 1", len(edges))
	}
	edge := edges[0]
	if edge.Type != EdgeTypeSemantic {
		t.Errorf("edge type = %s, want %s", edge.Type, EdgeTypeSemantic)
	}
	pair := edge.Source + "-" + edge.Target
	if pair != "s1-s2" && pair != "s2-s1" {
		t.Errorf("edge = %s, want s1-s2 in either direction", pair)
	}
	if edge.Weight < 0.9 {
		t.Errorf("edge weight = %f, want >= 0.9", edge.Weight)
	}
}

func TestBuild_PersistsAllEmbeddingsPastFailures(t *testing.T) {
	st := &fakeStore{
		sections: []*store.Section{
			{ID: "s1", Title: "One", Content: "first", GroupID: "g1", DocOrder: 0},
			{ID: "s2", Title: "Two", Content: "second", GroupID: "g1", DocOrder: 1},
			{ID: "s3", Title: "Three", Content: "third", GroupID: "g1", DocOrder: 2},
		},
		upsertErrs: map[string]error{"s1": errors.New("connection reset")},
	}
	b := NewBuilder(st, ai.NewMockEmbeddingService(8), "test-model")

	graph, err := b.Build(context.Background(), "g1")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if graph.Stats.NodeCount != 3 {
		t.Fatalf("node count = %d, want 3", graph.Stats.NodeCount)
	}
	if len(st.upserts) != 3 {
		t.Errorf("got %d upsert attempts, want 3: one failure must not drop the rest", len(st.upserts))
	}
}

func TestBuildSemanticEdges_MaxPerNode(t *testing.T) {
	b := &Builder{config: GraphConfig{
		MinSemanticSimilarity:   0.5,
		MaxSemanticEdgesPerNode: 1,
	}}

	// All four nearly parallel, every pair clears the floor.
	nodes := []SectionNode{
		{ID: "s1", Vector: []float32{1, 0}},
		{ID: "s2", Vector: []float32{1, 0.01}},
		{ID: "s3", Vector: []float32{1, 0.02}},
		{ID: "s4", Vector: []float32{1, 0.03}},
	}

	edges := b.buildSemanticEdges(nodes)
	perNode := make(map[string]int)
	for _, edge := range edges {
		perNode[edge.Source]++
	}
	for id, count := range perNode {
		if count > 1 {
			t.Errorf("node %s has %d outgoing semantic edges, want <= 1", id, count)
		}
	}
}
