package sectiongraph

import (
	"context"
	"sort"
	"sync"

	"github.com/hrygo/loreseek/ai"
)

// Service exposes section graphs to the retrieval layer.
type Service interface {
	// Exists reports whether a graph has been built for the group.
	Exists(ctx context.Context, groupID string) bool

	// Build constructs the graph for the group. Idempotent: rebuilding an
	// existing graph replaces it.
	Build(ctx context.Context, groupID string) (bool, error)

	// Search queries built graphs. An empty groupID searches every built
	// graph without triggering new builds.
	Search(ctx context.Context, query string, groupID string, topK int) ([]SearchHit, error)
}

type service struct {
	mu        sync.RWMutex
	graphs    map[string]*SectionGraph
	builder   *Builder
	embedding ai.EmbeddingService
	config    GraphConfig
}

// NewService creates a Service backed by the given builder.
func NewService(builder *Builder, embedding ai.EmbeddingService) Service {
	return &service{
		graphs:    make(map[string]*SectionGraph),
		builder:   builder,
		embedding: embedding,
		config:    builder.config,
	}
}

func (s *service) Exists(_ context.Context, groupID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	graph, ok := s.graphs[groupID]
	return ok && len(graph.Nodes) > 0
}

func (s *service) Build(ctx context.Context, groupID string) (bool, error) {
	graph, err := s.builder.Build(ctx, groupID)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	s.graphs[groupID] = graph
	s.mu.Unlock()

	return len(graph.Nodes) > 0, nil
}

func (s *service) Search(ctx context.Context, query string, groupID string, topK int) ([]SearchHit, error) {
	if topK <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	var graphs []*SectionGraph
	if groupID != "" {
		if graph, ok := s.graphs[groupID]; ok {
			graphs = append(graphs, graph)
		}
	} else {
		for _, graph := range s.graphs {
			graphs = append(graphs, graph)
		}
	}
	s.mu.RUnlock()

	if len(graphs) == 0 {
		return nil, nil
	}

	queryVector, err := s.embedding.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	var hits []SearchHit
	for _, graph := range graphs {
		hits = append(hits, s.searchGraph(graph, queryVector)...)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})

	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// searchGraph scores each node by query similarity, boosted by its best
// scoring neighbor. Sections next to a relevant section are often relevant
// themselves even when their own wording diverges from the query.
func (s *service) searchGraph(graph *SectionGraph, queryVector []float32) []SearchHit {
	if len(graph.Nodes) == 0 {
		return nil
	}

	base := make(map[string]float64, len(graph.Nodes))
	for i := range graph.Nodes {
		base[graph.Nodes[i].ID] = cosineSimilarity(queryVector, graph.Nodes[i].Vector)
	}

	bestNeighbor := make(map[string]float64, len(graph.Nodes))
	for _, edge := range graph.Edges {
		if score := base[edge.Target] * edge.Weight; score > bestNeighbor[edge.Source] {
			bestNeighbor[edge.Source] = score
		}
		if score := base[edge.Source] * edge.Weight; score > bestNeighbor[edge.Target] {
			bestNeighbor[edge.Target] = score
		}
	}

	hits := make([]SearchHit, 0, len(graph.Nodes))
	for i := range graph.Nodes {
		node := &graph.Nodes[i]
		hits = append(hits, SearchHit{
			ID:      node.ID,
			Title:   node.Title,
			Content: node.Content,
			GroupID: node.GroupID,
			Score:   base[node.ID] + s.config.NeighborBoost*bestNeighbor[node.ID],
		})
	}
	return hits
}
