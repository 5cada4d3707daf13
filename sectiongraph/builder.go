package sectiongraph

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/hrygo/loreseek/ai"
	"github.com/hrygo/loreseek/store"
)

const (
	embedBatchSize       = 16
	maxConcurrentBatches = 4
)

// Store is the storage surface the builder needs, satisfied by *store.Store.
type Store interface {
	ListSections(ctx context.Context, find *store.FindSection) ([]*store.Section, error)
	UpsertEmbedding(ctx context.Context, upsert *store.Embedding) error
}

// Builder constructs section graphs from stored document sections.
type Builder struct {
	store     Store
	embedding ai.EmbeddingService
	model     string
	config    GraphConfig
}

// NewBuilder creates a new Builder.
func NewBuilder(s Store, embedding ai.EmbeddingService, model string) *Builder {
	return &Builder{
		store:     s,
		embedding: embedding,
		model:     model,
		config:    DefaultConfig(),
	}
}

// NewBuilderWithConfig creates a builder with custom config.
func NewBuilderWithConfig(s Store, embedding ai.EmbeddingService, model string, config GraphConfig) *Builder {
	return &Builder{
		store:     s,
		embedding: embedding,
		model:     model,
		config:    config,
	}
}

// Build constructs the section graph for a document group.
func (b *Builder) Build(ctx context.Context, groupID string) (*SectionGraph, error) {
	start := time.Now()
	graph := &SectionGraph{GroupID: groupID}

	sections, err := b.store.ListSections(ctx, &store.FindSection{
		GroupIDs: []string{groupID},
	})
	if err != nil {
		return nil, errors.Wrap(err, "list sections")
	}

	if len(sections) == 0 {
		graph.BuildMs = time.Since(start).Milliseconds()
		return graph, nil
	}

	sort.Slice(sections, func(i, j int) bool {
		return sections[i].DocOrder < sections[j].DocOrder
	})

	vectors, err := b.embedSections(ctx, sections)
	if err != nil {
		return nil, err
	}

	graph.Nodes = make([]SectionNode, len(sections))
	for i, section := range sections {
		graph.Nodes[i] = SectionNode{
			ID:       section.ID,
			Title:    section.Title,
			Content:  section.Content,
			GroupID:  section.GroupID,
			DocOrder: section.DocOrder,
			Vector:   vectors[i],
		}
	}

	adjacentEdges := b.buildAdjacencyEdges(graph.Nodes)
	graph.Edges = append(graph.Edges, adjacentEdges...)
	graph.Stats.AdjacentEdges = len(adjacentEdges)

	semanticEdges := b.buildSemanticEdges(graph.Nodes)
	graph.Edges = append(graph.Edges, semanticEdges...)
	graph.Stats.SemanticEdges = len(semanticEdges)

	graph.Stats.NodeCount = len(graph.Nodes)
	graph.Stats.EdgeCount = len(graph.Edges)
	graph.BuildMs = time.Since(start).Milliseconds()

	b.persistEmbeddings(ctx, graph.Nodes)

	return graph, nil
}

// embedSections embeds section contents in bounded concurrent batches.
func (b *Builder) embedSections(ctx context.Context, sections []*store.Section) ([][]float32, error) {
	vectors := make([][]float32, len(sections))

	sem := semaphore.NewWeighted(maxConcurrentBatches)
	g, gctx := errgroup.WithContext(ctx)

	for batchStart := 0; batchStart < len(sections); batchStart += embedBatchSize {
		batchEnd := batchStart + embedBatchSize
		if batchEnd > len(sections) {
			batchEnd = len(sections)
		}

		if err := sem.Acquire(gctx, 1); err != nil {
			return nil, errors.Wrap(err, "acquire embed slot")
		}

		batchStart, batchEnd := batchStart, batchEnd
		g.Go(func() error {
			defer sem.Release(1)

			texts := make([]string, 0, batchEnd-batchStart)
			for _, section := range sections[batchStart:batchEnd] {
				texts = append(texts, sectionText(section))
			}

			batch, err := b.embedding.EmbedBatch(gctx, texts)
			if err != nil {
				return errors.Wrap(err, "embed section batch")
			}
			if len(batch) != batchEnd-batchStart {
				return errors.Errorf("embedding count mismatch: got %d, want %d", len(batch), batchEnd-batchStart)
			}

			copy(vectors[batchStart:batchEnd], batch)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

// buildAdjacencyEdges links consecutive sections of the same document.
func (b *Builder) buildAdjacencyEdges(nodes []SectionNode) []SectionEdge {
	var edges []SectionEdge
	for i := 1; i < len(nodes); i++ {
		edges = append(edges, SectionEdge{
			Source: nodes[i-1].ID,
			Target: nodes[i].ID,
			Type:   EdgeTypeAdjacent,
			Weight: b.config.AdjacencyWeight,
		})
	}
	return edges
}

// buildSemanticEdges links sections whose embeddings are similar.
func (b *Builder) buildSemanticEdges(nodes []SectionNode) []SectionEdge {
	var edges []SectionEdge

	seen := make(map[string]bool)
	for i := range nodes {
		type candidate struct {
			index int
			score float64
		}
		var candidates []candidate

		for j := range nodes {
			if i == j {
				continue
			}
			score := cosineSimilarity(nodes[i].Vector, nodes[j].Vector)
			if score >= b.config.MinSemanticSimilarity {
				candidates = append(candidates, candidate{index: j, score: score})
			}
		}

		sort.Slice(candidates, func(x, y int) bool {
			if candidates[x].score != candidates[y].score {
				return candidates[x].score > candidates[y].score
			}
			return nodes[candidates[x].index].ID < nodes[candidates[y].index].ID
		})

		count := 0
		for _, c := range candidates {
			if count >= b.config.MaxSemanticEdgesPerNode {
				break
			}

			edgeKey := fmt.Sprintf("%s-%s", nodes[i].ID, nodes[c.index].ID)
			reverseKey := fmt.Sprintf("%s-%s", nodes[c.index].ID, nodes[i].ID)
			if seen[edgeKey] || seen[reverseKey] {
				continue
			}
			seen[edgeKey] = true

			edges = append(edges, SectionEdge{
				Source: nodes[i].ID,
				Target: nodes[c.index].ID,
				Type:   EdgeTypeSemantic,
				Weight: c.score,
			})
			count++
		}
	}

	return edges
}

// persistEmbeddings writes section vectors back to the store so the vector
// channel can search the section collection directly. Best effort: the
// sqlite driver rejects vector operations.
func (b *Builder) persistEmbeddings(ctx context.Context, nodes []SectionNode) {
	failed := 0
	var lastErr error
	for i := range nodes {
		if len(nodes[i].Vector) == 0 {
			continue
		}
		err := b.store.UpsertEmbedding(ctx, &store.Embedding{
			ItemID:     nodes[i].ID,
			Collection: store.CollectionSection,
			GroupID:    nodes[i].GroupID,
			Name:       nodes[i].Title,
			Content:    nodes[i].Content,
			Vector:     nodes[i].Vector,
			Model:      b.model,
		})
		if err != nil {
			// One transient failure must not drop the rest of the batch.
			failed++
			lastErr = err
		}
	}
	if failed > 0 {
		slog.Warn("failed to persist section embeddings",
			"failed", failed,
			"total", len(nodes),
			"error", lastErr)
	}
}

func sectionText(section *store.Section) string {
	if section.Title == "" {
		return section.Content
	}
	return section.Title + "\n" + section.Content
}

// cosineSimilarity computes cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
