// Package sectiongraph provides on-demand construction and querying of
// section-level knowledge graphs, one graph per document group.
package sectiongraph

// SectionNode represents a document section in the graph.
type SectionNode struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	GroupID  string    `json:"group_id"`
	DocOrder int       `json:"doc_order"` // position within the source document
	Vector   []float32 `json:"-"`
}

// SectionEdge represents an edge between two sections.
type SectionEdge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Type   string  `json:"type"`   // "adjacent" or "semantic"
	Weight float64 `json:"weight"` // 0-1, higher = stronger connection
}

// SectionGraph represents the complete graph for one document group.
type SectionGraph struct {
	GroupID string        `json:"group_id"`
	Nodes   []SectionNode `json:"nodes"`
	Edges   []SectionEdge `json:"edges"`
	Stats   GraphStats    `json:"stats"`
	BuildMs int64         `json:"build_ms"` // build latency
}

// GraphStats contains graph statistics.
type GraphStats struct {
	NodeCount     int `json:"node_count"`
	EdgeCount     int `json:"edge_count"`
	AdjacentEdges int `json:"adjacent_edges"`
	SemanticEdges int `json:"semantic_edges"`
}

// EdgeType constants.
const (
	EdgeTypeAdjacent = "adjacent" // consecutive sections of the same document
	EdgeTypeSemantic = "semantic" // semantic similarity
)

// GraphConfig contains configuration for graph building.
type GraphConfig struct {
	// MinSemanticSimilarity is the minimum similarity score for semantic edges.
	MinSemanticSimilarity float64
	// MaxSemanticEdgesPerNode limits semantic edges per node.
	MaxSemanticEdgesPerNode int
	// AdjacencyWeight is the weight assigned to adjacency edges.
	AdjacencyWeight float64
	// NeighborBoost is the fraction of the best neighbor score folded into
	// a node's search score.
	NeighborBoost float64
}

// DefaultConfig returns default graph configuration.
func DefaultConfig() GraphConfig {
	return GraphConfig{
		MinSemanticSimilarity:   0.7,
		MaxSemanticEdgesPerNode: 3,
		AdjacencyWeight:         0.6,
		NeighborBoost:           0.15,
	}
}

// SearchHit is a single section returned by a graph search.
type SearchHit struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Content string  `json:"content"`
	GroupID string  `json:"group_id"`
	Score   float64 `json:"score"`
}
