package retrieval

import (
	"context"
)

// Channel names, used for logging, metrics and fusion ordering.
const (
	ChannelVector       = "vector"
	ChannelLexical      = "lexical"
	ChannelGraph        = "graph"
	ChannelSectionGraph = "section_graph"
)

// Channel is one independent retrieval backend. Implementations return
// results ordered by their own score descending and must honor the context
// deadline. A failing channel returns an error; the engine absorbs it as an
// empty list so one backend can never abort the whole retrieval.
type Channel interface {
	Name() string
	Search(ctx context.Context, query string, groupIDs []string, topK int, minScore float64) ([]*Result, error)
}

// SeededChannel is a channel whose traversal starts from seed item IDs
// produced by other channels.
type SeededChannel interface {
	Name() string
	SearchWithSeeds(ctx context.Context, seeds []string, groupIDs []string, topK int) ([]*Result, error)
}
