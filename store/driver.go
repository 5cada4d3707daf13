package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// KnowledgeNode model related methods.
	UpsertKnowledgeNode(ctx context.Context, upsert *KnowledgeNode) (*KnowledgeNode, error)
	ListKnowledgeNodes(ctx context.Context, find *FindKnowledgeNode) ([]*KnowledgeNode, error)

	// KnowledgeEdge model related methods.
	UpsertKnowledgeEdge(ctx context.Context, upsert *KnowledgeEdge) (*KnowledgeEdge, error)
	ListKnowledgeEdges(ctx context.Context, find *FindKnowledgeEdge) ([]*KnowledgeEdge, error)

	// Episode model related methods.
	CreateEpisode(ctx context.Context, create *Episode) (*Episode, error)
	ListEpisodes(ctx context.Context, find *FindEpisode) ([]*Episode, error)

	// Section model related methods.
	UpsertSection(ctx context.Context, upsert *Section) (*Section, error)
	ListSections(ctx context.Context, find *FindSection) ([]*Section, error)

	// UpsertEmbedding stores the vector for one item of a typed collection.
	UpsertEmbedding(ctx context.Context, upsert *Embedding) error

	// SearchByVector performs similarity search within one collection.
	// Results are ordered by similarity descending.
	SearchByVector(ctx context.Context, opts *VectorSearchOptions) ([]*VectorHit, error)

	// SearchFullText performs full-text search against one named index.
	SearchFullText(ctx context.Context, opts *FullTextSearchOptions) ([]*FullTextHit, error)

	// ExpandNeighbors performs a bounded-hop traversal from the seed nodes
	// and returns the nodes reached, excluding the seeds themselves.
	ExpandNeighbors(ctx context.Context, opts *ExpandNeighborsOptions) ([]*NeighborHit, error)
}
