package store

// Typed vector collections. Each collection is searched independently so
// the caller can weight entity hits differently from, say, table hits.
const (
	CollectionEntity          = "entity"
	CollectionEdge            = "edge"
	CollectionEpisode         = "episode"
	CollectionDocumentSummary = "document_summary"
	CollectionCommunity       = "community"
	CollectionSection         = "section"
	CollectionImage           = "image"
	CollectionTable           = "table"
)

// Named full-text indices over the graph store.
const (
	FullTextIndexEpisode = "episode_content"
	FullTextIndexEntity  = "entity_name_summary"
	FullTextIndexEdge    = "edge_name_fact"
)

// Embedding stores a vector for one item of a typed collection.
type Embedding struct {
	ItemID     string
	Collection string
	GroupID    string
	Name       string
	Content    string
	Vector     []float32
	Model      string
	UpdatedTs  int64
}

// VectorSearchOptions specifies a similarity search within one collection.
type VectorSearchOptions struct {
	Collection string
	Vector     []float32
	GroupIDs   []string // empty means no restriction
	Limit      int
}

// VectorHit is a single vector search result.
type VectorHit struct {
	ID      string
	Name    string
	GroupID string
	Content string
	Score   float64 // cosine similarity, 0-1
}

// FullTextSearchOptions specifies a full-text search against one named index.
type FullTextSearchOptions struct {
	Index    string
	Query    string
	GroupIDs []string
	Limit    int
}

// FullTextHit is a single full-text search result.
type FullTextHit struct {
	ID      string
	Name    string
	GroupID string
	Content string
	Score   float64 // backend-native text rank
}

// ExpandNeighborsOptions specifies a bounded-hop traversal from seed nodes.
type ExpandNeighborsOptions struct {
	SeedIDs  []string
	GroupIDs []string
	MaxHops  int
	Limit    int
}

// NeighborHit is a node reached by graph expansion.
type NeighborHit struct {
	ID      string
	Name    string
	GroupID string
	Summary string
	Hops    int
}
