package store

// KnowledgeNode represents an entity node in the primary knowledge graph.
type KnowledgeNode struct {
	ID        string
	Name      string
	Summary   string
	GroupID   string
	CreatedTs int64
}

// FindKnowledgeNode specifies the conditions for finding knowledge nodes.
type FindKnowledgeNode struct {
	IDs      []string
	GroupIDs []string
	Limit    *int
}

// KnowledgeEdge represents a relation between two knowledge nodes.
type KnowledgeEdge struct {
	ID        string
	Name      string
	Fact      string
	SourceID  string
	TargetID  string
	GroupID   string
	CreatedTs int64
}

// FindKnowledgeEdge specifies the conditions for finding knowledge edges.
type FindKnowledgeEdge struct {
	IDs      []string
	NodeIDs  []string
	GroupIDs []string
	Limit    *int
}

// Episode represents a raw content episode ingested into the graph store.
type Episode struct {
	ID        string
	Content   string
	GroupID   string
	CreatedTs int64
}

// FindEpisode specifies the conditions for finding episodes.
type FindEpisode struct {
	IDs      []string
	GroupIDs []string
	Limit    *int
}

// Section represents a section-level chunk of a document group.
type Section struct {
	ID        string
	Title     string
	Content   string
	GroupID   string
	DocOrder  int
	CreatedTs int64
}

// FindSection specifies the conditions for finding sections.
type FindSection struct {
	IDs      []string
	GroupIDs []string
	Limit    *int
}
