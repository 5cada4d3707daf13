// Package retrieval implements hybrid multi-channel retrieval: four
// independent channels (vector, lexical, graph expansion, section graph)
// queried concurrently, fused with weighted reciprocal rank fusion, then
// optionally reranked and normalized to a 0-100 scale.
package retrieval

// SourceKind is the semantic type of a retrieved item.
type SourceKind string

const (
	SourceEntity    SourceKind = "entity"
	SourceEdge      SourceKind = "edge"
	SourceEpisode   SourceKind = "episode"
	SourceCommunity SourceKind = "community"
	SourceSection   SourceKind = "section"
)

// Result is one retrieved candidate. Instances flow through fusion, rerank
// and normalization; only Score is rewritten along the way.
type Result struct {
	ID          string            `json:"id"`
	DisplayName string            `json:"display_name"`
	Content     string            `json:"content"`
	Score       float64           `json:"score"`
	SourceKind  SourceKind        `json:"source_kind"`
	GroupID     string            `json:"group_id,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// clone returns a shallow copy so score rewrites never mutate channel output.
func (r *Result) clone() *Result {
	copied := *r
	return &copied
}
