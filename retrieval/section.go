package retrieval

import (
	"context"
	"sort"

	"github.com/hrygo/loreseek/sectiongraph"
)

// SectionSearcher is the section graph surface the channel needs. The
// implementation owns the per-group build state; this channel just asks.
type SectionSearcher interface {
	Search(ctx context.Context, query string, groupID string, topK int) ([]sectiongraph.SearchHit, error)
}

// SectionChannel searches the section-level knowledge graphs, triggering
// lazy builds for groups queried for the first time.
type SectionChannel struct {
	searcher SectionSearcher
}

// NewSectionChannel creates the section graph channel.
func NewSectionChannel(searcher SectionSearcher) *SectionChannel {
	return &SectionChannel{searcher: searcher}
}

func (c *SectionChannel) Name() string {
	return ChannelSectionGraph
}

func (c *SectionChannel) Search(ctx context.Context, query string, groupIDs []string, topK int, minScore float64) ([]*Result, error) {
	var hits []sectiongraph.SearchHit
	if len(groupIDs) == 0 {
		// Unscoped: search whatever graphs are already built, never
		// trigger corpus-wide builds.
		found, err := c.searcher.Search(ctx, query, "", topK)
		if err != nil {
			return nil, err
		}
		hits = found
	} else {
		for _, groupID := range groupIDs {
			found, err := c.searcher.Search(ctx, query, groupID, topK)
			if err != nil {
				return nil, err
			}
			hits = append(hits, found...)
		}
	}

	results := make([]*Result, 0, len(hits))
	for _, hit := range hits {
		if hit.Score < minScore {
			continue
		}
		results = append(results, &Result{
			ID:          hit.ID,
			DisplayName: hit.Title,
			Content:     hit.Content,
			Score:       hit.Score,
			SourceKind:  SourceSection,
			GroupID:     hit.GroupID,
			Metadata:    map[string]string{"title": hit.Title},
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}
