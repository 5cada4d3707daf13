package retrieval

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/hrygo/loreseek/store"
)

// FullTextSearcher is the slice of the store the lexical channel needs.
type FullTextSearcher interface {
	SearchFullText(ctx context.Context, opts *store.FullTextSearchOptions) ([]*store.FullTextHit, error)
}

// fullTextIndexKinds maps each named index to the source kind of its items.
var fullTextIndexKinds = map[string]SourceKind{
	store.FullTextIndexEpisode: SourceEpisode,
	store.FullTextIndexEntity:  SourceEntity,
	store.FullTextIndexEdge:    SourceEdge,
}

// lexicalIndexOrder keeps index iteration deterministic.
var lexicalIndexOrder = []string{
	store.FullTextIndexEpisode,
	store.FullTextIndexEntity,
	store.FullTextIndexEdge,
}

// LexicalChannel searches the full-text indices of the graph store.
type LexicalChannel struct {
	searcher FullTextSearcher
}

// NewLexicalChannel creates the lexical channel.
func NewLexicalChannel(searcher FullTextSearcher) *LexicalChannel {
	return &LexicalChannel{searcher: searcher}
}

func (c *LexicalChannel) Name() string {
	return ChannelLexical
}

func (c *LexicalChannel) Search(ctx context.Context, query string, groupIDs []string, topK int, minScore float64) ([]*Result, error) {
	var results []*Result
	for _, index := range lexicalIndexOrder {
		hits, err := c.searcher.SearchFullText(ctx, &store.FullTextSearchOptions{
			Index:    index,
			Query:    query,
			GroupIDs: groupIDs,
			Limit:    topK,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "full-text search %s", index)
		}

		kind := fullTextIndexKinds[index]
		for _, hit := range hits {
			if hit.Score < minScore {
				continue
			}
			results = append(results, &Result{
				ID:          hit.ID,
				DisplayName: hit.Name,
				Content:     hit.Content,
				Score:       hit.Score,
				SourceKind:  kind,
				GroupID:     hit.GroupID,
				Metadata:    map[string]string{"index": index},
			})
		}
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
