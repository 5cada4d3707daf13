package retrieval

import (
	"context"
	"sort"
	"strconv"

	"github.com/pkg/errors"

	"github.com/hrygo/loreseek/store"
)

// NeighborExpander is the slice of the store the graph channel needs.
type NeighborExpander interface {
	ExpandNeighbors(ctx context.Context, opts *store.ExpandNeighborsOptions) ([]*store.NeighborHit, error)
}

// graphSeedCount is how many top vector and lexical hits seed the traversal.
const graphSeedCount = 5

// graphMaxHops bounds the expansion. One hop keeps the channel cheap and
// still surfaces directly related entities the seed channels missed.
const graphMaxHops = 1

// GraphChannel expands the primary knowledge graph around seed items found
// by the vector and lexical channels.
type GraphChannel struct {
	expander NeighborExpander
}

// NewGraphChannel creates the graph expansion channel.
func NewGraphChannel(expander NeighborExpander) *GraphChannel {
	return &GraphChannel{expander: expander}
}

func (c *GraphChannel) Name() string {
	return ChannelGraph
}

// SearchWithSeeds traverses outward from the seeds. Expansion hits carry no
// backend relevance score, so each is scored by its distance from a seed.
func (c *GraphChannel) SearchWithSeeds(ctx context.Context, seeds []string, groupIDs []string, topK int) ([]*Result, error) {
	if len(seeds) == 0 {
		return nil, nil
	}

	hits, err := c.expander.ExpandNeighbors(ctx, &store.ExpandNeighborsOptions{
		SeedIDs:  seeds,
		GroupIDs: groupIDs,
		MaxHops:  graphMaxHops,
		Limit:    topK,
	})
	if err != nil {
		return nil, errors.Wrap(err, "expand neighbors")
	}

	results := make([]*Result, 0, len(hits))
	for _, hit := range hits {
		results = append(results, &Result{
			ID:          hit.ID,
			DisplayName: hit.Name,
			Content:     hit.Summary,
			Score:       1.0 / float64(hit.Hops+1),
			SourceKind:  SourceEntity,
			GroupID:     hit.GroupID,
			Metadata:    map[string]string{"hops": strconv.Itoa(hit.Hops)},
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})
	return results, nil
}
