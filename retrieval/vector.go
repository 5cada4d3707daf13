package retrieval

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/hrygo/loreseek/ai"
	"github.com/hrygo/loreseek/store"
)

// VectorSearcher is the slice of the store the vector channel needs.
type VectorSearcher interface {
	SearchByVector(ctx context.Context, opts *store.VectorSearchOptions) ([]*store.VectorHit, error)
}

// searchCollections is every typed collection the vector channel covers.
var searchCollections = []string{
	store.CollectionEntity,
	store.CollectionEdge,
	store.CollectionEpisode,
	store.CollectionDocumentSummary,
	store.CollectionCommunity,
	store.CollectionSection,
	store.CollectionImage,
	store.CollectionTable,
}

// collectionKinds maps a collection to the result source kind. Collections
// without a dedicated kind surface as episodes and keep the collection name
// in metadata.
var collectionKinds = map[string]SourceKind{
	store.CollectionEntity:    SourceEntity,
	store.CollectionEdge:      SourceEdge,
	store.CollectionEpisode:   SourceEpisode,
	store.CollectionCommunity: SourceCommunity,
	store.CollectionSection:   SourceSection,
}

// VectorChannel searches the dense vector index across typed collections.
type VectorChannel struct {
	searcher  VectorSearcher
	embedding ai.EmbeddingService
}

// NewVectorChannel creates the vector channel.
func NewVectorChannel(searcher VectorSearcher, embedding ai.EmbeddingService) *VectorChannel {
	return &VectorChannel{searcher: searcher, embedding: embedding}
}

func (c *VectorChannel) Name() string {
	return ChannelVector
}

func (c *VectorChannel) Search(ctx context.Context, query string, groupIDs []string, topK int, minScore float64) ([]*Result, error) {
	return c.SearchCollections(ctx, query, groupIDs, searchCollections, topK, minScore)
}

// SearchCollections searches a subset of collections. The smart scheme's
// coarse first phase uses this with just the document summary collection.
func (c *VectorChannel) SearchCollections(ctx context.Context, query string, groupIDs []string, collections []string, topK int, minScore float64) ([]*Result, error) {
	vector, err := c.embedding.Embed(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "embed query")
	}

	var results []*Result
	for _, collection := range collections {
		hits, err := c.searcher.SearchByVector(ctx, &store.VectorSearchOptions{
			Collection: collection,
			Vector:     vector,
			GroupIDs:   groupIDs,
			Limit:      topK,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "vector search %s", collection)
		}

		kind, ok := collectionKinds[collection]
		if !ok {
			kind = SourceEpisode
		}
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
				Metadata:    map[string]string{"collection": collection},
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})
	return results, nil
}
