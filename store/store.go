package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hrygo/loreseek/internal/profile"
	"github.com/hrygo/loreseek/store/cache"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver

	// Cache settings
	cacheConfig cache.Config

	// Caches
	sectionCache *cache.Cache // cache for per-group section lists
	nodeCache    *cache.Cache // cache for knowledge nodes
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	// Default cache settings
	cacheConfig := cache.Config{
		DefaultTTL:      10 * time.Minute,
		CleanupInterval: 5 * time.Minute,
		MaxItems:        1000,
	}

	store := &Store{
		driver:       driver,
		profile:      profile,
		cacheConfig:  cacheConfig,
		sectionCache: cache.New(cacheConfig),
		nodeCache:    cache.New(cacheConfig),
	}

	return store
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	// Stop all cache cleanup goroutines
	s.sectionCache.Close()
	s.nodeCache.Close()

	return s.driver.Close()
}

func (s *Store) UpsertKnowledgeNode(ctx context.Context, upsert *KnowledgeNode) (*KnowledgeNode, error) {
	if upsert.ID == "" {
		upsert.ID = uuid.NewString()
	}
	node, err := s.driver.UpsertKnowledgeNode(ctx, upsert)
	if err != nil {
		return nil, err
	}
	s.nodeCache.Set(node.ID, node)
	return node, nil
}

func (s *Store) ListKnowledgeNodes(ctx context.Context, find *FindKnowledgeNode) ([]*KnowledgeNode, error) {
	return s.driver.ListKnowledgeNodes(ctx, find)
}

// GetKnowledgeNode returns a single node by ID, reading through the node cache.
func (s *Store) GetKnowledgeNode(ctx context.Context, id string) (*KnowledgeNode, error) {
	if cached, ok := s.nodeCache.Get(id); ok {
		if node, ok := cached.(*KnowledgeNode); ok {
			return node, nil
		}
	}

	nodes, err := s.driver.ListKnowledgeNodes(ctx, &FindKnowledgeNode{IDs: []string{id}})
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, nil
	}

	s.nodeCache.Set(id, nodes[0])
	return nodes[0], nil
}

func (s *Store) UpsertKnowledgeEdge(ctx context.Context, upsert *KnowledgeEdge) (*KnowledgeEdge, error) {
	if upsert.ID == "" {
		upsert.ID = uuid.NewString()
	}
	return s.driver.UpsertKnowledgeEdge(ctx, upsert)
}

func (s *Store) ListKnowledgeEdges(ctx context.Context, find *FindKnowledgeEdge) ([]*KnowledgeEdge, error) {
	return s.driver.ListKnowledgeEdges(ctx, find)
}

func (s *Store) CreateEpisode(ctx context.Context, create *Episode) (*Episode, error) {
	if create.ID == "" {
		create.ID = uuid.NewString()
	}
	return s.driver.CreateEpisode(ctx, create)
}

func (s *Store) ListEpisodes(ctx context.Context, find *FindEpisode) ([]*Episode, error) {
	return s.driver.ListEpisodes(ctx, find)
}

func (s *Store) UpsertSection(ctx context.Context, upsert *Section) (*Section, error) {
	if upsert.ID == "" {
		upsert.ID = uuid.NewString()
	}
	section, err := s.driver.UpsertSection(ctx, upsert)
	if err != nil {
		return nil, err
	}
	s.sectionCache.Delete(sectionCacheKey(section.GroupID))
	return section, nil
}

// ListSections lists sections, reading through the section cache when the
// find is a plain single-group lookup (the section-graph builder's hot path).
func (s *Store) ListSections(ctx context.Context, find *FindSection) ([]*Section, error) {
	cacheable := find != nil && len(find.GroupIDs) == 1 && len(find.IDs) == 0 && find.Limit == nil
	if cacheable {
		if cached, ok := s.sectionCache.Get(sectionCacheKey(find.GroupIDs[0])); ok {
			if sections, ok := cached.([]*Section); ok {
				return sections, nil
			}
		}
	}

	sections, err := s.driver.ListSections(ctx, find)
	if err != nil {
		return nil, err
	}
	if cacheable {
		s.sectionCache.Set(sectionCacheKey(find.GroupIDs[0]), sections)
	}
	return sections, nil
}

func (s *Store) UpsertEmbedding(ctx context.Context, upsert *Embedding) error {
	return s.driver.UpsertEmbedding(ctx, upsert)
}

func (s *Store) SearchByVector(ctx context.Context, opts *VectorSearchOptions) ([]*VectorHit, error) {
	return s.driver.SearchByVector(ctx, opts)
}

func (s *Store) SearchFullText(ctx context.Context, opts *FullTextSearchOptions) ([]*FullTextHit, error) {
	return s.driver.SearchFullText(ctx, opts)
}

func (s *Store) ExpandNeighbors(ctx context.Context, opts *ExpandNeighborsOptions) ([]*NeighborHit, error) {
	return s.driver.ExpandNeighbors(ctx, opts)
}

func sectionCacheKey(groupID string) string {
	return strings.Join([]string{"sections", groupID}, ":")
}
