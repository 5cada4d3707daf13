package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	"github.com/hrygo/loreseek/store"
)

// UpsertEmbedding inserts or updates an item embedding.
func (d *DB) UpsertEmbedding(ctx context.Context, upsert *store.Embedding) error {
	stmt := `
		INSERT INTO item_embedding (item_id, collection, group_id, name, content, embedding, model, updated_ts)
		VALUES (` + placeholders(8) + `)
		ON CONFLICT (item_id, collection, model)
		DO UPDATE SET
			name = EXCLUDED.name,
			content = EXCLUDED.content,
			embedding = EXCLUDED.embedding,
			updated_ts = EXCLUDED.updated_ts
	`

	vector := pgvector.NewVector(upsert.Vector)
	if upsert.UpdatedTs == 0 {
		upsert.UpdatedTs = time.Now().Unix()
	}
	_, err := d.db.ExecContext(ctx, stmt,
		upsert.ItemID,
		upsert.Collection,
		upsert.GroupID,
		upsert.Name,
		upsert.Content,
		vector,
		upsert.Model,
		upsert.UpdatedTs,
	)
	if err != nil {
		return errors.Wrap(err, "failed to upsert embedding")
	}

	return nil
}

// SearchByVector performs cosine similarity search within one collection.
func (d *DB) SearchByVector(ctx context.Context, opts *store.VectorSearchOptions) ([]*store.VectorHit, error) {
	if opts.Collection == "" {
		return nil, errors.New("collection is required")
	}
	if len(opts.Vector) == 0 {
		return nil, errors.New("query vector is empty")
	}

	vector := pgvector.NewVector(opts.Vector)
	where, args := []string{"collection = $2"}, []any{vector, opts.Collection}

	if len(opts.GroupIDs) > 0 {
		where, args = append(where, "group_id = ANY("+placeholder(len(args)+1)+")"), append(args, pq.Array(opts.GroupIDs))
	}

	args = append(args, opts.Limit)
	query := `
		SELECT item_id, name, group_id, content, 1 - (embedding <=> $1) AS score
		FROM item_embedding
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY embedding <=> $1
		LIMIT ` + placeholder(len(args))

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to search by vector")
	}
	defer rows.Close()

	hits := []*store.VectorHit{}
	for rows.Next() {
		var hit store.VectorHit
		if err := rows.Scan(&hit.ID, &hit.Name, &hit.GroupID, &hit.Content, &hit.Score); err != nil {
			return nil, errors.Wrap(err, "failed to scan vector hit")
		}
		hits = append(hits, &hit)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return hits, nil
}

// fullTextSources maps each named index to the table and columns it covers.
var fullTextSources = map[string]struct {
	table   string
	name    string
	content string
	vector  string
}{
	store.FullTextIndexEpisode: {
		table:   "episode",
		name:    "''",
		content: "content",
		vector:  "to_tsvector('simple', content)",
	},
	store.FullTextIndexEntity: {
		table:   "knowledge_node",
		name:    "name",
		content: "summary",
		vector:  "to_tsvector('simple', name || ' ' || summary)",
	},
	store.FullTextIndexEdge: {
		table:   "knowledge_edge",
		name:    "name",
		content: "fact",
		vector:  "to_tsvector('simple', name || ' ' || fact)",
	},
}

// SearchFullText performs full-text search against one named index.
func (d *DB) SearchFullText(ctx context.Context, opts *store.FullTextSearchOptions) ([]*store.FullTextHit, error) {
	src, ok := fullTextSources[opts.Index]
	if !ok {
		return nil, errors.Errorf("unknown full-text index: %s", opts.Index)
	}

	where, args := []string{src.vector + " @@ plainto_tsquery('simple', $1)"}, []any{opts.Query}

	if len(opts.GroupIDs) > 0 {
		where, args = append(where, "group_id = ANY("+placeholder(len(args)+1)+")"), append(args, pq.Array(opts.GroupIDs))
	}

	args = append(args, opts.Limit)
	query := `
		SELECT id, ` + src.name + ` AS name, group_id, ` + src.content + ` AS content,
			ts_rank(` + src.vector + `, plainto_tsquery('simple', $1)) AS score
		FROM ` + src.table + `
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY score DESC
		LIMIT ` + placeholder(len(args))

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to search full-text index %s", opts.Index)
	}
	defer rows.Close()

	hits := []*store.FullTextHit{}
	for rows.Next() {
		var hit store.FullTextHit
		if err := rows.Scan(&hit.ID, &hit.Name, &hit.GroupID, &hit.Content, &hit.Score); err != nil {
			return nil, errors.Wrap(err, "failed to scan full-text hit")
		}
		hits = append(hits, &hit)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return hits, nil
}

// ExpandNeighbors performs a bounded-hop traversal from the seed nodes using
// a recursive CTE over knowledge_edge. Seeds themselves are excluded.
func (d *DB) ExpandNeighbors(ctx context.Context, opts *store.ExpandNeighborsOptions) ([]*store.NeighborHit, error) {
	if len(opts.SeedIDs) == 0 {
		return []*store.NeighborHit{}, nil
	}

	maxHops := opts.MaxHops
	if maxHops <= 0 {
		maxHops = 1
	}

	where, args := []string{"f.hops > 0"}, []any{pq.Array(opts.SeedIDs), maxHops}

	if len(opts.GroupIDs) > 0 {
		where, args = append(where, "n.group_id = ANY("+placeholder(len(args)+1)+")"), append(args, pq.Array(opts.GroupIDs))
	}

	args = append(args, opts.Limit)
	query := `
		WITH RECURSIVE frontier (id, hops) AS (
			SELECT unnest($1::text[]), 0
			UNION
			SELECT
				CASE WHEN e.source_id = f.id THEN e.target_id ELSE e.source_id END,
				f.hops + 1
			FROM knowledge_edge e
			JOIN frontier f ON f.id IN (e.source_id, e.target_id)
			WHERE f.hops < $2
		)
		SELECT n.id, n.name, n.group_id, n.summary, MIN(f.hops) AS hops
		FROM frontier f
		JOIN knowledge_node n ON n.id = f.id
		WHERE ` + strings.Join(where, " AND ") + ` AND n.id <> ALL($1::text[])
		GROUP BY n.id, n.name, n.group_id, n.summary
		ORDER BY hops, n.id
		LIMIT ` + placeholder(len(args))

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to expand neighbors")
	}
	defer rows.Close()

	hits := []*store.NeighborHit{}
	for rows.Next() {
		var hit store.NeighborHit
		if err := rows.Scan(&hit.ID, &hit.Name, &hit.GroupID, &hit.Summary, &hit.Hops); err != nil {
			return nil, errors.Wrap(err, "failed to scan neighbor hit")
		}
		hits = append(hits, &hit)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return hits, nil
}
