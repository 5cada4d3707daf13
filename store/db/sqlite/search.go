package sqlite

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/loreseek/store"
)

// UpsertEmbedding is NOT supported for SQLite.
// Vector storage requires PostgreSQL with pgvector extension.
func (d *DB) UpsertEmbedding(ctx context.Context, upsert *store.Embedding) error {
	return errors.New("embedding storage requires PostgreSQL with pgvector extension")
}

// SearchByVector is NOT supported for SQLite.
// Vector similarity search requires PostgreSQL with pgvector extension.
func (d *DB) SearchByVector(ctx context.Context, opts *store.VectorSearchOptions) ([]*store.VectorHit, error) {
	return nil, errors.New("vector search requires PostgreSQL with pgvector extension")
}

// fullTextSources maps each named index to the table, FTS table and columns it covers.
var fullTextSources = map[string]struct {
	table    string
	ftsTable string
	name     string
	content  string
}{
	store.FullTextIndexEpisode: {
		table:    "episode",
		ftsTable: "episode_fts",
		name:     "''",
		content:  "content",
	},
	store.FullTextIndexEntity: {
		table:    "knowledge_node",
		ftsTable: "knowledge_node_fts",
		name:     "name",
		content:  "summary",
	},
	store.FullTextIndexEdge: {
		table:    "knowledge_edge",
		ftsTable: "knowledge_edge_fts",
		name:     "name",
		content:  "fact",
	},
}

// SearchFullText performs full-text search using SQLite FTS5 if available.
// This is a best-effort implementation - for production use, prefer PostgreSQL.
func (d *DB) SearchFullText(ctx context.Context, opts *store.FullTextSearchOptions) ([]*store.FullTextHit, error) {
	src, ok := fullTextSources[opts.Index]
	if !ok {
		return nil, errors.Errorf("unknown full-text index: %s", opts.Index)
	}

	where, args := []string{src.ftsTable + " MATCH ?"}, []any{opts.Query}

	if len(opts.GroupIDs) > 0 {
		clause, clauseArgs := inClause("t.group_id", opts.GroupIDs)
		where, args = append(where, clause), append(args, clauseArgs...)
	}

	args = append(args, opts.Limit)
	query := `
		SELECT t.id, ` + src.name + ` AS name, t.group_id, t.` + src.content + ` AS content,
			-bm25(` + src.ftsTable + `) AS score
		FROM ` + src.table + ` t
		JOIN ` + src.ftsTable + ` ON t.rowid = ` + src.ftsTable + `.rowid
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY score DESC
		LIMIT ?
	`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		// FTS5 might not be enabled, fall back to LIKE search
		return d.fullTextSearchFallback(ctx, opts)
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

// fullTextSearchFallback uses LIKE when FTS5 is unavailable.
// Scores are a crude constant since LIKE carries no rank.
func (d *DB) fullTextSearchFallback(ctx context.Context, opts *store.FullTextSearchOptions) ([]*store.FullTextHit, error) {
	src := fullTextSources[opts.Index]

	where, args := []string{"t." + src.content + " LIKE ?"}, []any{"%" + opts.Query + "%"}

	if len(opts.GroupIDs) > 0 {
		clause, clauseArgs := inClause("t.group_id", opts.GroupIDs)
		where, args = append(where, clause), append(args, clauseArgs...)
	}

	args = append(args, opts.Limit)
	query := `
		SELECT t.id, ` + src.name + ` AS name, t.group_id, t.` + src.content + ` AS content
		FROM ` + src.table + ` t
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY t.created_ts DESC
		LIMIT ?
	`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to run full-text fallback search")
	}
	defer rows.Close()

	hits := []*store.FullTextHit{}
	for rows.Next() {
		var hit store.FullTextHit
		if err := rows.Scan(&hit.ID, &hit.Name, &hit.GroupID, &hit.Content); err != nil {
			return nil, errors.Wrap(err, "failed to scan full-text fallback hit")
		}
		hit.Score = 1.0
		hits = append(hits, &hit)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return hits, nil
}

// ExpandNeighbors performs a bounded-hop traversal using a recursive CTE.
func (d *DB) ExpandNeighbors(ctx context.Context, opts *store.ExpandNeighborsOptions) ([]*store.NeighborHit, error) {
	if len(opts.SeedIDs) == 0 {
		return []*store.NeighborHit{}, nil
	}

	maxHops := opts.MaxHops
	if maxHops <= 0 {
		maxHops = 1
	}

	seedClause, seedArgs := inClause("id", opts.SeedIDs)
	edgeSeedClause, edgeSeedArgs := inClause("n.id", opts.SeedIDs)

	args := []any{}
	args = append(args, seedArgs...)
	args = append(args, maxHops)

	where := []string{"f.hops > 0", "NOT (" + edgeSeedClause + ")"}

	query := `
		WITH RECURSIVE frontier (id, hops) AS (
			SELECT id, 0 FROM knowledge_node WHERE ` + seedClause + `
			UNION
			SELECT
				CASE WHEN e.source_id = f.id THEN e.target_id ELSE e.source_id END,
				f.hops + 1
			FROM knowledge_edge e
			JOIN frontier f ON f.id IN (e.source_id, e.target_id)
			WHERE f.hops < ?
		)
		SELECT n.id, n.name, n.group_id, n.summary, MIN(f.hops) AS hops
		FROM frontier f
		JOIN knowledge_node n ON n.id = f.id
		WHERE ` + strings.Join(where, " AND ")

	args = append(args, edgeSeedArgs...)

	if len(opts.GroupIDs) > 0 {
		clause, clauseArgs := inClause("n.group_id", opts.GroupIDs)
		query += " AND " + clause
		args = append(args, clauseArgs...)
	}

	query += `
		GROUP BY n.id, n.name, n.group_id, n.summary
		ORDER BY hops, n.id
		LIMIT ?
	`
	args = append(args, opts.Limit)

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
