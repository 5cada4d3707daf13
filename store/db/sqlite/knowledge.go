package sqlite

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/loreseek/store"
)

// UpsertKnowledgeNode inserts or updates a knowledge node.
func (d *DB) UpsertKnowledgeNode(ctx context.Context, upsert *store.KnowledgeNode) (*store.KnowledgeNode, error) {
	stmt := `
		INSERT INTO knowledge_node (id, name, summary, group_id, created_ts)
		VALUES (` + placeholders(5) + `)
		ON CONFLICT (id)
		DO UPDATE SET
			name = excluded.name,
			summary = excluded.summary
	`

	if _, err := d.db.ExecContext(ctx, stmt,
		upsert.ID,
		upsert.Name,
		upsert.Summary,
		upsert.GroupID,
		upsert.CreatedTs,
	); err != nil {
		return nil, errors.Wrap(err, "failed to upsert knowledge node")
	}

	return upsert, nil
}

// ListKnowledgeNodes lists knowledge nodes.
func (d *DB) ListKnowledgeNodes(ctx context.Context, find *store.FindKnowledgeNode) ([]*store.KnowledgeNode, error) {
	where, args := []string{"1 = 1"}, []any{}

	if len(find.IDs) > 0 {
		clause, clauseArgs := inClause("id", find.IDs)
		where, args = append(where, clause), append(args, clauseArgs...)
	}
	if len(find.GroupIDs) > 0 {
		clause, clauseArgs := inClause("group_id", find.GroupIDs)
		where, args = append(where, clause), append(args, clauseArgs...)
	}

	query := `
		SELECT id, name, summary, group_id, created_ts
		FROM knowledge_node
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_ts DESC
	`
	if find.Limit != nil {
		query += " LIMIT ?"
		args = append(args, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list knowledge nodes")
	}
	defer rows.Close()

	list := []*store.KnowledgeNode{}
	for rows.Next() {
		var node store.KnowledgeNode
		if err := rows.Scan(&node.ID, &node.Name, &node.Summary, &node.GroupID, &node.CreatedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan knowledge node")
		}
		list = append(list, &node)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

// UpsertKnowledgeEdge inserts or updates a knowledge edge.
func (d *DB) UpsertKnowledgeEdge(ctx context.Context, upsert *store.KnowledgeEdge) (*store.KnowledgeEdge, error) {
	stmt := `
		INSERT INTO knowledge_edge (id, name, fact, source_id, target_id, group_id, created_ts)
		VALUES (` + placeholders(7) + `)
		ON CONFLICT (id)
		DO UPDATE SET
			name = excluded.name,
			fact = excluded.fact
	`

	if _, err := d.db.ExecContext(ctx, stmt,
		upsert.ID,
		upsert.Name,
		upsert.Fact,
		upsert.SourceID,
		upsert.TargetID,
		upsert.GroupID,
		upsert.CreatedTs,
	); err != nil {
		return nil, errors.Wrap(err, "failed to upsert knowledge edge")
	}

	return upsert, nil
}

// ListKnowledgeEdges lists knowledge edges.
func (d *DB) ListKnowledgeEdges(ctx context.Context, find *store.FindKnowledgeEdge) ([]*store.KnowledgeEdge, error) {
	where, args := []string{"1 = 1"}, []any{}

	if len(find.IDs) > 0 {
		clause, clauseArgs := inClause("id", find.IDs)
		where, args = append(where, clause), append(args, clauseArgs...)
	}
	if len(find.NodeIDs) > 0 {
		sourceClause, sourceArgs := inClause("source_id", find.NodeIDs)
		targetClause, targetArgs := inClause("target_id", find.NodeIDs)
		where = append(where, "("+sourceClause+" OR "+targetClause+")")
		args = append(args, sourceArgs...)
		args = append(args, targetArgs...)
	}
	if len(find.GroupIDs) > 0 {
		clause, clauseArgs := inClause("group_id", find.GroupIDs)
		where, args = append(where, clause), append(args, clauseArgs...)
	}

	query := `
		SELECT id, name, fact, source_id, target_id, group_id, created_ts
		FROM knowledge_edge
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_ts DESC
	`
	if find.Limit != nil {
		query += " LIMIT ?"
		args = append(args, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list knowledge edges")
	}
	defer rows.Close()

	list := []*store.KnowledgeEdge{}
	for rows.Next() {
		var edge store.KnowledgeEdge
		if err := rows.Scan(&edge.ID, &edge.Name, &edge.Fact, &edge.SourceID, &edge.TargetID, &edge.GroupID, &edge.CreatedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan knowledge edge")
		}
		list = append(list, &edge)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

// CreateEpisode creates an episode.
func (d *DB) CreateEpisode(ctx context.Context, create *store.Episode) (*store.Episode, error) {
	stmt := `
		INSERT INTO episode (id, content, group_id, created_ts)
		VALUES (` + placeholders(4) + `)
	`

	if _, err := d.db.ExecContext(ctx, stmt,
		create.ID,
		create.Content,
		create.GroupID,
		create.CreatedTs,
	); err != nil {
		return nil, errors.Wrap(err, "failed to create episode")
	}

	return create, nil
}

// ListEpisodes lists episodes.
func (d *DB) ListEpisodes(ctx context.Context, find *store.FindEpisode) ([]*store.Episode, error) {
	where, args := []string{"1 = 1"}, []any{}

	if len(find.IDs) > 0 {
		clause, clauseArgs := inClause("id", find.IDs)
		where, args = append(where, clause), append(args, clauseArgs...)
	}
	if len(find.GroupIDs) > 0 {
		clause, clauseArgs := inClause("group_id", find.GroupIDs)
		where, args = append(where, clause), append(args, clauseArgs...)
	}

	query := `
		SELECT id, content, group_id, created_ts
		FROM episode
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_ts DESC
	`
	if find.Limit != nil {
		query += " LIMIT ?"
		args = append(args, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list episodes")
	}
	defer rows.Close()

	list := []*store.Episode{}
	for rows.Next() {
		var episode store.Episode
		if err := rows.Scan(&episode.ID, &episode.Content, &episode.GroupID, &episode.CreatedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan episode")
		}
		list = append(list, &episode)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

// UpsertSection inserts or updates a section.
func (d *DB) UpsertSection(ctx context.Context, upsert *store.Section) (*store.Section, error) {
	stmt := `
		INSERT INTO section (id, title, content, group_id, doc_order, created_ts)
		VALUES (` + placeholders(6) + `)
		ON CONFLICT (id)
		DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			doc_order = excluded.doc_order
	`

	if _, err := d.db.ExecContext(ctx, stmt,
		upsert.ID,
		upsert.Title,
		upsert.Content,
		upsert.GroupID,
		upsert.DocOrder,
		upsert.CreatedTs,
	); err != nil {
		return nil, errors.Wrap(err, "failed to upsert section")
	}

	return upsert, nil
}

// ListSections lists sections ordered by their position in the document.
func (d *DB) ListSections(ctx context.Context, find *store.FindSection) ([]*store.Section, error) {
	where, args := []string{"1 = 1"}, []any{}

	if len(find.IDs) > 0 {
		clause, clauseArgs := inClause("id", find.IDs)
		where, args = append(where, clause), append(args, clauseArgs...)
	}
	if len(find.GroupIDs) > 0 {
		clause, clauseArgs := inClause("group_id", find.GroupIDs)
		where, args = append(where, clause), append(args, clauseArgs...)
	}

	query := `
		SELECT id, title, content, group_id, doc_order, created_ts
		FROM section
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY group_id, doc_order
	`
	if find.Limit != nil {
		query += " LIMIT ?"
		args = append(args, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list sections")
	}
	defer rows.Close()

	list := []*store.Section{}
	for rows.Next() {
		var section store.Section
		if err := rows.Scan(&section.ID, &section.Title, &section.Content, &section.GroupID, &section.DocOrder, &section.CreatedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan section")
		}
		list = append(list, &section)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}
