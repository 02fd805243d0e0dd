// Package tags is the tag store: user-defined labels and the links between
// labels and playables.
package tags

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/llehouerou/wavestore/internal/db"
	"github.com/llehouerou/wavestore/internal/library"
)

// Tag is a label, unique by case-insensitive name.
type Tag struct {
	ID            int64  `db:"id"`
	Name          string `db:"name"`
	PlayableCount int    `db:"playable_count"`
}

// Tags runs tag statements against q.
type Tags struct {
	q db.Querier
}

// New creates a Tags bound to q.
func New(q db.Querier) *Tags {
	return &Tags{q: q}
}

// Upsert returns the id of the tag named name, creating it if needed.
func (t *Tags) Upsert(ctx context.Context, name string) (int64, error) {
	name = library.CleanName(name)

	var id int64
	err := sqlx.GetContext(ctx, t.q, &id,
		`INSERT INTO tags (name) VALUES (?) ON CONFLICT(name) DO NOTHING RETURNING id`, name)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("upsert tag %q: %w", name, db.Classify(err))
	}

	err = sqlx.GetContext(ctx, t.q, &id, `SELECT id FROM tags WHERE name = ?`, name)
	return id, db.Classify(err)
}

// Lookup returns the id of the tag named name.
func (t *Tags) Lookup(ctx context.Context, name string) (int64, error) {
	var id int64
	err := sqlx.GetContext(ctx, t.q, &id, `SELECT id FROM tags WHERE name = ?`, library.CleanName(name))
	if err != nil {
		return 0, fmt.Errorf("tag %q: %w", name, db.Classify(err))
	}
	return id, nil
}

// Rename renames a tag. Renaming onto an existing name is a referential
// integrity error.
func (t *Tags) Rename(ctx context.Context, id int64, name string) error {
	res, err := t.q.ExecContext(ctx, `UPDATE tags SET name = ? WHERE id = ?`, library.CleanName(name), id)
	if err != nil {
		return fmt.Errorf("rename tag %d: %w", id, db.Classify(err))
	}
	return requireAffected(res, id)
}

// Delete removes a tag along with its playable links and its use in smart
// playlist definitions.
func (t *Tags) Delete(ctx context.Context, id int64) error {
	res, err := t.q.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete tag %d: %w", id, db.Classify(err))
	}
	return requireAffected(res, id)
}

// Get returns a tag by id.
func (t *Tags) Get(ctx context.Context, id int64) (*Tag, error) {
	var tag Tag
	err := sqlx.GetContext(ctx, t.q, &tag, `
		SELECT t.id, t.name, (SELECT COUNT(*) FROM playable_tags pt WHERE pt.tag_id = t.id) AS playable_count
		FROM tags t
		WHERE t.id = ?
	`, id)
	if err != nil {
		return nil, fmt.Errorf("tag %d: %w", id, db.Classify(err))
	}
	return &tag, nil
}

// List returns every tag ordered by name, with the number of playables
// carrying it.
func (t *Tags) List(ctx context.Context) ([]Tag, error) {
	var out []Tag
	err := sqlx.SelectContext(ctx, t.q, &out, `
		SELECT t.id, t.name, COUNT(pt.playable_id) AS playable_count
		FROM tags t
		LEFT JOIN playable_tags pt ON pt.tag_id = t.id
		GROUP BY t.id
		ORDER BY t.name COLLATE NOCASE, t.id
	`)
	return out, db.Classify(err)
}

// Count returns the number of tags.
func (t *Tags) Count(ctx context.Context) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, t.q, &n, `SELECT COUNT(*) FROM tags`)
	return n, db.Classify(err)
}

// PruneOrphans deletes tags that no playable carries and no smart playlist
// uses. It returns the number of tags removed.
func (t *Tags) PruneOrphans(ctx context.Context) (int64, error) {
	res, err := t.q.ExecContext(ctx, `
		DELETE FROM tags
		WHERE id NOT IN (SELECT tag_id FROM playable_tags)
		AND id NOT IN (SELECT tag_id FROM smart_playlist_tags)
	`)
	if err != nil {
		return 0, db.Classify(err)
	}
	n, err := res.RowsAffected()
	return n, db.Classify(err)
}

func requireAffected(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return db.Classify(err)
	}
	if n == 0 {
		return fmt.Errorf("%w: tag %d", db.ErrNotFound, id)
	}
	return nil
}
