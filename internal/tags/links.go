package tags

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/llehouerou/wavestore/internal/db"
)

// AddTag links a tag to a playable. Linking twice is a no-op. Unknown ids
// are referential integrity errors.
func (t *Tags) AddTag(ctx context.Context, playableID, tagID int64) error {
	_, err := t.q.ExecContext(ctx, `
		INSERT OR IGNORE INTO playable_tags (tag_id, playable_id) VALUES (?, ?)
	`, tagID, playableID)
	if err != nil {
		return fmt.Errorf("tag playable %d with %d: %w", playableID, tagID, db.Classify(err))
	}
	return nil
}

// RemoveTag unlinks a tag from a playable. Removing a missing link is a no-op.
func (t *Tags) RemoveTag(ctx context.Context, playableID, tagID int64) error {
	_, err := t.q.ExecContext(ctx, `
		DELETE FROM playable_tags WHERE tag_id = ? AND playable_id = ?
	`, tagID, playableID)
	return db.Classify(err)
}

// TagsFor returns the tags of a playable ordered by name.
func (t *Tags) TagsFor(ctx context.Context, playableID int64) ([]Tag, error) {
	var out []Tag
	err := sqlx.SelectContext(ctx, t.q, &out, `
		SELECT t.id, t.name,
			(SELECT COUNT(*) FROM playable_tags c WHERE c.tag_id = t.id) AS playable_count
		FROM playable_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.playable_id = ?
		ORDER BY t.name COLLATE NOCASE, t.id
	`, playableID)
	return out, db.Classify(err)
}

// Tagged returns the ids of the playables carrying tagID, ascending.
func (t *Tags) Tagged(ctx context.Context, tagID int64) ([]int64, error) {
	var ids []int64
	err := sqlx.SelectContext(ctx, t.q, &ids, `
		SELECT playable_id FROM playable_tags WHERE tag_id = ? ORDER BY playable_id
	`, tagID)
	return ids, db.Classify(err)
}

// PlayablesWithAllTags returns the ids of the playables carrying every tag
// in tagIDs, ascending. An empty tagIDs yields no playables.
func (t *Tags) PlayablesWithAllTags(ctx context.Context, tagIDs []int64) ([]int64, error) {
	tagIDs = dedupe(tagIDs)
	if len(tagIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT playable_id
		FROM playable_tags
		WHERE tag_id IN (?)
		GROUP BY playable_id
		HAVING COUNT(DISTINCT tag_id) = ?
		ORDER BY playable_id
	`, tagIDs, len(tagIDs))
	if err != nil {
		return nil, err
	}

	var ids []int64
	err = sqlx.SelectContext(ctx, t.q, &ids, t.q.Rebind(query), args...)
	return ids, db.Classify(err)
}

// PlayablesWithAnyTag returns the ids of the playables carrying at least one
// tag in tagIDs, ascending. An empty tagIDs yields no playables.
func (t *Tags) PlayablesWithAnyTag(ctx context.Context, tagIDs []int64) ([]int64, error) {
	tagIDs = dedupe(tagIDs)
	if len(tagIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT DISTINCT playable_id
		FROM playable_tags
		WHERE tag_id IN (?)
		ORDER BY playable_id
	`, tagIDs)
	if err != nil {
		return nil, err
	}

	var ids []int64
	err = sqlx.SelectContext(ctx, t.q, &ids, t.q.Rebind(query), args...)
	return ids, db.Classify(err)
}

func dedupe(ids []int64) []int64 {
	if len(ids) < 2 {
		return ids
	}
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
