package playlists

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/llehouerou/wavestore/internal/db"
	"github.com/llehouerou/wavestore/internal/tags"
)

// SetSmartTags replaces the tags defining a dynamic playlist. Unknown tag
// ids are referential integrity errors.
func (p *Playlists) SetSmartTags(ctx context.Context, playlistID int64, tagIDs []int64) error {
	if _, err := p.requireKind(ctx, playlistID, Dynamic); err != nil {
		return err
	}

	if _, err := p.q.ExecContext(ctx, `DELETE FROM smart_playlist_tags WHERE playlist_id = ?`, playlistID); err != nil {
		return db.Classify(err)
	}
	for _, tagID := range tagIDs {
		_, err := p.q.ExecContext(ctx, `
			INSERT OR IGNORE INTO smart_playlist_tags (playlist_id, tag_id) VALUES (?, ?)
		`, playlistID, tagID)
		if err != nil {
			return fmt.Errorf("smart playlist %d tag %d: %w", playlistID, tagID, db.Classify(err))
		}
	}
	return nil
}

// SmartTags returns the tags defining a dynamic playlist, ordered by name.
func (p *Playlists) SmartTags(ctx context.Context, playlistID int64) ([]tags.Tag, error) {
	if _, err := p.requireKind(ctx, playlistID, Dynamic); err != nil {
		return nil, err
	}

	var out []tags.Tag
	err := sqlx.SelectContext(ctx, p.q, &out, `
		SELECT t.id, t.name,
			(SELECT COUNT(*) FROM playable_tags pt WHERE pt.tag_id = t.id) AS playable_count
		FROM smart_playlist_tags st
		JOIN tags t ON t.id = st.tag_id
		WHERE st.playlist_id = ?
		ORDER BY t.name COLLATE NOCASE, t.id
	`, playlistID)
	return out, db.Classify(err)
}

// SetMatch sets how a dynamic playlist combines its tags.
func (p *Playlists) SetMatch(ctx context.Context, playlistID int64, mode MatchMode) error {
	if mode != MatchAll && mode != MatchAny {
		return fmt.Errorf("%w: match mode %q", db.ErrReferentialIntegrity, mode)
	}
	if _, err := p.requireKind(ctx, playlistID, Dynamic); err != nil {
		return err
	}
	_, err := p.q.ExecContext(ctx, `UPDATE playlists SET match_mode = ? WHERE id = ?`, string(mode), playlistID)
	return db.Classify(err)
}

// Resolve computes the members of a playlist: the stored order for a
// static playlist, the playables matching its tags (by ascending id) for a
// dynamic one. A dynamic playlist without tags is empty. Folders have no
// members and fail with a kind mismatch.
func (p *Playlists) Resolve(ctx context.Context, playlistID int64) ([]int64, error) {
	pl, err := p.requireKind(ctx, playlistID, Static, Dynamic)
	if err != nil {
		return nil, err
	}
	if pl.Kind == Static {
		return p.items(ctx, playlistID)
	}

	var tagIDs []int64
	err = sqlx.SelectContext(ctx, p.q, &tagIDs, `
		SELECT tag_id FROM smart_playlist_tags WHERE playlist_id = ? ORDER BY tag_id
	`, playlistID)
	if err != nil {
		return nil, db.Classify(err)
	}

	if pl.Match == MatchAny {
		return p.tags.PlayablesWithAnyTag(ctx, tagIDs)
	}
	return p.tags.PlayablesWithAllTags(ctx, tagIDs)
}
