// Package likes is the like store. A playable is liked exactly when a like
// row exists for it.
package likes

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/llehouerou/wavestore/internal/db"
)

// Likes runs like statements against q.
type Likes struct {
	q db.Querier

	// Now stamps new likes. Defaults to time.Now.
	Now func() time.Time
}

// New creates a Likes bound to q.
func New(q db.Querier) *Likes {
	return &Likes{q: q, Now: time.Now}
}

// Like marks a playable as liked. Liking twice keeps the original time.
// An unknown playable is a referential integrity error.
func (l *Likes) Like(ctx context.Context, playableID int64) error {
	_, err := l.q.ExecContext(ctx, `
		INSERT OR IGNORE INTO likes (playable_id, liked_at) VALUES (?, ?)
	`, playableID, l.Now().Unix())
	if err != nil {
		return fmt.Errorf("like %d: %w", playableID, db.Classify(err))
	}
	return nil
}

// Unlike clears the like of a playable. Unliking twice is a no-op.
func (l *Likes) Unlike(ctx context.Context, playableID int64) error {
	_, err := l.q.ExecContext(ctx, `DELETE FROM likes WHERE playable_id = ?`, playableID)
	return db.Classify(err)
}

// IsLiked reports whether a playable is liked.
func (l *Likes) IsLiked(ctx context.Context, playableID int64) (bool, error) {
	var count int
	err := sqlx.GetContext(ctx, l.q, &count, `SELECT COUNT(*) FROM likes WHERE playable_id = ?`, playableID)
	if err != nil {
		return false, db.Classify(err)
	}
	return count > 0, nil
}

// Toggle likes a playable if it is not liked, unlikes it otherwise.
// Returns the new state (true = now liked).
func (l *Likes) Toggle(ctx context.Context, playableID int64) (bool, error) {
	liked, err := l.IsLiked(ctx, playableID)
	if err != nil {
		return false, err
	}

	if liked {
		return false, l.Unlike(ctx, playableID)
	}
	if err := l.Like(ctx, playableID); err != nil {
		return false, err
	}
	return true, nil
}

// Liked returns the ids of liked playables, most recently liked first.
// Likes from the same second are ordered by descending id.
func (l *Likes) Liked(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := sqlx.SelectContext(ctx, l.q, &ids, `
		SELECT playable_id FROM likes ORDER BY liked_at DESC, playable_id DESC
	`)
	return ids, db.Classify(err)
}

// LikedSet returns which of ids are liked, as a map for efficient lookup.
// Pass nil to get every liked playable.
func (l *Likes) LikedSet(ctx context.Context, ids []int64) (map[int64]bool, error) {
	query := `SELECT playable_id FROM likes`
	var args []any
	if ids != nil {
		if len(ids) == 0 {
			return map[int64]bool{}, nil
		}
		q, a, err := sqlx.In(query+` WHERE playable_id IN (?)`, ids)
		if err != nil {
			return nil, err
		}
		query, args = l.q.Rebind(q), a
	}

	var found []int64
	if err := sqlx.SelectContext(ctx, l.q, &found, query, args...); err != nil {
		return nil, db.Classify(err)
	}

	set := make(map[int64]bool, len(found))
	for _, id := range found {
		set[id] = true
	}
	return set, nil
}

// Count returns the number of liked playables.
func (l *Likes) Count(ctx context.Context) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, l.q, &n, `SELECT COUNT(*) FROM likes`)
	return n, db.Classify(err)
}
