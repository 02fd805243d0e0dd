package playlists

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/llehouerou/wavestore/internal/db"
)

// parked is the position an item holds while the others shift around it.
// Shifted rows pass through positions below it, so the three never collide
// with the UNIQUE(playlist_id, position) constraint.
const parked = -1

// Items returns the playable ids of a static playlist in order.
func (p *Playlists) Items(ctx context.Context, playlistID int64) ([]int64, error) {
	if _, err := p.requireKind(ctx, playlistID, Static); err != nil {
		return nil, err
	}
	return p.items(ctx, playlistID)
}

func (p *Playlists) items(ctx context.Context, playlistID int64) ([]int64, error) {
	var ids []int64
	err := sqlx.SelectContext(ctx, p.q, &ids, `
		SELECT pp.playable_id
		FROM playlist_playables pp
		JOIN playables pl ON pl.id = pp.playable_id
		WHERE pp.playlist_id = ?
		ORDER BY pp.position
	`, playlistID)
	return ids, db.Classify(err)
}

// ItemCount returns the number of items in a static playlist.
func (p *Playlists) ItemCount(ctx context.Context, playlistID int64) (int, error) {
	if _, err := p.requireKind(ctx, playlistID, Static); err != nil {
		return 0, err
	}
	return p.itemCount(ctx, playlistID)
}

func (p *Playlists) itemCount(ctx context.Context, playlistID int64) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, p.q, &count, `
		SELECT COUNT(*) FROM playlist_playables WHERE playlist_id = ?
	`, playlistID)
	return count, db.Classify(err)
}

// Add inserts a playable into a static playlist. A nil position appends;
// otherwise the item lands at *position and later items shift down.
// It returns the position the item landed at. A playable already in the
// playlist is a referential integrity error.
func (p *Playlists) Add(ctx context.Context, playlistID, playableID int64, position *int) (int, error) {
	if _, err := p.requireKind(ctx, playlistID, Static); err != nil {
		return 0, err
	}
	count, err := p.itemCount(ctx, playlistID)
	if err != nil {
		return 0, err
	}

	pos := count
	if position != nil {
		pos = *position
		if pos < 0 || pos > count {
			return 0, fmt.Errorf("%w: position %d out of range [0, %d]", db.ErrOrderingConflict, pos, count)
		}
	}

	// Insert parked first so unknown or duplicate playables fail before
	// anything moves.
	_, err = p.q.ExecContext(ctx, `
		INSERT INTO playlist_playables (playlist_id, playable_id, position) VALUES (?, ?, ?)
	`, playlistID, playableID, parked)
	if err != nil {
		return 0, fmt.Errorf("add playable %d to playlist %d: %w", playableID, playlistID, db.Classify(err))
	}
	if err := p.shift(ctx, playlistID, pos, count-1, 1); err != nil {
		return 0, err
	}
	if err := p.unpark(ctx, playlistID, pos); err != nil {
		return 0, err
	}
	return pos, nil
}

// AddMany appends playables to a static playlist in the given order,
// skipping those already present. It returns how many were added.
func (p *Playlists) AddMany(ctx context.Context, playlistID int64, playableIDs []int64) (int, error) {
	if _, err := p.requireKind(ctx, playlistID, Static); err != nil {
		return 0, err
	}
	if len(playableIDs) == 0 {
		return 0, nil
	}

	var maxPos sql.NullInt64
	err := sqlx.GetContext(ctx, p.q, &maxPos, `
		SELECT MAX(position) FROM playlist_playables WHERE playlist_id = ?
	`, playlistID)
	if err != nil {
		return 0, db.Classify(err)
	}
	nextPos := 0
	if maxPos.Valid {
		nextPos = int(maxPos.Int64) + 1
	}

	present, err := p.items(ctx, playlistID)
	if err != nil {
		return 0, err
	}
	skip := make(map[int64]bool, len(present)+len(playableIDs))
	for _, id := range present {
		skip[id] = true
	}

	added := 0
	for _, id := range playableIDs {
		if skip[id] {
			continue
		}
		skip[id] = true
		_, err := p.q.ExecContext(ctx, `
			INSERT INTO playlist_playables (playlist_id, playable_id, position) VALUES (?, ?, ?)
		`, playlistID, id, nextPos+added)
		if err != nil {
			return added, fmt.Errorf("add playable %d to playlist %d: %w", id, playlistID, db.Classify(err))
		}
		added++
	}
	return added, nil
}

// Remove takes a playable out of a static playlist and closes the gap.
func (p *Playlists) Remove(ctx context.Context, playlistID, playableID int64) error {
	if _, err := p.requireKind(ctx, playlistID, Static); err != nil {
		return err
	}
	return p.remove(ctx, playlistID, playableID)
}

func (p *Playlists) remove(ctx context.Context, playlistID, playableID int64) error {
	pos, err := p.positionOf(ctx, playlistID, playableID)
	if err != nil {
		return err
	}
	count, err := p.itemCount(ctx, playlistID)
	if err != nil {
		return err
	}

	_, err = p.q.ExecContext(ctx, `
		DELETE FROM playlist_playables WHERE playlist_id = ? AND playable_id = ?
	`, playlistID, playableID)
	if err != nil {
		return db.Classify(err)
	}
	return p.shift(ctx, playlistID, pos+1, count-1, -1)
}

// Reorder moves a playable to newPosition. Only the items between the old
// and new position are renumbered.
func (p *Playlists) Reorder(ctx context.Context, playlistID, playableID int64, newPosition int) error {
	if _, err := p.requireKind(ctx, playlistID, Static); err != nil {
		return err
	}
	old, err := p.positionOf(ctx, playlistID, playableID)
	if err != nil {
		return err
	}
	count, err := p.itemCount(ctx, playlistID)
	if err != nil {
		return err
	}
	if newPosition < 0 || newPosition >= count {
		return fmt.Errorf("%w: position %d out of range [0, %d)", db.ErrOrderingConflict, newPosition, count)
	}
	if newPosition == old {
		return nil
	}

	if err := p.setPosition(ctx, playlistID, old, parked); err != nil {
		return err
	}
	if newPosition < old {
		err = p.shift(ctx, playlistID, newPosition, old-1, 1)
	} else {
		err = p.shift(ctx, playlistID, old+1, newPosition, -1)
	}
	if err != nil {
		return err
	}
	return p.unpark(ctx, playlistID, newPosition)
}

// MoveItems moves the items at positions by delta as a block, the other
// items filling the freed slots in order. It returns the new positions in
// the order given. Moving past either end is an ordering conflict.
func (p *Playlists) MoveItems(ctx context.Context, playlistID int64, positions []int, delta int) ([]int, error) {
	if _, err := p.requireKind(ctx, playlistID, Static); err != nil {
		return nil, err
	}
	if len(positions) == 0 || delta == 0 {
		return positions, nil
	}

	ids, err := p.items(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	calc := newPositionCalculator(positions, len(ids), delta)
	if !calc.canMove() {
		return nil, fmt.Errorf("%w: cannot move positions %v by %d in %d items",
			db.ErrOrderingConflict, positions, delta, len(ids))
	}

	// Park the touched range below the parked slot, then write the final
	// positions one row at a time.
	lo, hi := calc.span()
	if _, err := p.q.ExecContext(ctx, `
		UPDATE playlist_playables SET position = -position - 2
		WHERE playlist_id = ? AND position BETWEEN ? AND ?
	`, playlistID, lo, hi); err != nil {
		return nil, db.Classify(err)
	}

	order := calc.order()
	for pos := lo; pos <= hi; pos++ {
		_, err := p.q.ExecContext(ctx, `
			UPDATE playlist_playables SET position = ?
			WHERE playlist_id = ? AND playable_id = ?
		`, pos, playlistID, ids[order[pos]])
		if err != nil {
			return nil, db.Classify(err)
		}
	}

	return calc.newPositions(positions), nil
}

// Clear removes every item from a static playlist.
func (p *Playlists) Clear(ctx context.Context, playlistID int64) error {
	if _, err := p.requireKind(ctx, playlistID, Static); err != nil {
		return err
	}
	_, err := p.q.ExecContext(ctx, `DELETE FROM playlist_playables WHERE playlist_id = ?`, playlistID)
	return db.Classify(err)
}

// Detach removes a playable from every static playlist holding it, closing
// each gap. It returns the number of playlists touched.
func (p *Playlists) Detach(ctx context.Context, playableID int64) (int, error) {
	var playlistIDs []int64
	err := sqlx.SelectContext(ctx, p.q, &playlistIDs, `
		SELECT playlist_id FROM playlist_playables WHERE playable_id = ? ORDER BY playlist_id
	`, playableID)
	if err != nil {
		return 0, db.Classify(err)
	}

	for _, id := range playlistIDs {
		if err := p.remove(ctx, id, playableID); err != nil {
			return 0, err
		}
	}
	return len(playlistIDs), nil
}

// CheckOrder reports an ordering conflict if the positions of a static
// playlist are not exactly 0..n-1.
func (p *Playlists) CheckOrder(ctx context.Context, playlistID int64) error {
	var positions []int
	err := sqlx.SelectContext(ctx, p.q, &positions, `
		SELECT position FROM playlist_playables WHERE playlist_id = ? ORDER BY position
	`, playlistID)
	if err != nil {
		return db.Classify(err)
	}
	for i, pos := range positions {
		if pos != i {
			return fmt.Errorf("%w: playlist %d has position %d at index %d", db.ErrOrderingConflict, playlistID, pos, i)
		}
	}
	return nil
}

func (p *Playlists) positionOf(ctx context.Context, playlistID, playableID int64) (int, error) {
	var pos int
	err := sqlx.GetContext(ctx, p.q, &pos, `
		SELECT position FROM playlist_playables WHERE playlist_id = ? AND playable_id = ?
	`, playlistID, playableID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: playable %d is not in playlist %d", db.ErrNotFound, playableID, playlistID)
	}
	return pos, db.Classify(err)
}

// shift adds delta to every position in [lo, hi]. Rows first move to
// distinct negative slots below parked, then to their target.
func (p *Playlists) shift(ctx context.Context, playlistID int64, lo, hi, delta int) error {
	if lo > hi {
		return nil
	}
	if _, err := p.q.ExecContext(ctx, `
		UPDATE playlist_playables SET position = -(position + ?) - 2
		WHERE playlist_id = ? AND position BETWEEN ? AND ?
	`, delta, playlistID, lo, hi); err != nil {
		return db.Classify(err)
	}
	_, err := p.q.ExecContext(ctx, `
		UPDATE playlist_playables SET position = -(position + 2)
		WHERE playlist_id = ? AND position < ?
	`, playlistID, parked)
	return db.Classify(err)
}

func (p *Playlists) setPosition(ctx context.Context, playlistID int64, from, to int) error {
	_, err := p.q.ExecContext(ctx, `
		UPDATE playlist_playables SET position = ? WHERE playlist_id = ? AND position = ?
	`, to, playlistID, from)
	return db.Classify(err)
}

func (p *Playlists) unpark(ctx context.Context, playlistID int64, to int) error {
	return p.setPosition(ctx, playlistID, parked, to)
}
