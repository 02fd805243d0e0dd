package playlists

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/llehouerou/wavestore/internal/db"
)

// Move reparents a playlist under parentID (nil for the root), after the
// new siblings. Moving a folder into its own subtree is a referential
// integrity error.
func (p *Playlists) Move(ctx context.Context, id int64, parentID *int64) error {
	pl, err := p.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := p.checkParent(ctx, parentID); err != nil {
		return err
	}
	if parentID != nil {
		inside, err := p.isInSubtree(ctx, *parentID, id)
		if err != nil {
			return err
		}
		if inside {
			return fmt.Errorf("%w: playlist %d cannot move into its own subtree", db.ErrReferentialIntegrity, id)
		}
	}
	if samePtr(pl.ParentID, parentID) {
		return nil
	}

	pos, err := p.siblingCount(ctx, parentID)
	if err != nil {
		return err
	}
	_, err = p.q.ExecContext(ctx, `UPDATE playlists SET parent_id = ?, position = ? WHERE id = ?`,
		db.PtrToNullInt64(parentID), pos, id)
	if err != nil {
		return fmt.Errorf("move playlist %d: %w", id, db.Classify(err))
	}
	return p.renumberSiblings(ctx, pl.ParentID)
}

// SetPosition moves a playlist to position among its siblings.
func (p *Playlists) SetPosition(ctx context.Context, id int64, position int) error {
	pl, err := p.Get(ctx, id)
	if err != nil {
		return err
	}
	siblings, err := p.siblingIDs(ctx, pl.ParentID)
	if err != nil {
		return err
	}
	if position < 0 || position >= len(siblings) {
		return fmt.Errorf("%w: position %d out of range [0, %d)", db.ErrOrderingConflict, position, len(siblings))
	}

	order := make([]int64, 0, len(siblings))
	for _, sid := range siblings {
		if sid != id {
			order = append(order, sid)
		}
	}
	order = append(order[:position], append([]int64{id}, order[position:]...)...)
	return p.writeSiblingOrder(ctx, order)
}

// Delete deletes a playlist. Items and smart tag definitions go with it.
// For a folder with children, policy decides what happens to them.
func (p *Playlists) Delete(ctx context.Context, id int64, policy DeletePolicy) error {
	pl, err := p.Get(ctx, id)
	if err != nil {
		return err
	}

	if pl.Kind == Folder {
		children, err := p.Children(ctx, &id)
		if err != nil {
			return err
		}
		if len(children) > 0 {
			switch policy {
			case DeleteRefuse:
				return fmt.Errorf("%w: folder %d has %d children", db.ErrReferentialIntegrity, id, len(children))
			case DeleteReparent:
				for _, c := range children {
					if err := p.Move(ctx, c.ID, pl.ParentID); err != nil {
						return err
					}
				}
			case DeleteCascade:
				_, err := p.q.ExecContext(ctx, `
					WITH RECURSIVE subtree(id) AS (
						SELECT id FROM playlists WHERE parent_id = ?
						UNION
						SELECT pl.id FROM playlists pl JOIN subtree s ON pl.parent_id = s.id
					)
					DELETE FROM playlists WHERE id IN (SELECT id FROM subtree)
				`, id)
				if err != nil {
					return fmt.Errorf("delete subtree of %d: %w", id, db.Classify(err))
				}
			default:
				return fmt.Errorf("unknown delete policy %d", policy)
			}
		}
	}

	if _, err := p.q.ExecContext(ctx, `DELETE FROM playlists WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete playlist %d: %w", id, db.Classify(err))
	}
	return p.renumberSiblings(ctx, pl.ParentID)
}

// isInSubtree reports whether node is root or one of its descendants.
func (p *Playlists) isInSubtree(ctx context.Context, node, root int64) (bool, error) {
	var n int
	err := sqlx.GetContext(ctx, p.q, &n, `
		WITH RECURSIVE subtree(id) AS (
			SELECT ?
			UNION
			SELECT pl.id FROM playlists pl JOIN subtree s ON pl.parent_id = s.id
		)
		SELECT COUNT(*) FROM subtree WHERE id = ?
	`, root, node)
	return n > 0, db.Classify(err)
}

func (p *Playlists) siblingIDs(ctx context.Context, parentID *int64) ([]int64, error) {
	var ids []int64
	err := sqlx.SelectContext(ctx, p.q, &ids, `
		SELECT id FROM playlists WHERE parent_id IS ? ORDER BY position, id
	`, db.PtrToNullInt64(parentID))
	return ids, db.Classify(err)
}

// renumberSiblings closes gaps in the positions under parentID.
func (p *Playlists) renumberSiblings(ctx context.Context, parentID *int64) error {
	ids, err := p.siblingIDs(ctx, parentID)
	if err != nil {
		return err
	}
	return p.writeSiblingOrder(ctx, ids)
}

func (p *Playlists) writeSiblingOrder(ctx context.Context, ids []int64) error {
	for pos, id := range ids {
		_, err := p.q.ExecContext(ctx, `UPDATE playlists SET position = ? WHERE id = ? AND position <> ?`, pos, id, pos)
		if err != nil {
			return db.Classify(err)
		}
	}
	return nil
}

func samePtr(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
