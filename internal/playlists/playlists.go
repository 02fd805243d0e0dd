// Package playlists is the playlist store: a tree of folders, static
// playlists with an explicit order, and dynamic playlists whose membership
// is resolved from tags at read time.
package playlists

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/llehouerou/wavestore/internal/db"
	"github.com/llehouerou/wavestore/internal/library"
	"github.com/llehouerou/wavestore/internal/tags"
)

// Kind is the variant of a playlist.
type Kind string

const (
	Static  Kind = "static"
	Dynamic Kind = "dynamic"
	Folder  Kind = "folder"
)

// ParseKind accepts "static", "dynamic" (or "smart") and "folder".
func ParseKind(s string) (Kind, error) {
	switch s {
	case "static", "":
		return Static, nil
	case "dynamic", "smart":
		return Dynamic, nil
	case "folder":
		return Folder, nil
	}
	return "", fmt.Errorf("unknown playlist kind %q", s)
}

// MatchMode selects how a dynamic playlist combines its tags.
type MatchMode string

const (
	MatchAll MatchMode = "all" // playables carrying every tag
	MatchAny MatchMode = "any" // playables carrying at least one tag
)

// Playlist is a node of the playlist tree.
type Playlist struct {
	ID        int64     `db:"id"`
	ParentID  *int64    `db:"parent_id"`
	Name      string    `db:"name"`
	Kind      Kind      `db:"kind"`
	Match     MatchMode `db:"match_mode"`
	Position  int       `db:"position"` // among siblings
	CreatedAt int64     `db:"created_at"`

	// Depth is set by List: 0 for root nodes.
	Depth int `db:"-"`
}

// DeletePolicy decides what happens to the children of a deleted folder.
type DeletePolicy int

const (
	// DeleteRefuse fails with a referential integrity error when the folder
	// has children.
	DeleteRefuse DeletePolicy = iota
	// DeleteCascade deletes the whole subtree.
	DeleteCascade
	// DeleteReparent moves the children to the folder's parent, after its
	// existing children.
	DeleteReparent
)

const playlistColumns = `id, parent_id, name, kind, match_mode, position, created_at`

// Playlists runs playlist statements against q.
type Playlists struct {
	q    db.Querier
	tags *tags.Tags

	// Now stamps new playlists. Defaults to time.Now.
	Now func() time.Time
}

// New creates a Playlists bound to q. Dynamic playlists resolve through tg.
func New(q db.Querier, tg *tags.Tags) *Playlists {
	return &Playlists{q: q, tags: tg, Now: time.Now}
}

// Create creates a playlist of the given kind under parentID (nil for the
// root), after the existing siblings. The parent must be a folder.
func (p *Playlists) Create(ctx context.Context, name string, kind Kind, parentID *int64) (int64, error) {
	if kind != Static && kind != Dynamic && kind != Folder {
		return 0, fmt.Errorf("%w: playlist kind %q", db.ErrReferentialIntegrity, kind)
	}
	if err := p.checkParent(ctx, parentID); err != nil {
		return 0, err
	}

	pos, err := p.siblingCount(ctx, parentID)
	if err != nil {
		return 0, err
	}

	var id int64
	err = sqlx.GetContext(ctx, p.q, &id, `
		INSERT INTO playlists (parent_id, name, kind, position, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`, db.PtrToNullInt64(parentID), library.CleanName(name), string(kind), pos, p.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("create playlist %q: %w", name, db.Classify(err))
	}
	return id, nil
}

// CreateFolder creates a folder under parentID (nil for the root).
func (p *Playlists) CreateFolder(ctx context.Context, name string, parentID *int64) (int64, error) {
	return p.Create(ctx, name, Folder, parentID)
}

// Rename renames a playlist. Names are unique ignoring case.
func (p *Playlists) Rename(ctx context.Context, id int64, name string) error {
	res, err := p.q.ExecContext(ctx, `UPDATE playlists SET name = ? WHERE id = ?`, library.CleanName(name), id)
	if err != nil {
		return fmt.Errorf("rename playlist %d: %w", id, db.Classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return db.Classify(err)
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}

// Get returns a playlist by its ID.
func (p *Playlists) Get(ctx context.Context, id int64) (*Playlist, error) {
	var pl Playlist
	err := sqlx.GetContext(ctx, p.q, &pl, `SELECT `+playlistColumns+` FROM playlists WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("playlist %d: %w", id, db.Classify(err))
	}
	return &pl, nil
}

// Children returns the playlists directly under parentID in display order.
// Pass nil for parentID to get root-level playlists.
func (p *Playlists) Children(ctx context.Context, parentID *int64) ([]Playlist, error) {
	var out []Playlist
	err := sqlx.SelectContext(ctx, p.q, &out, `
		SELECT `+playlistColumns+` FROM playlists
		WHERE parent_id IS ?
		ORDER BY position, id
	`, db.PtrToNullInt64(parentID))
	return out, db.Classify(err)
}

// List returns every playlist in tree order: each node is followed by its
// subtree, siblings in display order.
func (p *Playlists) List(ctx context.Context) ([]Playlist, error) {
	var all []Playlist
	err := sqlx.SelectContext(ctx, p.q, &all, `
		SELECT `+playlistColumns+` FROM playlists ORDER BY position, id
	`)
	if err != nil {
		return nil, db.Classify(err)
	}

	children := make(map[int64][]Playlist)
	var roots []Playlist
	for _, pl := range all {
		if pl.ParentID == nil {
			roots = append(roots, pl)
			continue
		}
		children[*pl.ParentID] = append(children[*pl.ParentID], pl)
	}

	out := make([]Playlist, 0, len(all))
	var walk func(nodes []Playlist, depth int)
	walk = func(nodes []Playlist, depth int) {
		for _, pl := range nodes {
			pl.Depth = depth
			out = append(out, pl)
			walk(children[pl.ID], depth+1)
		}
	}
	walk(roots, 0)
	return out, nil
}

// Count returns the number of playlists of each kind.
func (p *Playlists) Count(ctx context.Context) (map[Kind]int, error) {
	var rows []struct {
		Kind  Kind `db:"kind"`
		Count int  `db:"n"`
	}
	err := sqlx.SelectContext(ctx, p.q, &rows, `SELECT kind, COUNT(*) AS n FROM playlists GROUP BY kind`)
	if err != nil {
		return nil, db.Classify(err)
	}
	out := make(map[Kind]int, len(rows))
	for _, r := range rows {
		out[r.Kind] = r.Count
	}
	return out, nil
}

// requireKind returns the playlist, failing with a kind mismatch unless it
// is one of kinds.
func (p *Playlists) requireKind(ctx context.Context, id int64, kinds ...Kind) (*Playlist, error) {
	pl, err := p.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, k := range kinds {
		if pl.Kind == k {
			return pl, nil
		}
	}
	return nil, fmt.Errorf("%w: playlist %d is %s", db.ErrKindMismatch, id, pl.Kind)
}

// checkParent verifies parentID is nil or an existing folder.
func (p *Playlists) checkParent(ctx context.Context, parentID *int64) error {
	if parentID == nil {
		return nil
	}
	parent, err := p.Get(ctx, *parentID)
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("%w: parent playlist %d does not exist", db.ErrReferentialIntegrity, *parentID)
	}
	if err != nil {
		return err
	}
	if parent.Kind != Folder {
		return fmt.Errorf("%w: parent playlist %d is %s, not a folder", db.ErrKindMismatch, *parentID, parent.Kind)
	}
	return nil
}

func (p *Playlists) siblingCount(ctx context.Context, parentID *int64) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, p.q, &n, `SELECT COUNT(*) FROM playlists WHERE parent_id IS ?`, db.PtrToNullInt64(parentID))
	return n, db.Classify(err)
}

func notFound(id int64) error {
	return fmt.Errorf("%w: playlist %d", db.ErrNotFound, id)
}
