package library

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/llehouerou/wavestore/internal/db"
)

// SortKey selects the ordering of Browse results.
type SortKey int

const (
	SortTitle SortKey = iota
	SortArtist
	SortAlbum
	SortDuration
	SortAdded
)

// ParseSortKey accepts "title", "artist", "album", "duration" and "added".
func ParseSortKey(s string) (SortKey, bool) {
	switch strings.ToLower(s) {
	case "", "title":
		return SortTitle, true
	case "artist":
		return SortArtist, true
	case "album":
		return SortAlbum, true
	case "duration":
		return SortDuration, true
	case "added", "date", "date_added":
		return SortAdded, true
	}
	return SortTitle, false
}

// orderTerms lists the ORDER BY terms for each key. The playable id is
// always last so the order is total.
var orderTerms = map[SortKey][]string{
	SortTitle:    {"p.title COLLATE NOCASE"},
	SortArtist:   {"artist_name COLLATE NOCASE", "album_name COLLATE NOCASE", "p.title COLLATE NOCASE"},
	SortAlbum:    {"album_name COLLATE NOCASE", "p.title COLLATE NOCASE"},
	SortDuration: {"p.duration"},
	SortAdded:    {"p.created_at"},
}

// Filter narrows and orders a Browse. Zero values mean "no constraint".
type Filter struct {
	ArtistID    *int64
	AlbumID     *int64
	GenreID     *int64
	MinDuration int64 // seconds, inclusive
	MaxDuration int64 // seconds, inclusive
	AddedAfter  int64 // unix seconds, exclusive
	Sort        SortKey
	Desc        bool
	Limit       int
	Offset      int
}

// Browse lists playables matching f. Artwork is not loaded.
func (l *Library) Browse(ctx context.Context, f Filter) ([]Playable, error) {
	var where []string
	var args []any
	if f.ArtistID != nil {
		where = append(where, "p.artist_id = ?")
		args = append(args, *f.ArtistID)
	}
	if f.AlbumID != nil {
		where = append(where, "p.album_id = ?")
		args = append(args, *f.AlbumID)
	}
	if f.GenreID != nil {
		where = append(where, "p.genre_id = ?")
		args = append(args, *f.GenreID)
	}
	if f.MinDuration > 0 {
		where = append(where, "p.duration >= ?")
		args = append(args, f.MinDuration)
	}
	if f.MaxDuration > 0 {
		where = append(where, "p.duration <= ?")
		args = append(args, f.MaxDuration)
	}
	if f.AddedAfter > 0 {
		where = append(where, "p.created_at > ?")
		args = append(args, f.AddedAfter)
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + playableColumns + playableJoins)
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY ")
	b.WriteString(orderClause(f.Sort, f.Desc))

	limit := f.Limit
	if limit <= 0 {
		limit = -1
	}
	b.WriteString(" LIMIT ? OFFSET ?")
	args = append(args, limit, max(f.Offset, 0))

	var out []Playable
	err := sqlx.SelectContext(ctx, l.q, &out, b.String(), args...)
	return out, db.Classify(err)
}

func orderClause(key SortKey, desc bool) string {
	terms, ok := orderTerms[key]
	if !ok {
		terms = orderTerms[SortTitle]
	}
	dir := ""
	if desc {
		dir = " DESC"
	}
	parts := make([]string, 0, len(terms)+1)
	for _, t := range terms {
		parts = append(parts, t+dir)
	}
	parts = append(parts, "p.id"+dir)
	return strings.Join(parts, ", ")
}

// PlayableCount returns the number of playables in the catalog.
func (l *Library) PlayableCount(ctx context.Context) (int, error) {
	return l.count(ctx, `SELECT COUNT(*) FROM playables`)
}

// ArtistCount returns the number of artists, orphans included.
func (l *Library) ArtistCount(ctx context.Context) (int, error) {
	return l.count(ctx, `SELECT COUNT(*) FROM artists`)
}

// AlbumCount returns the number of albums, orphans included.
func (l *Library) AlbumCount(ctx context.Context) (int, error) {
	return l.count(ctx, `SELECT COUNT(*) FROM albums`)
}

// GenreCount returns the number of genres, orphans included.
func (l *Library) GenreCount(ctx context.Context) (int, error) {
	return l.count(ctx, `SELECT COUNT(*) FROM genres`)
}

// TotalDuration returns the summed duration of every playable in seconds.
func (l *Library) TotalDuration(ctx context.Context) (int64, error) {
	var total int64
	err := sqlx.GetContext(ctx, l.q, &total, `SELECT COALESCE(SUM(duration), 0) FROM playables`)
	return total, db.Classify(err)
}

func (l *Library) count(ctx context.Context, query string) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, l.q, &n, query)
	return n, db.Classify(err)
}

// PruneResult counts the rows removed by PruneOrphans.
type PruneResult struct {
	Artists int64
	Albums  int64
	Genres  int64
}

// PruneOrphans deletes albums no playable references, then artists no
// playable or album references, then unreferenced genres.
func (l *Library) PruneOrphans(ctx context.Context) (PruneResult, error) {
	var r PruneResult
	steps := []struct {
		query string
		dst   *int64
	}{
		{`DELETE FROM albums WHERE id NOT IN (SELECT album_id FROM playables WHERE album_id IS NOT NULL)`, &r.Albums},
		{`DELETE FROM artists
			WHERE id NOT IN (SELECT artist_id FROM playables WHERE artist_id IS NOT NULL)
			AND id NOT IN (SELECT artist_id FROM albums WHERE artist_id IS NOT NULL)`, &r.Artists},
		{`DELETE FROM genres WHERE id NOT IN (SELECT genre_id FROM playables WHERE genre_id IS NOT NULL)`, &r.Genres},
	}
	for _, s := range steps {
		res, err := l.q.ExecContext(ctx, s.query)
		if err != nil {
			return r, db.Classify(err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return r, db.Classify(err)
		}
		*s.dst = n
	}
	return r, nil
}
