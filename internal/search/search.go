// Package search maintains the text index over playable titles, artist names
// and album names, and answers ranked queries against it.
//
// The index is an FTS5 table using the trigram tokenizer, keyed by playable
// id. Its content is a denormalized copy of catalog names, so every write
// that changes a title or a referenced artist or album name must reindex the
// affected playables in the same transaction.
package search

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"

	"github.com/llehouerou/wavestore/internal/db"
)

// minTrigramWord is the shortest word the trigram tokenizer can match.
const minTrigramWord = 3

// bm25 column weights: title, artist, album.
const rankExpr = `bm25(playable_search, 10.0, 5.0, 1.0)`

// catalogEntry selects the current index values of playables from the catalog.
const catalogEntry = `
	SELECT p.id, p.title, COALESCE(ar.name, ''), COALESCE(al.name, '')
	FROM playables p
	LEFT JOIN artists ar ON ar.id = p.artist_id
	LEFT JOIN albums al ON al.id = p.album_id`

// Index runs search index statements against q.
type Index struct {
	q db.Querier
}

// New creates an Index bound to q.
func New(q db.Querier) *Index {
	return &Index{q: q}
}

// Index stores the searchable text of a playable, replacing any previous
// entry.
func (x *Index) Index(ctx context.Context, id int64, title, artist, album string) error {
	if err := x.Remove(ctx, id); err != nil {
		return err
	}
	_, err := x.q.ExecContext(ctx, `
		INSERT INTO playable_search (rowid, title, artist, album) VALUES (?, ?, ?, ?)
	`, id, title, artist, album)
	if err != nil {
		return fmt.Errorf("index playable %d: %w", id, db.Classify(err))
	}
	return nil
}

// Reindex recomputes the entry of a playable from the catalog.
func (x *Index) Reindex(ctx context.Context, id int64) error {
	if err := x.Remove(ctx, id); err != nil {
		return err
	}
	res, err := x.q.ExecContext(ctx,
		`INSERT INTO playable_search (rowid, title, artist, album) `+catalogEntry+` WHERE p.id = ?`, id)
	if err != nil {
		return fmt.Errorf("reindex playable %d: %w", id, db.Classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return db.Classify(err)
	}
	if n == 0 {
		return fmt.Errorf("%w: playable %d", db.ErrNotFound, id)
	}
	return nil
}

// Remove drops the entry of a playable. Removing a missing entry is a no-op.
func (x *Index) Remove(ctx context.Context, id int64) error {
	_, err := x.q.ExecContext(ctx, `DELETE FROM playable_search WHERE rowid = ?`, id)
	return db.Classify(err)
}

// ReindexArtist recomputes the entries of every playable by an artist.
// It returns the number of entries written.
func (x *Index) ReindexArtist(ctx context.Context, artistID int64) (int64, error) {
	return x.reindexWhere(ctx, `p.artist_id = ?`, artistID)
}

// ReindexAlbum recomputes the entries of every playable on an album.
func (x *Index) ReindexAlbum(ctx context.Context, albumID int64) (int64, error) {
	return x.reindexWhere(ctx, `p.album_id = ?`, albumID)
}

// Rebuild recreates the whole index from the catalog and returns the
// number of entries written.
func (x *Index) Rebuild(ctx context.Context) (int64, error) {
	if _, err := x.q.ExecContext(ctx, `DELETE FROM playable_search`); err != nil {
		return 0, db.Classify(err)
	}
	return x.insertFrom(ctx, "", nil)
}

func (x *Index) reindexWhere(ctx context.Context, cond string, arg any) (int64, error) {
	_, err := x.q.ExecContext(ctx, `
		DELETE FROM playable_search WHERE rowid IN (SELECT p.id FROM playables p WHERE `+cond+`)
	`, arg)
	if err != nil {
		return 0, db.Classify(err)
	}
	return x.insertFrom(ctx, cond, arg)
}

func (x *Index) insertFrom(ctx context.Context, cond string, arg any) (int64, error) {
	query := `INSERT INTO playable_search (rowid, title, artist, album) ` + catalogEntry
	var args []any
	if cond != "" {
		query += ` WHERE ` + cond
		args = append(args, arg)
	}
	res, err := x.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, db.Classify(err)
	}
	n, err := res.RowsAffected()
	return n, db.Classify(err)
}

// Count returns the number of index entries.
func (x *Index) Count(ctx context.Context) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, x.q, &n, `SELECT COUNT(*) FROM playable_search`)
	return n, db.Classify(err)
}

// Search returns the ids of the playables matching every word of query,
// best match first. Matching is case-insensitive substring matching on
// title, artist and album. A limit of zero or less means no limit.
// Queries containing a word shorter than three characters are answered by a
// substring scan ordered by title, since trigrams cannot match them.
func (x *Index) Search(ctx context.Context, query string, limit int) ([]int64, error) {
	words := strings.Fields(query)
	if len(words) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = -1
	}

	var ids []int64
	var err error
	if hasShortWord(words) {
		ids, err = x.scan(ctx, words, limit)
	} else {
		err = sqlx.SelectContext(ctx, x.q, &ids, `
			SELECT playable_search.rowid
			FROM playable_search
			JOIN playables p ON p.id = playable_search.rowid
			WHERE playable_search MATCH ?
			ORDER BY `+rankExpr+`, playable_search.rowid
			LIMIT ?
		`, escapeFTSQuery(words), limit)
	}
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, db.Classify(err))
	}
	return ids, nil
}

func (x *Index) scan(ctx context.Context, words []string, limit int) ([]int64, error) {
	conds := make([]string, 0, len(words))
	args := make([]any, 0, len(words)*3+1)
	for _, w := range words {
		conds = append(conds, `(casefold(s.title) LIKE ? ESCAPE '\' OR casefold(s.artist) LIKE ? ESCAPE '\' OR casefold(s.album) LIKE ? ESCAPE '\')`)
		pattern := "%" + escapeLike(strings.ToLower(w)) + "%"
		args = append(args, pattern, pattern, pattern)
	}
	args = append(args, limit)

	var ids []int64
	err := sqlx.SelectContext(ctx, x.q, &ids, `
		SELECT s.rowid
		FROM playable_search s
		JOIN playables p ON p.id = s.rowid
		WHERE `+strings.Join(conds, " AND ")+`
		ORDER BY s.title COLLATE NOCASE, s.rowid
		LIMIT ?
	`, args...)
	return ids, err
}

func hasShortWord(words []string) bool {
	for _, w := range words {
		if utf8.RuneCountInString(w) < minTrigramWord {
			return true
		}
	}
	return false
}

// escapeFTSQuery quotes each word for trigram substring matching.
// Adjacent phrases are an implicit AND in FTS5.
func escapeFTSQuery(words []string) string {
	quoted := make([]string, len(words))
	for i, word := range words {
		quoted[i] = `"` + strings.ReplaceAll(word, `"`, `""`) + `"`
	}
	return strings.Join(quoted, " ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
