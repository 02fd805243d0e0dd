package library

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/llehouerou/wavestore/internal/db"
)

const playableColumns = `
	p.id, p.title,
	p.artist_id, COALESCE(ar.name, '') AS artist_name,
	p.album_id, COALESCE(al.name, '') AS album_name,
	p.genre_id, COALESCE(g.name, '') AS genre_name,
	p.duration, p.source_url, p.kind, p.created_at`

const playableJoins = `
	FROM playables p
	LEFT JOIN artists ar ON ar.id = p.artist_id
	LEFT JOIN albums al ON al.id = p.album_id
	LEFT JOIN genres g ON g.id = p.genre_id`

// InsertPlayable inserts a playable and returns its id. Unknown artist, album
// or genre ids and duplicate source URLs are referential integrity errors.
func (l *Library) InsertPlayable(ctx context.Context, f Fields) (int64, error) {
	var id int64
	err := sqlx.GetContext(ctx, l.q, &id, `
		INSERT INTO playables (title, artist_id, album_id, genre_id, duration, source_url, kind, created_at, artwork)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`, f.Title, db.PtrToNullInt64(f.ArtistID), db.PtrToNullInt64(f.AlbumID), db.PtrToNullInt64(f.GenreID),
		f.Duration, f.SourceURL, int(f.Kind), l.Now().Unix(), f.Artwork)
	if err != nil {
		return 0, fmt.Errorf("insert playable %q: %w", f.SourceURL, db.Classify(err))
	}
	return id, nil
}

// UpdatePlayable replaces every writable attribute of a playable.
// The creation timestamp is kept.
func (l *Library) UpdatePlayable(ctx context.Context, id int64, f Fields) error {
	res, err := l.q.ExecContext(ctx, `
		UPDATE playables
		SET title = ?, artist_id = ?, album_id = ?, genre_id = ?, duration = ?, source_url = ?, kind = ?, artwork = ?
		WHERE id = ?
	`, f.Title, db.PtrToNullInt64(f.ArtistID), db.PtrToNullInt64(f.AlbumID), db.PtrToNullInt64(f.GenreID),
		f.Duration, f.SourceURL, int(f.Kind), f.Artwork, id)
	if err != nil {
		return fmt.Errorf("update playable %d: %w", id, db.Classify(err))
	}
	return requireAffected(res, "playable", id)
}

// DeletePlayable deletes a playable. Likes, tag links and playlist rows go
// with it through ON DELETE CASCADE.
func (l *Library) DeletePlayable(ctx context.Context, id int64) error {
	res, err := l.q.ExecContext(ctx, `DELETE FROM playables WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete playable %d: %w", id, db.Classify(err))
	}
	return requireAffected(res, "playable", id)
}

// Playable returns a playable by id, artwork included.
func (l *Library) Playable(ctx context.Context, id int64) (*Playable, error) {
	var p Playable
	err := sqlx.GetContext(ctx, l.q, &p,
		`SELECT `+playableColumns+`, p.artwork `+playableJoins+` WHERE p.id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("playable %d: %w", id, db.Classify(err))
	}
	return &p, nil
}

// PlayableIDBySource returns the id of the playable read from url.
func (l *Library) PlayableIDBySource(ctx context.Context, url string) (int64, error) {
	var id int64
	err := sqlx.GetContext(ctx, l.q, &id, `SELECT id FROM playables WHERE source_url = ?`, url)
	if err != nil {
		return 0, fmt.Errorf("playable %q: %w", url, db.Classify(err))
	}
	return id, nil
}

// PlayablesByIDs returns the playables with the given ids in the requested
// order. Unknown ids are skipped. Artwork is not loaded.
func (l *Library) PlayablesByIDs(ctx context.Context, ids []int64) ([]Playable, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT `+playableColumns+playableJoins+` WHERE p.id IN (?)`, ids)
	if err != nil {
		return nil, err
	}

	var found []Playable
	if err := sqlx.SelectContext(ctx, l.q, &found, l.q.Rebind(query), args...); err != nil {
		return nil, db.Classify(err)
	}

	byID := make(map[int64]Playable, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]Playable, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// PlayablesBySource returns the playables whose source URL is in urls,
// ordered by id. Artwork is not loaded.
func (l *Library) PlayablesBySource(ctx context.Context, urls []string) ([]Playable, error) {
	if len(urls) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT `+playableColumns+playableJoins+` WHERE p.source_url IN (?) ORDER BY p.id`, urls)
	if err != nil {
		return nil, err
	}

	var out []Playable
	err = sqlx.SelectContext(ctx, l.q, &out, l.q.Rebind(query), args...)
	return out, db.Classify(err)
}

// PlayableIDsByArtist returns the ids of an artist's playables.
func (l *Library) PlayableIDsByArtist(ctx context.Context, artistID int64) ([]int64, error) {
	var ids []int64
	err := sqlx.SelectContext(ctx, l.q, &ids, `SELECT id FROM playables WHERE artist_id = ? ORDER BY id`, artistID)
	return ids, db.Classify(err)
}

// PlayableIDsByAlbum returns the ids of an album's playables.
func (l *Library) PlayableIDsByAlbum(ctx context.Context, albumID int64) ([]int64, error) {
	var ids []int64
	err := sqlx.SelectContext(ctx, l.q, &ids, `SELECT id FROM playables WHERE album_id = ? ORDER BY id`, albumID)
	return ids, db.Classify(err)
}
