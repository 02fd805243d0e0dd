package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/llehouerou/wavestore/internal/db"
)

// UpsertArtist returns the id of the artist named name, creating it if no
// artist has that name ignoring case.
func (l *Library) UpsertArtist(ctx context.Context, name string) (int64, error) {
	return upsertName(ctx, l.q, "artists", CleanName(name))
}

// UpsertGenre returns the id of the genre named name, creating it if needed.
func (l *Library) UpsertGenre(ctx context.Context, name string) (int64, error) {
	return upsertName(ctx, l.q, "genres", CleanName(name))
}

// UpsertAlbum returns the id of the album named name by artistID (nil for no
// artist), creating it if needed. An unknown artistID is a referential
// integrity error.
func (l *Library) UpsertAlbum(ctx context.Context, name string, artistID *int64) (int64, error) {
	name = CleanName(name)

	var id int64
	err := sqlx.GetContext(ctx, l.q, &id, `
		SELECT id FROM albums WHERE name = ? AND artist_id IS ?
	`, name, db.PtrToNullInt64(artistID))
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, db.Classify(err)
	}

	err = sqlx.GetContext(ctx, l.q, &id, `
		INSERT INTO albums (name, artist_id) VALUES (?, ?) RETURNING id
	`, name, db.PtrToNullInt64(artistID))
	return id, db.Classify(err)
}

// upsertName inserts name into a (id, name UNIQUE COLLATE NOCASE) table,
// falling back to the existing row on conflict.
func upsertName(ctx context.Context, q db.Querier, table, name string) (int64, error) {
	var id int64
	err := sqlx.GetContext(ctx, q, &id,
		`INSERT INTO `+table+` (name) VALUES (?) ON CONFLICT(name) DO NOTHING RETURNING id`, name)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, db.Classify(err)
	}

	err = sqlx.GetContext(ctx, q, &id, `SELECT id FROM `+table+` WHERE name = ?`, name)
	return id, db.Classify(err)
}

// RenameArtist renames an artist. Renaming onto another artist's name is a
// referential integrity error. The caller is responsible for reindexing the
// artist's playables.
func (l *Library) RenameArtist(ctx context.Context, id int64, name string) error {
	return renameRow(ctx, l.q, "artists", "artist", id, CleanName(name))
}

// RenameAlbum renames an album.
func (l *Library) RenameAlbum(ctx context.Context, id int64, name string) error {
	return renameRow(ctx, l.q, "albums", "album", id, CleanName(name))
}

// RenameGenre renames a genre.
func (l *Library) RenameGenre(ctx context.Context, id int64, name string) error {
	return renameRow(ctx, l.q, "genres", "genre", id, CleanName(name))
}

func renameRow(ctx context.Context, q db.Querier, table, what string, id int64, name string) error {
	res, err := q.ExecContext(ctx, `UPDATE `+table+` SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return db.Classify(err)
	}
	return requireAffected(res, what, id)
}

func requireAffected(res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return db.Classify(err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %d", db.ErrNotFound, what, id)
	}
	return nil
}

// Artist returns an artist by id.
func (l *Library) Artist(ctx context.Context, id int64) (*Artist, error) {
	var a Artist
	err := sqlx.GetContext(ctx, l.q, &a, `
		SELECT ar.id, ar.name, (SELECT COUNT(*) FROM playables p WHERE p.artist_id = ar.id) AS playable_count
		FROM artists ar
		WHERE ar.id = ?
	`, id)
	if err != nil {
		return nil, fmt.Errorf("artist %d: %w", id, db.Classify(err))
	}
	return &a, nil
}

// Album returns an album by id.
func (l *Library) Album(ctx context.Context, id int64) (*Album, error) {
	var a Album
	err := sqlx.GetContext(ctx, l.q, &a, `
		SELECT al.id, al.name, al.artist_id, COALESCE(ar.name, '') AS artist_name,
			(SELECT COUNT(*) FROM playables p WHERE p.album_id = al.id) AS playable_count
		FROM albums al
		LEFT JOIN artists ar ON ar.id = al.artist_id
		WHERE al.id = ?
	`, id)
	if err != nil {
		return nil, fmt.Errorf("album %d: %w", id, db.Classify(err))
	}
	return &a, nil
}

// Artists returns every artist ordered by name.
func (l *Library) Artists(ctx context.Context) ([]Artist, error) {
	var artists []Artist
	err := sqlx.SelectContext(ctx, l.q, &artists, `
		SELECT ar.id, ar.name, COUNT(p.id) AS playable_count
		FROM artists ar
		LEFT JOIN playables p ON p.artist_id = ar.id
		GROUP BY ar.id
		ORDER BY ar.name COLLATE NOCASE, ar.id
	`)
	return artists, db.Classify(err)
}

// Albums returns albums ordered by name. Pass nil for artistID to list every
// album.
func (l *Library) Albums(ctx context.Context, artistID *int64) ([]Album, error) {
	query := `
		SELECT al.id, al.name, al.artist_id, COALESCE(ar.name, '') AS artist_name, COUNT(p.id) AS playable_count
		FROM albums al
		LEFT JOIN artists ar ON ar.id = al.artist_id
		LEFT JOIN playables p ON p.album_id = al.id
	`
	var args []any
	if artistID != nil {
		query += ` WHERE al.artist_id = ?`
		args = append(args, *artistID)
	}
	query += `
		GROUP BY al.id
		ORDER BY al.name COLLATE NOCASE, artist_name COLLATE NOCASE, al.id
	`

	var albums []Album
	err := sqlx.SelectContext(ctx, l.q, &albums, query, args...)
	return albums, db.Classify(err)
}

// Genres returns every genre ordered by name.
func (l *Library) Genres(ctx context.Context) ([]Genre, error) {
	var genres []Genre
	err := sqlx.SelectContext(ctx, l.q, &genres, `
		SELECT g.id, g.name, COUNT(p.id) AS playable_count
		FROM genres g
		LEFT JOIN playables p ON p.genre_id = g.id
		GROUP BY g.id
		ORDER BY g.name COLLATE NOCASE, g.id
	`)
	return genres, db.Classify(err)
}
