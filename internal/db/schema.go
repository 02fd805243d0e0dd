package db

import (
	"context"
)

const currentSchemaVersion = 1

const schema = `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY
	);

	CREATE TABLE IF NOT EXISTS artists (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL COLLATE NOCASE UNIQUE CHECK (name <> '')
	);

	CREATE TABLE IF NOT EXISTS albums (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL COLLATE NOCASE CHECK (name <> ''),
		artist_id INTEGER REFERENCES artists(id)
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_albums_name_artist ON albums(name, IFNULL(artist_id, 0));

	CREATE TABLE IF NOT EXISTS genres (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL COLLATE NOCASE UNIQUE CHECK (name <> '')
	);

	CREATE TABLE IF NOT EXISTS playables (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		artist_id INTEGER REFERENCES artists(id),
		album_id INTEGER REFERENCES albums(id),
		genre_id INTEGER REFERENCES genres(id),
		duration INTEGER NOT NULL DEFAULT 0 CHECK (duration >= 0),
		source_url TEXT NOT NULL UNIQUE CHECK (source_url <> ''),
		kind INTEGER NOT NULL DEFAULT 0 CHECK (kind BETWEEN 0 AND 4),
		created_at INTEGER NOT NULL,
		artwork BLOB
	);

	CREATE INDEX IF NOT EXISTS idx_playables_artist ON playables(artist_id);
	CREATE INDEX IF NOT EXISTS idx_playables_album ON playables(album_id);
	CREATE INDEX IF NOT EXISTS idx_playables_genre ON playables(genre_id);
	CREATE INDEX IF NOT EXISTS idx_playables_created_at ON playables(created_at);
	CREATE INDEX IF NOT EXISTS idx_playables_duration ON playables(duration);

	CREATE TABLE IF NOT EXISTS tags (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL COLLATE NOCASE UNIQUE CHECK (name <> '')
	);

	CREATE TABLE IF NOT EXISTS playable_tags (
		tag_id INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
		playable_id INTEGER NOT NULL REFERENCES playables(id) ON DELETE CASCADE,
		PRIMARY KEY (tag_id, playable_id)
	);

	CREATE INDEX IF NOT EXISTS idx_playable_tags_playable ON playable_tags(playable_id);

	CREATE TABLE IF NOT EXISTS likes (
		playable_id INTEGER PRIMARY KEY REFERENCES playables(id) ON DELETE CASCADE,
		liked_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS playlists (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		parent_id INTEGER REFERENCES playlists(id) ON DELETE CASCADE,
		name TEXT NOT NULL COLLATE NOCASE UNIQUE CHECK (name <> ''),
		kind TEXT NOT NULL DEFAULT 'static' CHECK (kind IN ('static', 'dynamic', 'folder')),
		match_mode TEXT NOT NULL DEFAULT 'all' CHECK (match_mode IN ('all', 'any')),
		position INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_playlists_parent ON playlists(parent_id, position);

	CREATE TABLE IF NOT EXISTS smart_playlist_tags (
		playlist_id INTEGER NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
		tag_id INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
		PRIMARY KEY (playlist_id, tag_id)
	);

	CREATE INDEX IF NOT EXISTS idx_smart_playlist_tags_tag ON smart_playlist_tags(tag_id);

	CREATE TABLE IF NOT EXISTS playlist_playables (
		playlist_id INTEGER NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
		playable_id INTEGER NOT NULL REFERENCES playables(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		PRIMARY KEY (playlist_id, playable_id),
		UNIQUE (playlist_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_playlist_playables_playable ON playlist_playables(playable_id);

	CREATE VIRTUAL TABLE IF NOT EXISTS playable_search USING fts5(
		title,
		artist,
		album,
		tokenize='trigram'
	);

	CREATE TRIGGER IF NOT EXISTS trg_playables_deindex AFTER DELETE ON playables
	BEGIN
		DELETE FROM playable_search WHERE rowid = OLD.id;
	END;
`

// InitSchema creates every table, index and trigger if missing and records
// the schema version.
func InitSchema(ctx context.Context, q Querier) error {
	if _, err := q.ExecContext(ctx, schema); err != nil {
		return Classify(err)
	}

	_, err := q.ExecContext(ctx, `
		INSERT OR IGNORE INTO schema_version (version) VALUES (?)
	`, currentSchemaVersion)
	return Classify(err)
}

// SchemaVersion returns the highest recorded schema version.
func SchemaVersion(ctx context.Context, q Querier) (int, error) {
	var v int
	err := q.QueryRowxContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&v)
	return v, Classify(err)
}
