// Package library is the catalog store: artists, albums, genres and the
// playables that reference them.
package library

import (
	"fmt"
	"strings"
	"time"

	"github.com/llehouerou/wavestore/internal/db"
)

// Kind discriminates the medium a playable is read from.
type Kind int

const (
	LocalFile Kind = iota
	GoogleDrive
	Dropbox
	YouTube
	Stream
)

var kindNames = [...]string{"local", "gdrive", "dropbox", "youtube", "stream"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind parses the name returned by Kind.String.
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if strings.EqualFold(s, name) {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown playable kind %q", s)
}

// Artist is a performer, unique by case-insensitive name.
type Artist struct {
	ID            int64  `db:"id"`
	Name          string `db:"name"`
	PlayableCount int    `db:"playable_count"`
}

// Album groups playables under a name, optionally scoped to an artist.
type Album struct {
	ID            int64  `db:"id"`
	Name          string `db:"name"`
	ArtistID      *int64 `db:"artist_id"`
	ArtistName    string `db:"artist_name"`
	PlayableCount int    `db:"playable_count"`
}

// Genre is a style label, unique by case-insensitive name.
type Genre struct {
	ID            int64  `db:"id"`
	Name          string `db:"name"`
	PlayableCount int    `db:"playable_count"`
}

// Playable is a local file or remote stream, with its references resolved
// to names. Names are empty when the reference is unset.
type Playable struct {
	ID         int64  `db:"id"`
	Title      string `db:"title"`
	ArtistID   *int64 `db:"artist_id"`
	ArtistName string `db:"artist_name"`
	AlbumID    *int64 `db:"album_id"`
	AlbumName  string `db:"album_name"`
	GenreID    *int64 `db:"genre_id"`
	GenreName  string `db:"genre_name"`
	Duration   int64  `db:"duration"` // seconds
	SourceURL  string `db:"source_url"`
	Kind       Kind   `db:"kind"`
	CreatedAt  int64  `db:"created_at"` // unix seconds
	Artwork    []byte `db:"artwork"`
}

// Fields are the writable attributes of a playable.
type Fields struct {
	Title     string
	ArtistID  *int64
	AlbumID   *int64
	GenreID   *int64
	Duration  int64
	SourceURL string
	Kind      Kind
	Artwork   []byte
}

// Library runs catalog statements against q, which is either the database
// or a transaction owned by the caller.
type Library struct {
	q db.Querier

	// Now stamps new playables. Defaults to time.Now.
	Now func() time.Time
}

// New creates a Library bound to q.
func New(q db.Querier) *Library {
	return &Library{q: q, Now: time.Now}
}
