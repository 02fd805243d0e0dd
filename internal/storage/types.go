package storage

import (
	"github.com/llehouerou/wavestore/internal/library"
	"github.com/llehouerou/wavestore/internal/playlists"
	"github.com/llehouerou/wavestore/internal/search"
	"github.com/llehouerou/wavestore/internal/tags"
)

// Catalog and playlist values handed to the state layer.
type (
	Playable     = library.Playable
	Artist       = library.Artist
	Album        = library.Album
	Genre        = library.Genre
	Filter       = library.Filter
	SortKey      = library.SortKey
	PlayableKind = library.Kind
	Tag          = tags.Tag
	Playlist     = playlists.Playlist
	PlaylistKind = playlists.Kind
	MatchMode    = playlists.MatchMode
	DeletePolicy = playlists.DeletePolicy
	Drift        = search.Drift
)

const (
	Static  = playlists.Static
	Dynamic = playlists.Dynamic
	Folder  = playlists.Folder

	MatchAll = playlists.MatchAll
	MatchAny = playlists.MatchAny

	DeleteRefuse   = playlists.DeleteRefuse
	DeleteCascade  = playlists.DeleteCascade
	DeleteReparent = playlists.DeleteReparent
)

// ParseSortKey accepts "title", "artist", "album", "duration" and "added".
func ParseSortKey(s string) (SortKey, bool) {
	return library.ParseSortKey(s)
}

// ParsePlaylistKind accepts "static", "dynamic" (or "smart") and "folder".
func ParsePlaylistKind(s string) (PlaylistKind, error) {
	return playlists.ParseKind(s)
}

// Descriptor describes a playable to import: names instead of ids, plus the
// tags to apply. Empty names leave the reference unset.
type Descriptor struct {
	Title     string
	Artist    string
	Album     string
	Genre     string
	Duration  int64 // seconds
	SourceURL string
	Kind      PlayableKind
	Artwork   []byte
	Tags      []string
}

// ImportResult reports what ImportMany did, in input order.
type ImportResult struct {
	IDs     []int64 // id of each descriptor, new or existing
	Added   int
	Skipped int // sources already in the catalog
}

// PruneResult counts the rows removed by PruneOrphans.
type PruneResult struct {
	Artists int64
	Albums  int64
	Genres  int64
	Tags    int64
}

// Total is the number of rows removed.
func (r PruneResult) Total() int64 {
	return r.Artists + r.Albums + r.Genres + r.Tags
}

// Stats summarizes the store.
type Stats struct {
	Playables     int
	Artists       int
	Albums        int
	Genres        int
	Tags          int
	Liked         int
	Playlists     map[PlaylistKind]int
	TotalDuration int64 // seconds
	SearchEntries int
	SchemaVersion int
}
