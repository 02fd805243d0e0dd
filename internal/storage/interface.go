package storage

import "context"

// Interface defines the storage contract for dependency injection and testing.
type Interface interface {
	// Catalog
	Import(ctx context.Context, d Descriptor) (int64, error)
	ImportMany(ctx context.Context, ds []Descriptor) (ImportResult, error)
	UpdatePlayable(ctx context.Context, id int64, d Descriptor) error
	DeletePlayable(ctx context.Context, id int64) error
	DeletePlayables(ctx context.Context, ids []int64) error
	RenameArtist(ctx context.Context, id int64, name string) error
	RenameAlbum(ctx context.Context, id int64, name string) error
	RenameGenre(ctx context.Context, id int64, name string) error
	Playable(ctx context.Context, id int64) (*Playable, error)
	PlayableBySource(ctx context.Context, url string) (*Playable, error)
	Browse(ctx context.Context, f Filter) ([]Playable, error)
	Artists(ctx context.Context) ([]Artist, error)
	Albums(ctx context.Context, artistID *int64) ([]Album, error)
	Genres(ctx context.Context) ([]Genre, error)
	Artist(ctx context.Context, id int64) (*Artist, error)
	Album(ctx context.Context, id int64) (*Album, error)

	// Tags
	TagPlayable(ctx context.Context, playableID int64, name string) (int64, error)
	UntagPlayable(ctx context.Context, playableID int64, name string) error
	TagPlayableMany(ctx context.Context, playableID int64, names []string) error
	UntagPlayableMany(ctx context.Context, playableID int64, names []string) error
	TagsFor(ctx context.Context, playableID int64) ([]Tag, error)
	Tags(ctx context.Context) ([]Tag, error)
	Tag(ctx context.Context, id int64) (*Tag, error)
	Tagged(ctx context.Context, name string) ([]Playable, error)
	RenameTag(ctx context.Context, id int64, name string) error
	DeleteTag(ctx context.Context, id int64) error

	// Likes
	Like(ctx context.Context, playableID int64) error
	Unlike(ctx context.Context, playableID int64) error
	LikeMany(ctx context.Context, ids []int64) error
	UnlikeMany(ctx context.Context, ids []int64) error
	ToggleLike(ctx context.Context, playableID int64) (bool, error)
	IsLiked(ctx context.Context, playableID int64) (bool, error)
	Liked(ctx context.Context) ([]Playable, error)
	LikedSet(ctx context.Context, ids []int64) (map[int64]bool, error)

	// Playlists
	CreatePlaylist(ctx context.Context, name string, kind PlaylistKind, parentID *int64) (int64, error)
	RenamePlaylist(ctx context.Context, id int64, name string) error
	MovePlaylist(ctx context.Context, id int64, parentID *int64) error
	SetPlaylistPosition(ctx context.Context, id int64, position int) error
	DeletePlaylist(ctx context.Context, id int64, policy DeletePolicy) error
	Playlist(ctx context.Context, id int64) (*Playlist, error)
	Playlists(ctx context.Context) ([]Playlist, error)
	PlaylistItems(ctx context.Context, id int64) ([]Playable, error)
	AddToPlaylist(ctx context.Context, playlistID, playableID int64, position *int) (int, error)
	AddManyToPlaylist(ctx context.Context, playlistID int64, playableIDs []int64) (int, error)
	InsertIntoPlaylist(ctx context.Context, playlistID int64, playableIDs []int64, position int) error
	AddToPlaylistNew(ctx context.Context, playlistID int64, d Descriptor) (int64, error)
	RemoveFromPlaylist(ctx context.Context, playlistID, playableID int64) error
	RemoveManyFromPlaylist(ctx context.Context, playlistID int64, playableIDs []int64) error
	ReorderPlaylist(ctx context.Context, playlistID, playableID int64, position int) error
	MovePlaylistItems(ctx context.Context, playlistID int64, positions []int, delta int) ([]int, error)
	ClearPlaylist(ctx context.Context, playlistID int64) error
	SetSmartTags(ctx context.Context, playlistID int64, names []string) error
	SetMatch(ctx context.Context, playlistID int64, mode MatchMode) error
	DefineSmartPlaylist(ctx context.Context, playlistID int64, names []string, mode MatchMode) error
	SmartTags(ctx context.Context, playlistID int64) ([]Tag, error)

	// Search
	Search(ctx context.Context, query string, limit int) ([]Playable, error)

	// Maintenance
	Stats(ctx context.Context) (Stats, error)
	PruneOrphans(ctx context.Context) (PruneResult, error)
	RebuildSearchIndex(ctx context.Context) (int64, error)
	VerifySearchIndex(ctx context.Context) (Drift, error)
	VerifyPlaylistOrder(ctx context.Context) ([]int64, error)

	Close() error
}

// Verify Store implements Interface at compile time.
var _ Interface = (*Store)(nil)
