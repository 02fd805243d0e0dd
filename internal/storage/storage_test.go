package storage

import (
	"context"
	"math/rand/v2"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	clock := time.Unix(1_700_000_000, 0)
	s, err := Open(context.Background(), Options{
		Path: filepath.Join(t.TempDir(), "library.db"),
		Now: func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func titles(ps []Playable) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Title
	}
	return out
}

func TestImportTagSmartPlaylistScenario(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	strobe, err := s.Import(ctx, Descriptor{
		Title:     "Strobe",
		Artist:    "Deadmau5",
		Album:     "For Lack of a Better Name",
		Genre:     "Progressive House",
		Duration:  637,
		SourceURL: "/music/deadmau5/strobe.flac",
		Tags:      []string{"house", "favorite"},
	})
	require.NoError(t, err)

	_, err = s.Import(ctx, Descriptor{
		Title:     "Ghosts 'n' Stuff",
		Artist:    "deadmau5",
		Album:     "For Lack of a Better Name",
		SourceURL: "/music/deadmau5/ghosts.flac",
		Tags:      []string{"House"},
	})
	require.NoError(t, err)

	artists, err := s.Artists(ctx)
	require.NoError(t, err)
	require.Len(t, artists, 1, "artist names match ignoring case")
	albums, err := s.Albums(ctx, nil)
	require.NoError(t, err)
	require.Len(t, albums, 1)

	pl, err := s.CreatePlaylist(ctx, "My House", Dynamic, nil)
	require.NoError(t, err)
	require.NoError(t, s.SetSmartTags(ctx, pl, []string{"house", "favorite"}))

	items, err := s.PlaylistItems(ctx, pl)
	require.NoError(t, err)
	assert.Equal(t, []string{"Strobe"}, titles(items))

	require.NoError(t, s.SetMatch(ctx, pl, MatchAny))
	items, err = s.PlaylistItems(ctx, pl)
	require.NoError(t, err)
	assert.Equal(t, []string{"Strobe", "Ghosts 'n' Stuff"}, titles(items))

	found, err := s.Search(ctx, "strobe", 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, strobe, found[0].ID)
	assert.Equal(t, "Deadmau5", found[0].ArtistName)

	require.NoError(t, s.DeletePlayable(ctx, strobe))

	items, err = s.PlaylistItems(ctx, pl)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ghosts 'n' Stuff"}, titles(items))

	found, err = s.Search(ctx, "strobe", 0)
	require.NoError(t, err)
	assert.Empty(t, found)

	drift, err := s.VerifySearchIndex(ctx)
	require.NoError(t, err)
	assert.Zero(t, drift.Total())
}

func TestImport_ReferentialIntegrity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Import(ctx, Descriptor{Title: "A", SourceURL: "/a.mp3"})
	require.NoError(t, err)

	_, err = s.Import(ctx, Descriptor{Title: "A again", Artist: "New Artist", SourceURL: "/a.mp3"})
	require.ErrorIs(t, err, ErrReferentialIntegrity)

	_, err = s.Import(ctx, Descriptor{Title: "No source"})
	require.ErrorIs(t, err, ErrReferentialIntegrity)

	_, err = s.Import(ctx, Descriptor{Title: "Bad", SourceURL: "/bad.mp3", Duration: -1})
	require.ErrorIs(t, err, ErrReferentialIntegrity)

	// Failed imports leave nothing behind, not even the artist.
	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Playables)
	assert.Equal(t, 0, st.Artists)
	assert.Equal(t, 1, st.SearchEntries)
}

func TestImportMany(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.Import(ctx, Descriptor{Title: "Existing", SourceURL: "/x.mp3"})
	require.NoError(t, err)

	res, err := s.ImportMany(ctx, []Descriptor{
		{Title: "One", SourceURL: "/1.mp3"},
		{Title: "Existing", SourceURL: "/x.mp3"},
		{Title: "Two", SourceURL: "/2.mp3", Tags: []string{"new"}},
		{Title: "One again", SourceURL: "/1.mp3"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Added)
	assert.Equal(t, 2, res.Skipped)
	require.Len(t, res.IDs, 4)
	assert.Equal(t, first, res.IDs[1])
	assert.Equal(t, res.IDs[0], res.IDs[3])

	// One bad descriptor rolls back the whole batch.
	_, err = s.ImportMany(ctx, []Descriptor{
		{Title: "Three", SourceURL: "/3.mp3"},
		{Title: "Broken", SourceURL: ""},
	})
	require.ErrorIs(t, err, ErrReferentialIntegrity)

	_, err = s.PlayableBySource(ctx, "/3.mp3")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRenameArtistReindexes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.Import(ctx, Descriptor{Title: "Windowlicker", Artist: "Aphex Twin", SourceURL: "/w.mp3"})
	require.NoError(t, err)
	p, err := s.Playable(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, p.ArtistID)

	require.NoError(t, s.RenameArtist(ctx, *p.ArtistID, "AFX"))

	found, err := s.Search(ctx, "afx", 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, id, found[0].ID)

	found, err = s.Search(ctx, "aphex", 0)
	require.NoError(t, err)
	assert.Empty(t, found)

	_, err = s.Import(ctx, Descriptor{Title: "Xtal", Artist: "Other", SourceURL: "/x.mp3"})
	require.NoError(t, err)
	require.ErrorIs(t, s.RenameArtist(ctx, *p.ArtistID, "other"), ErrReferentialIntegrity)
	require.ErrorIs(t, s.RenameArtist(ctx, 999, "Nobody"), ErrNotFound)
}

func TestRenameAlbumReindexes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.Import(ctx, Descriptor{Title: "Roygbiv", Album: "Music Has the Right", SourceURL: "/r.mp3"})
	require.NoError(t, err)
	p, err := s.Playable(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, p.AlbumID)

	require.NoError(t, s.RenameAlbum(ctx, *p.AlbumID, "Geogaddi"))

	found, err := s.Search(ctx, "geogaddi", 0)
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestUpdatePlayable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.Import(ctx, Descriptor{Title: "Untitled", SourceURL: "/u.mp3"})
	require.NoError(t, err)

	require.NoError(t, s.UpdatePlayable(ctx, id, Descriptor{
		Title:     "Avril 14th",
		Artist:    "Aphex Twin",
		SourceURL: "/u.mp3",
		Duration:  125,
	}))

	p, err := s.Playable(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Avril 14th", p.Title)
	assert.Equal(t, "Aphex Twin", p.ArtistName)
	assert.EqualValues(t, 125, p.Duration)

	found, err := s.Search(ctx, "avril", 0)
	require.NoError(t, err)
	assert.Len(t, found, 1)

	found, err = s.Search(ctx, "untitled", 0)
	require.NoError(t, err)
	assert.Empty(t, found, "the old title must leave the index")

	found, err = s.Search(ctx, "un", 0)
	require.NoError(t, err)
	assert.Empty(t, found)

	require.ErrorIs(t, s.UpdatePlayable(ctx, 999, Descriptor{Title: "x", SourceURL: "/n.mp3"}), ErrNotFound)
}

func TestDeletePlayables_AllOrNothing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, err := s.Import(ctx, Descriptor{Title: "A", SourceURL: "/a.mp3"})
	require.NoError(t, err)
	b, err := s.Import(ctx, Descriptor{Title: "B", SourceURL: "/b.mp3"})
	require.NoError(t, err)

	require.ErrorIs(t, s.DeletePlayables(ctx, []int64{a, 999}), ErrNotFound)
	_, err = s.Playable(ctx, a)
	require.NoError(t, err, "rolled back delete must keep the playable")

	require.NoError(t, s.DeletePlayables(ctx, []int64{a, b}))
	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, st.Playables)
	assert.Zero(t, st.SearchEntries)
}

func TestDeletePlayable_ClosesPlaylistGaps(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	res, err := s.ImportMany(ctx, []Descriptor{
		{Title: "One", SourceURL: "/1.mp3"},
		{Title: "Two", SourceURL: "/2.mp3"},
		{Title: "Three", SourceURL: "/3.mp3"},
	})
	require.NoError(t, err)

	pl, err := s.CreatePlaylist(ctx, "Mix", Static, nil)
	require.NoError(t, err)
	_, err = s.AddManyToPlaylist(ctx, pl, res.IDs)
	require.NoError(t, err)

	require.NoError(t, s.DeletePlayable(ctx, res.IDs[0]))

	// Appending after the delete only works if positions were closed up.
	id, err := s.Import(ctx, Descriptor{Title: "Four", SourceURL: "/4.mp3"})
	require.NoError(t, err)
	pos, err := s.AddToPlaylist(ctx, pl, id, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, pos)

	items, err := s.PlaylistItems(ctx, pl)
	require.NoError(t, err)
	assert.Equal(t, []string{"Two", "Three", "Four"}, titles(items))
}

func TestAddToPlaylistNew(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	pl, err := s.CreatePlaylist(ctx, "Queue", Static, nil)
	require.NoError(t, err)
	folder, err := s.CreatePlaylist(ctx, "Folder", Folder, nil)
	require.NoError(t, err)

	id, err := s.AddToPlaylistNew(ctx, pl, Descriptor{Title: "Stream", SourceURL: "https://radio.example/live"})
	require.NoError(t, err)

	existing, err := s.Import(ctx, Descriptor{Title: "Local", SourceURL: "/local.mp3"})
	require.NoError(t, err)
	got, err := s.AddToPlaylistNew(ctx, pl, Descriptor{Title: "ignored", SourceURL: "/local.mp3"})
	require.NoError(t, err)
	assert.Equal(t, existing, got)

	items, err := s.PlaylistItems(ctx, pl)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, id, items[0].ID)
	assert.Equal(t, "Local", items[1].Title)

	_, err = s.AddToPlaylistNew(ctx, folder, Descriptor{Title: "Nope", SourceURL: "/nope.mp3"})
	require.ErrorIs(t, err, ErrKindMismatch)
	_, err = s.PlayableBySource(ctx, "/nope.mp3")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLikes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, err := s.Import(ctx, Descriptor{Title: "A", SourceURL: "/a.mp3"})
	require.NoError(t, err)
	b, err := s.Import(ctx, Descriptor{Title: "B", SourceURL: "/b.mp3"})
	require.NoError(t, err)

	require.NoError(t, s.Like(ctx, a))
	liked, err := s.ToggleLike(ctx, b)
	require.NoError(t, err)
	assert.True(t, liked)

	list, err := s.Liked(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, titles(list))

	set, err := s.LikedSet(ctx, []int64{a, b, 999})
	require.NoError(t, err)
	assert.Equal(t, map[int64]bool{a: true, b: true}, set)

	require.NoError(t, s.Unlike(ctx, a))
	ok, err := s.IsLiked(ctx, a)
	require.NoError(t, err)
	assert.False(t, ok)

	require.ErrorIs(t, s.Like(ctx, 999), ErrReferentialIntegrity)
}

func TestTagging(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.Import(ctx, Descriptor{Title: "A", SourceURL: "/a.mp3"})
	require.NoError(t, err)

	tagID, err := s.TagPlayable(ctx, id, "chill")
	require.NoError(t, err)
	again, err := s.TagPlayable(ctx, id, "Chill")
	require.NoError(t, err)
	assert.Equal(t, tagID, again)

	tagged, err := s.Tagged(ctx, "CHILL")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, titles(tagged))

	list, err := s.Tags(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].PlayableCount)

	require.NoError(t, s.UntagPlayable(ctx, id, "chill"))
	require.ErrorIs(t, s.UntagPlayable(ctx, id, "unknown"), ErrNotFound)

	_, err = s.TagPlayable(ctx, 999, "chill")
	require.ErrorIs(t, err, ErrReferentialIntegrity)

	require.NoError(t, s.RenameTag(ctx, tagID, "ambient"))
	require.NoError(t, s.DeleteTag(ctx, tagID))
	require.ErrorIs(t, s.DeleteTag(ctx, tagID), ErrNotFound)
}

func TestPlaylistTree(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	folder, err := s.CreatePlaylist(ctx, "Electronic", Folder, nil)
	require.NoError(t, err)
	inner, err := s.CreatePlaylist(ctx, "Techno", Static, &folder)
	require.NoError(t, err)
	other, err := s.CreatePlaylist(ctx, "Jazz", Static, nil)
	require.NoError(t, err)

	require.ErrorIs(t, s.DeletePlaylist(ctx, folder, DeleteRefuse), ErrReferentialIntegrity)
	require.NoError(t, s.DeletePlaylist(ctx, folder, DeleteReparent))

	list, err := s.Playlists(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, other, list[0].ID)
	assert.Equal(t, inner, list[1].ID)

	require.NoError(t, s.SetPlaylistPosition(ctx, inner, 0))
	list, err = s.Playlists(ctx)
	require.NoError(t, err)
	assert.Equal(t, inner, list[0].ID)

	_, err = s.PlaylistItems(ctx, 999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStaticPlaylistEditing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	res, err := s.ImportMany(ctx, []Descriptor{
		{Title: "One", SourceURL: "/1.mp3"},
		{Title: "Two", SourceURL: "/2.mp3"},
		{Title: "Three", SourceURL: "/3.mp3"},
		{Title: "Four", SourceURL: "/4.mp3"},
	})
	require.NoError(t, err)
	ids := res.IDs

	pl, err := s.CreatePlaylist(ctx, "Mix", Static, nil)
	require.NoError(t, err)
	added, err := s.AddManyToPlaylist(ctx, pl, ids)
	require.NoError(t, err)
	assert.Equal(t, 4, added)

	require.NoError(t, s.ReorderPlaylist(ctx, pl, ids[3], 0))
	items, err := s.PlaylistItems(ctx, pl)
	require.NoError(t, err)
	assert.Equal(t, []string{"Four", "One", "Two", "Three"}, titles(items))

	newPos, err := s.MovePlaylistItems(ctx, pl, []int{0, 1}, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, newPos)
	items, err = s.PlaylistItems(ctx, pl)
	require.NoError(t, err)
	assert.Equal(t, []string{"Two", "Three", "Four", "One"}, titles(items))

	require.ErrorIs(t, s.ReorderPlaylist(ctx, pl, ids[0], 4), ErrOrderingConflict)

	require.NoError(t, s.RemoveFromPlaylist(ctx, pl, ids[2]))
	require.NoError(t, s.ClearPlaylist(ctx, pl))
	items, err = s.PlaylistItems(ctx, pl)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestPruneOrphans(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.Import(ctx, Descriptor{
		Title: "A", Artist: "Gone", Album: "Gone Album", Genre: "Gone Genre",
		SourceURL: "/a.mp3", Tags: []string{"gone"},
	})
	require.NoError(t, err)
	require.NoError(t, s.DeletePlayable(ctx, id))

	res, err := s.PruneOrphans(ctx)
	require.NoError(t, err)
	assert.Equal(t, PruneResult{Artists: 1, Albums: 1, Genres: 1, Tags: 1}, res)
	assert.EqualValues(t, 4, res.Total())
}

func TestRebuildSearchIndex(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.ImportMany(ctx, []Descriptor{
		{Title: "One", SourceURL: "/1.mp3"},
		{Title: "Two", SourceURL: "/2.mp3"},
	})
	require.NoError(t, err)

	_, err = s.db.ExecContext(ctx, `DELETE FROM playable_search`)
	require.NoError(t, err)

	drift, err := s.VerifySearchIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, drift.Missing)

	n, err := s.RebuildSearchIndex(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	drift, err = s.VerifySearchIndex(ctx)
	require.NoError(t, err)
	assert.Zero(t, drift.Total())
}

func TestCancelledWriteRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Import(ctx, Descriptor{Title: "A", SourceURL: "/a.mp3"})
	require.Error(t, err)

	st, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, st.Playables)
}

func TestKindOf(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Playable(context.Background(), 42)
	assert.Equal(t, ErrNotFound, KindOf(err))
	assert.Nil(t, KindOf(nil))
}

func TestCatalogReads(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.Import(ctx, Descriptor{
		Title: "Xtal", Artist: "Aphex Twin", Album: "Selected Ambient Works",
		SourceURL: "/xtal.flac", Tags: []string{"ambient"},
	})
	require.NoError(t, err)
	p, err := s.Playable(ctx, id)
	require.NoError(t, err)

	ar, err := s.Artist(ctx, *p.ArtistID)
	require.NoError(t, err)
	assert.Equal(t, "Aphex Twin", ar.Name)
	assert.Equal(t, 1, ar.PlayableCount)

	al, err := s.Album(ctx, *p.AlbumID)
	require.NoError(t, err)
	assert.Equal(t, "Selected Ambient Works", al.Name)
	assert.Equal(t, "Aphex Twin", al.ArtistName)

	tags, err := s.TagsFor(ctx, id)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	tag, err := s.Tag(ctx, tags[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "ambient", tag.Name)
	assert.Equal(t, 1, tag.PlayableCount)

	_, err = s.Artist(ctx, 999)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.Album(ctx, 999)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.Tag(ctx, 999)
	require.ErrorIs(t, err, ErrNotFound)

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.SchemaVersion)
}

func TestBatchWrites_AllOrNothing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	res, err := s.ImportMany(ctx, []Descriptor{
		{Title: "One", SourceURL: "/1.mp3"},
		{Title: "Two", SourceURL: "/2.mp3"},
		{Title: "Three", SourceURL: "/3.mp3"},
	})
	require.NoError(t, err)
	ids := res.IDs

	t.Run("likes", func(t *testing.T) {
		require.ErrorIs(t, s.LikeMany(ctx, []int64{ids[0], 999}), ErrReferentialIntegrity)
		liked, err := s.Liked(ctx)
		require.NoError(t, err)
		assert.Empty(t, liked)

		require.NoError(t, s.LikeMany(ctx, ids[:2]))
		require.NoError(t, s.UnlikeMany(ctx, ids[:1]))
		liked, err = s.Liked(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Two"}, titles(liked))
	})

	t.Run("tags", func(t *testing.T) {
		require.NoError(t, s.TagPlayableMany(ctx, ids[0], []string{"house", "night"}))
		require.ErrorIs(t, s.UntagPlayableMany(ctx, ids[0], []string{"house", "missing"}), ErrNotFound)
		tags, err := s.TagsFor(ctx, ids[0])
		require.NoError(t, err)
		assert.Len(t, tags, 2)

		require.ErrorIs(t, s.TagPlayableMany(ctx, 999, []string{"orphan"}), ErrReferentialIntegrity)
		all, err := s.Tags(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2, "a failed batch must not leave new tags behind")
	})

	t.Run("playlist items", func(t *testing.T) {
		pl, err := s.CreatePlaylist(ctx, "Mix", Static, nil)
		require.NoError(t, err)
		_, err = s.AddManyToPlaylist(ctx, pl, ids[:1])
		require.NoError(t, err)

		require.NoError(t, s.InsertIntoPlaylist(ctx, pl, ids[1:], 0))
		items, err := s.PlaylistItems(ctx, pl)
		require.NoError(t, err)
		assert.Equal(t, []string{"Two", "Three", "One"}, titles(items))

		require.ErrorIs(t, s.RemoveManyFromPlaylist(ctx, pl, []int64{ids[0], 999}), ErrNotFound)
		items, err = s.PlaylistItems(ctx, pl)
		require.NoError(t, err)
		assert.Len(t, items, 3)

		require.NoError(t, s.RemoveManyFromPlaylist(ctx, pl, []int64{ids[1], ids[0]}))
		items, err = s.PlaylistItems(ctx, pl)
		require.NoError(t, err)
		assert.Equal(t, []string{"Three"}, titles(items))
	})

	t.Run("smart definition", func(t *testing.T) {
		static, err := s.CreatePlaylist(ctx, "Plain", Static, nil)
		require.NoError(t, err)
		require.ErrorIs(t, s.DefineSmartPlaylist(ctx, static, []string{"brand-new"}, MatchAny), ErrKindMismatch)
		_, err = s.Tagged(ctx, "brand-new")
		require.ErrorIs(t, err, ErrNotFound)

		smart, err := s.CreatePlaylist(ctx, "Club", Dynamic, nil)
		require.NoError(t, err)
		require.NoError(t, s.DefineSmartPlaylist(ctx, smart, []string{"house", "night"}, MatchAny))
		pl, err := s.Playlist(ctx, smart)
		require.NoError(t, err)
		assert.Equal(t, MatchAny, pl.Match)
		items, err := s.PlaylistItems(ctx, smart)
		require.NoError(t, err)
		assert.Equal(t, []string{"One"}, titles(items))
	})
}

func TestVerifyPlaylistOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	res, err := s.ImportMany(ctx, []Descriptor{
		{Title: "One", SourceURL: "/1.mp3"},
		{Title: "Two", SourceURL: "/2.mp3"},
		{Title: "Three", SourceURL: "/3.mp3"},
	})
	require.NoError(t, err)

	good, err := s.CreatePlaylist(ctx, "Good", Static, nil)
	require.NoError(t, err)
	bad, err := s.CreatePlaylist(ctx, "Bad", Static, nil)
	require.NoError(t, err)
	for _, pl := range []int64{good, bad} {
		_, err = s.AddManyToPlaylist(ctx, pl, res.IDs)
		require.NoError(t, err)
	}

	broken, err := s.VerifyPlaylistOrder(ctx)
	require.NoError(t, err)
	assert.Empty(t, broken)

	_, err = s.db.ExecContext(ctx, `
		UPDATE playlist_playables SET position = 7 WHERE playlist_id = ? AND position = 1
	`, bad)
	require.NoError(t, err)

	broken, err = s.VerifyPlaylistOrder(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{bad}, broken)
}

// TestPlaylistPositions_RandomEdits runs a seeded mix of item edits against
// an in-memory model and checks after every step that the stored order
// matches and positions stay exactly 0..n-1.
func TestPlaylistPositions_RandomEdits(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	descs := make([]Descriptor, 24)
	for i := range descs {
		descs[i] = Descriptor{Title: "Track", SourceURL: "/track/" + string(rune('a'+i)) + ".mp3"}
	}
	res, err := s.ImportMany(ctx, descs)
	require.NoError(t, err)
	pool := res.IDs

	pl, err := s.CreatePlaylist(ctx, "Shuffle", Static, nil)
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(20240917, 1))
	var model []int64

	for step := range 300 {
		switch op := rng.IntN(4); {
		case op == 0 || len(model) == 0:
			var free []int64
			for _, id := range pool {
				if !slices.Contains(model, id) {
					free = append(free, id)
				}
			}
			if len(free) == 0 {
				continue
			}
			id := free[rng.IntN(len(free))]
			pos := rng.IntN(len(model) + 1)
			got, err := s.AddToPlaylist(ctx, pl, id, &pos)
			require.NoError(t, err, "step %d: add %d at %d", step, id, pos)
			require.Equal(t, pos, got)
			model = slices.Insert(model, pos, id)

			// Out of range inserts change nothing.
			bad := len(model) + 1
			_, err = s.AddToPlaylist(ctx, pl, free[0], &bad)
			require.ErrorIs(t, err, ErrOrderingConflict)

		case op == 1:
			from := rng.IntN(len(model))
			to := rng.IntN(len(model))
			id := model[from]
			require.NoError(t, s.ReorderPlaylist(ctx, pl, id, to), "step %d: reorder %d to %d", step, id, to)
			model = slices.Insert(slices.Delete(model, from, from+1), to, id)

		case op == 2:
			i := rng.IntN(len(model))
			require.NoError(t, s.RemoveFromPlaylist(ctx, pl, model[i]), "step %d: remove", step)
			model = slices.Delete(model, i, i+1)

		default:
			positions := rng.Perm(len(model))[:1+rng.IntN(min(3, len(model)))]
			delta := rng.IntN(7) - 3
			moved, err := s.MovePlaylistItems(ctx, pl, positions, delta)
			if err != nil {
				require.ErrorIs(t, err, ErrOrderingConflict, "step %d: move %v by %d", step, positions, delta)
				break
			}
			model = applyMove(model, positions, moved)
		}

		items, err := s.PlaylistItems(ctx, pl)
		require.NoError(t, err)
		got := make([]int64, len(items))
		for i, p := range items {
			got[i] = p.ID
		}
		require.Equal(t, model, got, "step %d", step)

		broken, err := s.VerifyPlaylistOrder(ctx)
		require.NoError(t, err)
		require.Empty(t, broken, "step %d", step)
	}
}

// applyMove places the items at from on their new positions and lets the
// other items fill the remaining slots in their previous order.
func applyMove(items []int64, from, to []int) []int64 {
	out := make([]int64, len(items))
	taken := make([]bool, len(items))
	moved := make(map[int]bool, len(from))
	for i, f := range from {
		out[to[i]] = items[f]
		taken[to[i]] = true
		moved[f] = true
	}
	slot := 0
	for i, id := range items {
		if moved[i] {
			continue
		}
		for taken[slot] {
			slot++
		}
		out[slot] = id
		slot++
	}
	return out
}
