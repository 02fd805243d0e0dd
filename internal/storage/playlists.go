package storage

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
)

// CreatePlaylist creates a playlist or folder under parentID (nil for the
// root).
func (s *Store) CreatePlaylist(ctx context.Context, name string, kind PlaylistKind, parentID *int64) (int64, error) {
	var id int64
	err := s.write(ctx, "create_playlist", logrus.Fields{"name": name, "kind": kind}, func(c *components) error {
		var err error
		id, err = c.pls.Create(ctx, name, kind, parentID)
		return err
	})
	return id, err
}

// RenamePlaylist renames a playlist or folder.
func (s *Store) RenamePlaylist(ctx context.Context, id int64, name string) error {
	return s.write(ctx, "rename_playlist", logrus.Fields{"id": id}, func(c *components) error {
		return c.pls.Rename(ctx, id, name)
	})
}

// MovePlaylist moves a playlist under parentID, after its new siblings.
func (s *Store) MovePlaylist(ctx context.Context, id int64, parentID *int64) error {
	return s.write(ctx, "move_playlist", logrus.Fields{"id": id}, func(c *components) error {
		return c.pls.Move(ctx, id, parentID)
	})
}

// SetPlaylistPosition moves a playlist among its siblings.
func (s *Store) SetPlaylistPosition(ctx context.Context, id int64, position int) error {
	return s.write(ctx, "set_playlist_position", logrus.Fields{"id": id, "position": position}, func(c *components) error {
		return c.pls.SetPosition(ctx, id, position)
	})
}

// DeletePlaylist deletes a playlist. policy applies to folders with children.
func (s *Store) DeletePlaylist(ctx context.Context, id int64, policy DeletePolicy) error {
	return s.write(ctx, "delete_playlist", logrus.Fields{"id": id, "policy": policy}, func(c *components) error {
		return c.pls.Delete(ctx, id, policy)
	})
}

// Playlist returns a playlist by id.
func (s *Store) Playlist(ctx context.Context, id int64) (*Playlist, error) {
	var pl *Playlist
	err := s.read(ctx, func(c *components) error {
		var err error
		pl, err = c.pls.Get(ctx, id)
		return err
	})
	return pl, err
}

// Playlists returns the playlist tree in display order.
func (s *Store) Playlists(ctx context.Context) ([]Playlist, error) {
	var out []Playlist
	err := s.read(ctx, func(c *components) error {
		var err error
		out, err = c.pls.List(ctx)
		return err
	})
	return out, err
}

// PlaylistItems resolves a playlist: a static playlist in its stored order,
// a dynamic one by playable id.
func (s *Store) PlaylistItems(ctx context.Context, id int64) ([]Playable, error) {
	var out []Playable
	err := s.read(ctx, func(c *components) error {
		ids, err := c.pls.Resolve(ctx, id)
		if err != nil {
			return err
		}
		out, err = c.lib.PlayablesByIDs(ctx, ids)
		return err
	})
	return out, err
}

// AddToPlaylist adds a playable to a static playlist at position, or at the
// end when position is nil. It returns the position used.
func (s *Store) AddToPlaylist(ctx context.Context, playlistID, playableID int64, position *int) (int, error) {
	var pos int
	err := s.write(ctx, "add_to_playlist", logrus.Fields{"playlist": playlistID, "id": playableID}, func(c *components) error {
		var err error
		pos, err = c.pls.Add(ctx, playlistID, playableID, position)
		return err
	})
	return pos, err
}

// InsertIntoPlaylist inserts playables into a static playlist starting at
// position, keeping their order, in one unit of work.
func (s *Store) InsertIntoPlaylist(ctx context.Context, playlistID int64, playableIDs []int64, position int) error {
	return s.write(ctx, "insert_into_playlist", logrus.Fields{"playlist": playlistID, "count": len(playableIDs), "position": position}, func(c *components) error {
		for i, id := range playableIDs {
			pos := position + i
			if _, err := c.pls.Add(ctx, playlistID, id, &pos); err != nil {
				return err
			}
		}
		return nil
	})
}

// AddManyToPlaylist appends playables to a static playlist, skipping those
// already in it. It returns how many were added.
func (s *Store) AddManyToPlaylist(ctx context.Context, playlistID int64, playableIDs []int64) (int, error) {
	var added int
	err := s.write(ctx, "add_many_to_playlist", logrus.Fields{"playlist": playlistID, "count": len(playableIDs)}, func(c *components) error {
		var err error
		added, err = c.pls.AddMany(ctx, playlistID, playableIDs)
		return err
	})
	return added, err
}

// AddToPlaylistNew appends the playable described by d to a static
// playlist, importing it first unless its source is already in the catalog.
// It returns the playable id.
func (s *Store) AddToPlaylistNew(ctx context.Context, playlistID int64, d Descriptor) (int64, error) {
	var id int64
	err := s.write(ctx, "add_to_playlist_new", logrus.Fields{"playlist": playlistID, "source": d.SourceURL}, func(c *components) error {
		// Check the kind first so a folder target does not import anything.
		if _, err := c.pls.ItemCount(ctx, playlistID); err != nil {
			return err
		}

		var err error
		id, err = c.lib.PlayableIDBySource(ctx, strings.TrimSpace(d.SourceURL))
		if isNotFound(err) {
			id, err = c.importOne(ctx, d)
		}
		if err != nil {
			return err
		}
		_, err = c.pls.Add(ctx, playlistID, id, nil)
		return err
	})
	return id, err
}

// RemoveFromPlaylist removes a playable from a static playlist.
func (s *Store) RemoveFromPlaylist(ctx context.Context, playlistID, playableID int64) error {
	return s.write(ctx, "remove_from_playlist", logrus.Fields{"playlist": playlistID, "id": playableID}, func(c *components) error {
		return c.pls.Remove(ctx, playlistID, playableID)
	})
}

// RemoveManyFromPlaylist removes several playables from a static playlist
// in one unit of work. A playable not in the playlist fails the whole unit.
func (s *Store) RemoveManyFromPlaylist(ctx context.Context, playlistID int64, playableIDs []int64) error {
	return s.write(ctx, "remove_many_from_playlist", logrus.Fields{"playlist": playlistID, "count": len(playableIDs)}, func(c *components) error {
		for _, id := range playableIDs {
			if err := c.pls.Remove(ctx, playlistID, id); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReorderPlaylist moves a playable of a static playlist to position.
func (s *Store) ReorderPlaylist(ctx context.Context, playlistID, playableID int64, position int) error {
	return s.write(ctx, "reorder_playlist", logrus.Fields{"playlist": playlistID, "id": playableID, "position": position}, func(c *components) error {
		return c.pls.Reorder(ctx, playlistID, playableID, position)
	})
}

// MovePlaylistItems moves the items at positions by delta and returns their
// new positions.
func (s *Store) MovePlaylistItems(ctx context.Context, playlistID int64, positions []int, delta int) ([]int, error) {
	var out []int
	err := s.write(ctx, "move_playlist_items", logrus.Fields{"playlist": playlistID, "delta": delta}, func(c *components) error {
		var err error
		out, err = c.pls.MoveItems(ctx, playlistID, positions, delta)
		return err
	})
	return out, err
}

// ClearPlaylist empties a static playlist.
func (s *Store) ClearPlaylist(ctx context.Context, playlistID int64) error {
	return s.write(ctx, "clear_playlist", logrus.Fields{"playlist": playlistID}, func(c *components) error {
		return c.pls.Clear(ctx, playlistID)
	})
}

// SetSmartTags defines a dynamic playlist by tag names, creating missing
// tags. It replaces the previous definition.
func (s *Store) SetSmartTags(ctx context.Context, playlistID int64, names []string) error {
	return s.write(ctx, "set_smart_tags", logrus.Fields{"playlist": playlistID, "tags": names}, func(c *components) error {
		return c.setSmartTags(ctx, playlistID, names)
	})
}

// DefineSmartPlaylist replaces the tags of a dynamic playlist and sets how
// they combine, in one unit of work.
func (s *Store) DefineSmartPlaylist(ctx context.Context, playlistID int64, names []string, mode MatchMode) error {
	return s.write(ctx, "define_smart_playlist", logrus.Fields{"playlist": playlistID, "tags": names, "match": mode}, func(c *components) error {
		if err := c.setSmartTags(ctx, playlistID, names); err != nil {
			return err
		}
		return c.pls.SetMatch(ctx, playlistID, mode)
	})
}

func (c *components) setSmartTags(ctx context.Context, playlistID int64, names []string) error {
	ids := make([]int64, 0, len(names))
	for _, name := range names {
		id, err := c.tags.Upsert(ctx, name)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}
	return c.pls.SetSmartTags(ctx, playlistID, ids)
}

// SetMatch sets how a dynamic playlist combines its tags.
func (s *Store) SetMatch(ctx context.Context, playlistID int64, mode MatchMode) error {
	return s.write(ctx, "set_match", logrus.Fields{"playlist": playlistID, "match": mode}, func(c *components) error {
		return c.pls.SetMatch(ctx, playlistID, mode)
	})
}

// SmartTags returns the tags defining a dynamic playlist.
func (s *Store) SmartTags(ctx context.Context, playlistID int64) ([]Tag, error) {
	var out []Tag
	err := s.read(ctx, func(c *components) error {
		var err error
		out, err = c.pls.SmartTags(ctx, playlistID)
		return err
	})
	return out, err
}
