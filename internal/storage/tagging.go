package storage

import (
	"context"

	"github.com/sirupsen/logrus"
)

// TagPlayable tags a playable with the tag called name, creating the tag if
// needed. Tagging twice is a no-op. It returns the tag id.
func (s *Store) TagPlayable(ctx context.Context, playableID int64, name string) (int64, error) {
	var tagID int64
	err := s.write(ctx, "tag_playable", logrus.Fields{"id": playableID, "tag": name}, func(c *components) error {
		var err error
		if tagID, err = c.tags.Upsert(ctx, name); err != nil {
			return err
		}
		return c.tags.AddTag(ctx, playableID, tagID)
	})
	return tagID, err
}

// UntagPlayable removes the tag called name from a playable. An unknown tag
// is not found; a playable without the tag is a no-op.
func (s *Store) UntagPlayable(ctx context.Context, playableID int64, name string) error {
	return s.write(ctx, "untag_playable", logrus.Fields{"id": playableID, "tag": name}, func(c *components) error {
		tagID, err := c.tags.Lookup(ctx, name)
		if err != nil {
			return err
		}
		return c.tags.RemoveTag(ctx, playableID, tagID)
	})
}

// TagPlayableMany applies every tag of names to a playable in one unit of
// work, creating the tags as needed.
func (s *Store) TagPlayableMany(ctx context.Context, playableID int64, names []string) error {
	return s.write(ctx, "tag_playable_many", logrus.Fields{"id": playableID, "tags": names}, func(c *components) error {
		for _, name := range names {
			tagID, err := c.tags.Upsert(ctx, name)
			if err != nil {
				return err
			}
			if err := c.tags.AddTag(ctx, playableID, tagID); err != nil {
				return err
			}
		}
		return nil
	})
}

// UntagPlayableMany removes every tag of names from a playable in one unit
// of work. One unknown tag fails the whole unit.
func (s *Store) UntagPlayableMany(ctx context.Context, playableID int64, names []string) error {
	return s.write(ctx, "untag_playable_many", logrus.Fields{"id": playableID, "tags": names}, func(c *components) error {
		for _, name := range names {
			tagID, err := c.tags.Lookup(ctx, name)
			if err != nil {
				return err
			}
			if err := c.tags.RemoveTag(ctx, playableID, tagID); err != nil {
				return err
			}
		}
		return nil
	})
}

// TagsFor returns the tags of a playable by name.
func (s *Store) TagsFor(ctx context.Context, playableID int64) ([]Tag, error) {
	var out []Tag
	err := s.read(ctx, func(c *components) error {
		var err error
		out, err = c.tags.TagsFor(ctx, playableID)
		return err
	})
	return out, err
}

// Tags lists every tag with its usage count.
func (s *Store) Tags(ctx context.Context) ([]Tag, error) {
	var out []Tag
	err := s.read(ctx, func(c *components) error {
		var err error
		out, err = c.tags.List(ctx)
		return err
	})
	return out, err
}

// Tag returns a tag with its usage count.
func (s *Store) Tag(ctx context.Context, id int64) (*Tag, error) {
	var t *Tag
	err := s.read(ctx, func(c *components) error {
		var err error
		t, err = c.tags.Get(ctx, id)
		return err
	})
	return t, err
}

// Tagged returns the playables carrying the tag called name, by id.
func (s *Store) Tagged(ctx context.Context, name string) ([]Playable, error) {
	var out []Playable
	err := s.read(ctx, func(c *components) error {
		tagID, err := c.tags.Lookup(ctx, name)
		if err != nil {
			return err
		}
		ids, err := c.tags.Tagged(ctx, tagID)
		if err != nil {
			return err
		}
		out, err = c.lib.PlayablesByIDs(ctx, ids)
		return err
	})
	return out, err
}

// RenameTag renames a tag.
func (s *Store) RenameTag(ctx context.Context, id int64, name string) error {
	return s.write(ctx, "rename_tag", logrus.Fields{"id": id}, func(c *components) error {
		return c.tags.Rename(ctx, id, name)
	})
}

// DeleteTag deletes a tag. Dynamic playlists using it lose it.
func (s *Store) DeleteTag(ctx context.Context, id int64) error {
	return s.write(ctx, "delete_tag", logrus.Fields{"id": id}, func(c *components) error {
		return c.tags.Delete(ctx, id)
	})
}

// Like marks a playable as liked.
func (s *Store) Like(ctx context.Context, playableID int64) error {
	return s.write(ctx, "like", logrus.Fields{"id": playableID}, func(c *components) error {
		return c.likes.Like(ctx, playableID)
	})
}

// Unlike clears the like of a playable.
func (s *Store) Unlike(ctx context.Context, playableID int64) error {
	return s.write(ctx, "unlike", logrus.Fields{"id": playableID}, func(c *components) error {
		return c.likes.Unlike(ctx, playableID)
	})
}

// LikeMany likes every playable of ids in one unit of work. One unknown id
// fails the whole unit.
func (s *Store) LikeMany(ctx context.Context, ids []int64) error {
	return s.write(ctx, "like_many", logrus.Fields{"count": len(ids)}, func(c *components) error {
		for _, id := range ids {
			if err := c.likes.Like(ctx, id); err != nil {
				return err
			}
		}
		return nil
	})
}

// UnlikeMany clears the like of every playable of ids in one unit of work.
func (s *Store) UnlikeMany(ctx context.Context, ids []int64) error {
	return s.write(ctx, "unlike_many", logrus.Fields{"count": len(ids)}, func(c *components) error {
		for _, id := range ids {
			if err := c.likes.Unlike(ctx, id); err != nil {
				return err
			}
		}
		return nil
	})
}

// ToggleLike flips the like of a playable and returns the new state.
func (s *Store) ToggleLike(ctx context.Context, playableID int64) (bool, error) {
	var liked bool
	err := s.write(ctx, "toggle_like", logrus.Fields{"id": playableID}, func(c *components) error {
		var err error
		liked, err = c.likes.Toggle(ctx, playableID)
		return err
	})
	return liked, err
}

// IsLiked reports whether a playable is liked.
func (s *Store) IsLiked(ctx context.Context, playableID int64) (bool, error) {
	var liked bool
	err := s.read(ctx, func(c *components) error {
		var err error
		liked, err = c.likes.IsLiked(ctx, playableID)
		return err
	})
	return liked, err
}

// Liked returns the liked playables, most recently liked first.
func (s *Store) Liked(ctx context.Context) ([]Playable, error) {
	var out []Playable
	err := s.read(ctx, func(c *components) error {
		ids, err := c.likes.Liked(ctx)
		if err != nil {
			return err
		}
		out, err = c.lib.PlayablesByIDs(ctx, ids)
		return err
	})
	return out, err
}

// LikedSet returns which of ids are liked.
func (s *Store) LikedSet(ctx context.Context, ids []int64) (map[int64]bool, error) {
	var out map[int64]bool
	err := s.read(ctx, func(c *components) error {
		var err error
		out, err = c.likes.LikedSet(ctx, ids)
		return err
	})
	return out, err
}
