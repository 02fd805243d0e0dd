package storage

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/wavestore/internal/library"
)

// Import adds a playable, creating its artist, album, genre and tags on
// first reference, and indexes it. A source already in the catalog is a
// referential integrity error.
func (s *Store) Import(ctx context.Context, d Descriptor) (int64, error) {
	var id int64
	err := s.write(ctx, "import", logrus.Fields{"source": d.SourceURL}, func(c *components) error {
		var err error
		id, err = c.importOne(ctx, d)
		return err
	})
	return id, err
}

// sourceLookupBatch keeps source lookups under SQLite's bound parameter limit.
const sourceLookupBatch = 500

// ImportMany imports ds in one unit of work. Sources already in the catalog,
// including duplicates within ds, are skipped and keep their id.
func (s *Store) ImportMany(ctx context.Context, ds []Descriptor) (ImportResult, error) {
	var res ImportResult
	err := s.write(ctx, "import_many", logrus.Fields{"count": len(ds)}, func(c *components) error {
		res = ImportResult{IDs: make([]int64, 0, len(ds))}

		urls := make([]string, len(ds))
		for i, d := range ds {
			urls[i] = strings.TrimSpace(d.SourceURL)
		}
		known := make(map[string]int64, len(ds))
		for chunk := range slices.Chunk(urls, sourceLookupBatch) {
			existing, err := c.lib.PlayablesBySource(ctx, chunk)
			if err != nil {
				return err
			}
			for _, p := range existing {
				known[p.SourceURL] = p.ID
			}
		}

		for i, d := range ds {
			if id, ok := known[urls[i]]; ok {
				res.Skipped++
				res.IDs = append(res.IDs, id)
				continue
			}
			id, err := c.importOne(ctx, d)
			if err != nil {
				return err
			}
			known[urls[i]] = id
			res.Added++
			res.IDs = append(res.IDs, id)
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}
	return res, nil
}

// UpdatePlayable replaces the attributes of a playable from d and reindexes
// it. Tags are left as they are.
func (s *Store) UpdatePlayable(ctx context.Context, id int64, d Descriptor) error {
	return s.write(ctx, "update_playable", logrus.Fields{"id": id}, func(c *components) error {
		f, err := c.fields(ctx, d)
		if err != nil {
			return err
		}
		if err := c.lib.UpdatePlayable(ctx, id, f); err != nil {
			return err
		}
		return c.idx.Reindex(ctx, id)
	})
}

// DeletePlayable removes a playable from every static playlist, then deletes
// it with its likes, tag links and index entry.
func (s *Store) DeletePlayable(ctx context.Context, id int64) error {
	return s.write(ctx, "delete_playable", logrus.Fields{"id": id}, func(c *components) error {
		return c.deletePlayable(ctx, id)
	})
}

// DeletePlayables deletes several playables in one unit of work. One unknown
// id fails the whole unit.
func (s *Store) DeletePlayables(ctx context.Context, ids []int64) error {
	return s.write(ctx, "delete_playables", logrus.Fields{"count": len(ids)}, func(c *components) error {
		for _, id := range ids {
			if err := c.deletePlayable(ctx, id); err != nil {
				return err
			}
		}
		return nil
	})
}

// RenameArtist renames an artist and reindexes its playables.
func (s *Store) RenameArtist(ctx context.Context, id int64, name string) error {
	return s.write(ctx, "rename_artist", logrus.Fields{"id": id}, func(c *components) error {
		if err := c.lib.RenameArtist(ctx, id, name); err != nil {
			return err
		}
		_, err := c.idx.ReindexArtist(ctx, id)
		return err
	})
}

// RenameAlbum renames an album and reindexes its playables.
func (s *Store) RenameAlbum(ctx context.Context, id int64, name string) error {
	return s.write(ctx, "rename_album", logrus.Fields{"id": id}, func(c *components) error {
		if err := c.lib.RenameAlbum(ctx, id, name); err != nil {
			return err
		}
		_, err := c.idx.ReindexAlbum(ctx, id)
		return err
	})
}

// RenameGenre renames a genre. Genres are not indexed.
func (s *Store) RenameGenre(ctx context.Context, id int64, name string) error {
	return s.write(ctx, "rename_genre", logrus.Fields{"id": id}, func(c *components) error {
		return c.lib.RenameGenre(ctx, id, name)
	})
}

// Playable returns a playable with its artwork.
func (s *Store) Playable(ctx context.Context, id int64) (*Playable, error) {
	var p *Playable
	err := s.read(ctx, func(c *components) error {
		var err error
		p, err = c.lib.Playable(ctx, id)
		return err
	})
	return p, err
}

// PlayableBySource returns the playable read from url.
func (s *Store) PlayableBySource(ctx context.Context, url string) (*Playable, error) {
	var p *Playable
	err := s.read(ctx, func(c *components) error {
		id, err := c.lib.PlayableIDBySource(ctx, url)
		if err != nil {
			return err
		}
		p, err = c.lib.Playable(ctx, id)
		return err
	})
	return p, err
}

// Browse lists playables matching f.
func (s *Store) Browse(ctx context.Context, f Filter) ([]Playable, error) {
	var out []Playable
	err := s.read(ctx, func(c *components) error {
		var err error
		out, err = c.lib.Browse(ctx, f)
		return err
	})
	return out, err
}

// Artists lists artists by name.
func (s *Store) Artists(ctx context.Context) ([]Artist, error) {
	var out []Artist
	err := s.read(ctx, func(c *components) error {
		var err error
		out, err = c.lib.Artists(ctx)
		return err
	})
	return out, err
}

// Albums lists albums by name, all of them when artistID is nil.
func (s *Store) Albums(ctx context.Context, artistID *int64) ([]Album, error) {
	var out []Album
	err := s.read(ctx, func(c *components) error {
		var err error
		out, err = c.lib.Albums(ctx, artistID)
		return err
	})
	return out, err
}

// Artist returns an artist with its playable count.
func (s *Store) Artist(ctx context.Context, id int64) (*Artist, error) {
	var a *Artist
	err := s.read(ctx, func(c *components) error {
		var err error
		a, err = c.lib.Artist(ctx, id)
		return err
	})
	return a, err
}

// Album returns an album with its artist name and playable count.
func (s *Store) Album(ctx context.Context, id int64) (*Album, error) {
	var a *Album
	err := s.read(ctx, func(c *components) error {
		var err error
		a, err = c.lib.Album(ctx, id)
		return err
	})
	return a, err
}

// Genres lists genres by name.
func (s *Store) Genres(ctx context.Context) ([]Genre, error) {
	var out []Genre
	err := s.read(ctx, func(c *components) error {
		var err error
		out, err = c.lib.Genres(ctx)
		return err
	})
	return out, err
}

func (c *components) importOne(ctx context.Context, d Descriptor) (int64, error) {
	f, err := c.fields(ctx, d)
	if err != nil {
		return 0, err
	}
	id, err := c.lib.InsertPlayable(ctx, f)
	if err != nil {
		return 0, err
	}
	for _, name := range d.Tags {
		if strings.TrimSpace(name) == "" {
			continue
		}
		tagID, err := c.tags.Upsert(ctx, name)
		if err != nil {
			return 0, err
		}
		if err := c.tags.AddTag(ctx, id, tagID); err != nil {
			return 0, err
		}
	}
	if err := c.idx.Reindex(ctx, id); err != nil {
		return 0, err
	}
	return id, nil
}

// fields resolves the names of d to ids, creating missing rows. An album is
// scoped to the artist of d.
func (c *components) fields(ctx context.Context, d Descriptor) (library.Fields, error) {
	f := library.Fields{
		Title:     strings.TrimSpace(d.Title),
		Duration:  d.Duration,
		SourceURL: strings.TrimSpace(d.SourceURL),
		Kind:      d.Kind,
		Artwork:   d.Artwork,
	}

	upsert := func(what, name string, fn func(context.Context, string) (int64, error)) (*int64, error) {
		if library.CleanName(name) == "" {
			return nil, nil
		}
		id, err := fn(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("%s %q: %w", what, name, err)
		}
		return &id, nil
	}

	var err error
	if f.ArtistID, err = upsert("artist", d.Artist, c.lib.UpsertArtist); err != nil {
		return f, err
	}
	if f.GenreID, err = upsert("genre", d.Genre, c.lib.UpsertGenre); err != nil {
		return f, err
	}
	f.AlbumID, err = upsert("album", d.Album, func(ctx context.Context, name string) (int64, error) {
		return c.lib.UpsertAlbum(ctx, name, f.ArtistID)
	})
	return f, err
}

func (c *components) deletePlayable(ctx context.Context, id int64) error {
	if _, err := c.pls.Detach(ctx, id); err != nil {
		return err
	}
	if err := c.idx.Remove(ctx, id); err != nil {
		return err
	}
	return c.lib.DeletePlayable(ctx, id)
}
