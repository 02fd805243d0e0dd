package storage

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/wavestore/internal/db"
)

// Search returns the playables matching query in rank order. limit <= 0
// means no limit.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]Playable, error) {
	var out []Playable
	err := s.read(ctx, func(c *components) error {
		ids, err := c.idx.Search(ctx, query, limit)
		if err != nil {
			return err
		}
		out, err = c.lib.PlayablesByIDs(ctx, ids)
		return err
	})
	return out, err
}

// Stats counts the rows of every entity.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.read(ctx, func(c *components) error {
		counts := []struct {
			dst *int
			fn  func(context.Context) (int, error)
		}{
			{&st.Playables, c.lib.PlayableCount},
			{&st.Artists, c.lib.ArtistCount},
			{&st.Albums, c.lib.AlbumCount},
			{&st.Genres, c.lib.GenreCount},
			{&st.Tags, c.tags.Count},
			{&st.Liked, c.likes.Count},
			{&st.SearchEntries, c.idx.Count},
		}
		for _, n := range counts {
			v, err := n.fn(ctx)
			if err != nil {
				return err
			}
			*n.dst = v
		}

		var err error
		if st.SchemaVersion, err = db.SchemaVersion(ctx, c.q); err != nil {
			return err
		}
		if st.Playlists, err = c.pls.Count(ctx); err != nil {
			return err
		}
		st.TotalDuration, err = c.lib.TotalDuration(ctx)
		return err
	})
	return st, err
}

// PruneOrphans deletes artists, albums, genres and tags nothing refers to.
func (s *Store) PruneOrphans(ctx context.Context) (PruneResult, error) {
	var res PruneResult
	err := s.write(ctx, "prune_orphans", nil, func(c *components) error {
		lr, err := c.lib.PruneOrphans(ctx)
		if err != nil {
			return err
		}
		tags, err := c.tags.PruneOrphans(ctx)
		if err != nil {
			return err
		}
		res = PruneResult{Artists: lr.Artists, Albums: lr.Albums, Genres: lr.Genres, Tags: tags}
		return nil
	})
	if err != nil {
		return PruneResult{}, err
	}
	s.log.WithFields(logrus.Fields{
		"artists": res.Artists,
		"albums":  res.Albums,
		"genres":  res.Genres,
		"tags":    res.Tags,
	}).Info("pruned orphans")
	return res, nil
}

// RebuildSearchIndex recreates every index entry from the catalog and
// returns the number of entries written.
func (s *Store) RebuildSearchIndex(ctx context.Context) (int64, error) {
	var n int64
	err := s.write(ctx, "rebuild_search_index", nil, func(c *components) error {
		var err error
		n, err = c.idx.Rebuild(ctx)
		return err
	})
	if err == nil {
		s.log.WithField("entries", n).Info("search index rebuilt")
	}
	return n, err
}

// VerifySearchIndex compares the index with the catalog.
func (s *Store) VerifySearchIndex(ctx context.Context) (Drift, error) {
	var d Drift
	err := s.read(ctx, func(c *components) error {
		var err error
		d, err = c.idx.Verify(ctx)
		return err
	})
	return d, err
}

// VerifyPlaylistOrder returns the static playlists whose positions are not
// exactly 0..n-1, by tree order.
func (s *Store) VerifyPlaylistOrder(ctx context.Context) ([]int64, error) {
	var broken []int64
	err := s.read(ctx, func(c *components) error {
		broken = nil
		list, err := c.pls.List(ctx)
		if err != nil {
			return err
		}
		for _, pl := range list {
			if pl.Kind != Static {
				continue
			}
			err := c.pls.CheckOrder(ctx, pl.ID)
			switch {
			case errors.Is(err, ErrOrderingConflict):
				broken = append(broken, pl.ID)
			case err != nil:
				return err
			}
		}
		return nil
	})
	return broken, err
}
