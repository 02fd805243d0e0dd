package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/llehouerou/wavestore/internal/errmsg"
	"github.com/llehouerou/wavestore/internal/importer"
	"github.com/llehouerou/wavestore/internal/storage"
)

func (a *app) importCmd() *cobra.Command {
	var tags []string

	cmd := &cobra.Command{
		Use:   "import <path>...",
		Short: "Import audio files and folders",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := importer.Discover(args, a.cfg.Import.Extensions)
			if err != nil {
				return fail(errmsg.OpImportDiscover, err)
			}

			tags = append(tags, a.cfg.Import.Tags...)
			descs := make([]storage.Descriptor, 0, len(paths))
			for _, path := range paths {
				d, err := importer.Read(path)
				if err != nil {
					a.log.WithError(err).WithField("path", path).Warn("skipping unreadable file")
					continue
				}
				d.Tags = append(d.Tags, tags...)
				descs = append(descs, d)
			}

			res, err := a.store.ImportMany(cmd.Context(), descs)
			if err != nil {
				return fail(errmsg.OpImport, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d, already present %d, unreadable %d\n",
				res.Added, res.Skipped, len(paths)-len(descs))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tag every imported playable")
	return cmd
}

func (a *app) lsCmd() *cobra.Command {
	var (
		artist, album, genre int64
		sortBy               string
		desc                 bool
		limit, offset        int
	)

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List playables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, ok := storage.ParseSortKey(sortBy)
			if !ok {
				return fmt.Errorf("unknown sort key %q", sortBy)
			}
			ps, err := a.store.Browse(cmd.Context(), storage.Filter{
				ArtistID: optionalID(artist),
				AlbumID:  optionalID(album),
				GenreID:  optionalID(genre),
				Sort:     key,
				Desc:     desc,
				Limit:    limit,
				Offset:   offset,
			})
			if err != nil {
				return fail(errmsg.OpLibraryList, err)
			}
			return printPlayables(cmd.OutOrStdout(), ps)
		},
	}
	cmd.Flags().Int64Var(&artist, "artist", 0, "only this artist id")
	cmd.Flags().Int64Var(&album, "album", 0, "only this album id")
	cmd.Flags().Int64Var(&genre, "genre", 0, "only this genre id")
	cmd.Flags().StringVar(&sortBy, "sort", "title", "title, artist, album, duration or added")
	cmd.Flags().BoolVar(&desc, "desc", false, "reverse the order")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum rows, 0 for all")
	cmd.Flags().IntVar(&offset, "offset", 0, "rows to skip")
	return cmd
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a playable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			p, err := a.store.Playable(ctx, id)
			if err != nil {
				return failWith(errmsg.OpPlayableShow, args[0], err)
			}
			tags, err := a.store.TagsFor(ctx, id)
			if err != nil {
				return failWith(errmsg.OpPlayableShow, args[0], err)
			}
			liked, err := a.store.IsLiked(ctx, id)
			if err != nil {
				return failWith(errmsg.OpPlayableShow, args[0], err)
			}
			return printPlayable(cmd.OutOrStdout(), p, tags, liked)
		},
	}
}

func (a *app) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>...",
		Short: "Delete playables",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			if err := a.store.DeletePlayables(cmd.Context(), ids); err != nil {
				return failWith(errmsg.OpPlayableDelete, strings.Join(args, " "), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d\n", len(ids))
			return nil
		},
	}
}

func (a *app) renameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename artist|album|genre <id> <name>",
		Short: "Rename an artist, album or genre",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			ctx, name, out := cmd.Context(), args[2], cmd.OutOrStdout()
			switch args[0] {
			case "artist":
				if err := a.store.RenameArtist(ctx, id, name); err != nil {
					return failWith(errmsg.OpArtistRename, args[1], err)
				}
				ar, err := a.store.Artist(ctx, id)
				if err != nil {
					return failWith(errmsg.OpArtistRename, args[1], err)
				}
				fmt.Fprintf(out, "artist %d is now %q (%d playables)\n", ar.ID, ar.Name, ar.PlayableCount)
				return nil
			case "album":
				if err := a.store.RenameAlbum(ctx, id, name); err != nil {
					return failWith(errmsg.OpAlbumRename, args[1], err)
				}
				al, err := a.store.Album(ctx, id)
				if err != nil {
					return failWith(errmsg.OpAlbumRename, args[1], err)
				}
				fmt.Fprintf(out, "album %d is now %q by %s (%d playables)\n", al.ID, al.Name, orDash(al.ArtistName), al.PlayableCount)
				return nil
			case "genre":
				return failWith(errmsg.OpGenreRename, args[1], a.store.RenameGenre(ctx, id, name))
			}
			return errors.New("rename what? artist, album or genre")
		},
	}
	return cmd
}

func (a *app) searchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>...",
		Short: "Search titles, artists and albums",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ps, err := a.store.Search(cmd.Context(), strings.Join(args, " "), limit)
			if err != nil {
				return fail(errmsg.OpSearch, err)
			}
			return printPlayables(cmd.OutOrStdout(), ps)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum results, 0 for all")
	return cmd
}

func (a *app) likeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "like <id>...",
		Short: "Like playables",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return failWith(errmsg.OpLikeToggle, strings.Join(args, " "), a.store.LikeMany(cmd.Context(), ids))
		},
	}
}

func (a *app) unlikeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unlike <id>...",
		Short: "Clear the like of playables",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return failWith(errmsg.OpLikeToggle, strings.Join(args, " "), a.store.UnlikeMany(cmd.Context(), ids))
		},
	}
}

func (a *app) likedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "liked",
		Short: "List liked playables, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ps, err := a.store.Liked(cmd.Context())
			if err != nil {
				return fail(errmsg.OpLikedList, err)
			}
			return printPlayables(cmd.OutOrStdout(), ps)
		},
	}
}
