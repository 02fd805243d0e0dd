package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/llehouerou/wavestore/internal/errmsg"
	"github.com/llehouerou/wavestore/internal/storage"
)

func (a *app) pruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Delete artists, albums, genres and tags nothing uses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.store.PruneOrphans(cmd.Context())
			if err != nil {
				return fail(errmsg.OpPruneOrphans, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d artists, %d albums, %d genres, %d tags\n",
				res.Artists, res.Albums, res.Genres, res.Tags)
			return nil
		},
	}
}

func (a *app) reindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the search index from the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := a.store.RebuildSearchIndex(cmd.Context())
			if err != nil {
				return fail(errmsg.OpSearchRebuild, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %s playables\n", humanize.Comma(n))
			return nil
		},
	}
}

func (a *app) verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the search index and playlist ordering",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, out := cmd.Context(), cmd.OutOrStdout()
			d, err := a.store.VerifySearchIndex(ctx)
			if err != nil {
				return fail(errmsg.OpSearchVerify, err)
			}
			if d.Total() == 0 {
				fmt.Fprintln(out, "search index is up to date")
			} else {
				fmt.Fprintf(out, "search index drift: %d missing, %d orphaned, %d stale (run reindex)\n",
					d.Missing, d.Orphaned, d.Stale)
			}

			broken, err := a.store.VerifyPlaylistOrder(ctx)
			if err != nil {
				return fail(errmsg.OpPlaylistVerify, err)
			}
			if len(broken) == 0 {
				fmt.Fprintln(out, "playlist positions are contiguous")
			} else {
				fmt.Fprintf(out, "playlists with broken positions: %s\n", strings.Trim(fmt.Sprint(broken), "[]"))
			}
			return nil
		},
	}
}

func (a *app) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.store.Stats(cmd.Context())
			if err != nil {
				return fail(errmsg.OpStats, err)
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintf(tw, "playables:\t%s\n", humanize.Comma(int64(st.Playables)))
			fmt.Fprintf(tw, "artists:\t%s\n", humanize.Comma(int64(st.Artists)))
			fmt.Fprintf(tw, "albums:\t%s\n", humanize.Comma(int64(st.Albums)))
			fmt.Fprintf(tw, "genres:\t%s\n", humanize.Comma(int64(st.Genres)))
			fmt.Fprintf(tw, "tags:\t%s\n", humanize.Comma(int64(st.Tags)))
			fmt.Fprintf(tw, "liked:\t%s\n", humanize.Comma(int64(st.Liked)))
			fmt.Fprintf(tw, "playlists:\t%d static, %d smart, %d folders\n",
				st.Playlists[storage.Static], st.Playlists[storage.Dynamic], st.Playlists[storage.Folder])
			fmt.Fprintf(tw, "total time:\t%s\n", (time.Duration(st.TotalDuration) * time.Second).String())
			fmt.Fprintf(tw, "indexed:\t%s\n", humanize.Comma(int64(st.SearchEntries)))
			fmt.Fprintf(tw, "schema:\tv%d\n", st.SchemaVersion)
			return tw.Flush()
		},
	}
}
