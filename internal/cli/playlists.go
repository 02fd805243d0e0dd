package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/llehouerou/wavestore/internal/errmsg"
	"github.com/llehouerou/wavestore/internal/storage"
)

func (a *app) playlistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "playlist",
		Aliases: []string{"pl"},
		Short:   "Manage playlists and folders",
	}
	cmd.AddCommand(
		a.playlistCreateCmd(),
		a.playlistFolderCmd(),
		a.playlistLsCmd(),
		a.playlistShowCmd(),
		a.playlistAddCmd(),
		a.playlistRmCmd(),
		a.playlistMoveCmd(),
		a.playlistReorderCmd(),
		a.playlistDeleteCmd(),
		a.playlistSmartCmd(),
		a.playlistRenameCmd(),
	)
	return cmd
}

func (a *app) playlistCreateCmd() *cobra.Command {
	var (
		parent int64
		kind   string
	)
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := storage.ParsePlaylistKind(kind)
			if err != nil {
				return err
			}
			id, err := a.store.CreatePlaylist(cmd.Context(), args[0], k, optionalID(parent))
			if err != nil {
				return failWith(errmsg.OpPlaylistCreate, args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().Int64Var(&parent, "parent", 0, "parent folder id")
	cmd.Flags().StringVar(&kind, "kind", "static", "static or smart")
	return cmd
}

func (a *app) playlistFolderCmd() *cobra.Command {
	var parent int64
	cmd := &cobra.Command{
		Use:   "folder <name>",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.store.CreatePlaylist(cmd.Context(), args[0], storage.Folder, optionalID(parent))
			if err != nil {
				return failWith(errmsg.OpFolderCreate, args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().Int64Var(&parent, "parent", 0, "parent folder id")
	return cmd
}

func (a *app) playlistLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "Show the playlist tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := a.store.Playlists(cmd.Context())
			if err != nil {
				return fail(errmsg.OpPlaylistList, err)
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tNAME\tKIND\tCREATED")
			for _, pl := range list {
				name := strings.Repeat("  ", pl.Depth) + pl.Name
				if pl.Kind == storage.Folder {
					name += "/"
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", pl.ID, name, pl.Kind, humanize.Time(time.Unix(pl.CreatedAt, 0)))
			}
			return tw.Flush()
		},
	}
}

func (a *app) playlistShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <playlist-id>",
		Short: "List the playables of a playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			pl, err := a.store.Playlist(ctx, id)
			if err != nil {
				return failWith(errmsg.OpPlaylistShow, args[0], err)
			}
			if pl.Kind == storage.Dynamic {
				tags, err := a.store.SmartTags(ctx, id)
				if err != nil {
					return failWith(errmsg.OpPlaylistShow, args[0], err)
				}
				names := make([]string, len(tags))
				for i, t := range tags {
					names[i] = t.Name
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s of [%s]\n", pl.Name, pl.Match, strings.Join(names, ", "))
			}
			ps, err := a.store.PlaylistItems(ctx, id)
			if err != nil {
				return failWith(errmsg.OpPlaylistShow, args[0], err)
			}
			return printPlayables(cmd.OutOrStdout(), ps)
		},
	}
}

func (a *app) playlistAddCmd() *cobra.Command {
	var at int
	cmd := &cobra.Command{
		Use:   "add <playlist-id> <playable-id>...",
		Short: "Add playables to a static playlist",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			plID, playables := ids[0], ids[1:]

			if at < 0 {
				n, err := a.store.AddManyToPlaylist(cmd.Context(), plID, playables)
				if err != nil {
					return failWith(errmsg.OpPlaylistAdd, args[0], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added %d\n", n)
				return nil
			}
			if err := a.store.InsertIntoPlaylist(cmd.Context(), plID, playables, at); err != nil {
				return failWith(errmsg.OpPlaylistAdd, args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %d\n", len(playables))
			return nil
		},
	}
	cmd.Flags().IntVar(&at, "at", -1, "insert at this position instead of appending")
	return cmd
}

func (a *app) playlistRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <playlist-id> <playable-id>...",
		Short: "Remove playables from a static playlist",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return failWith(errmsg.OpPlaylistRemove, args[0], a.store.RemoveManyFromPlaylist(cmd.Context(), ids[0], ids[1:]))
		},
	}
}

func (a *app) playlistMoveCmd() *cobra.Command {
	var (
		parent   int64
		position int
	)
	cmd := &cobra.Command{
		Use:   "move <playlist-id>",
		Short: "Move a playlist to another folder or position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if cmd.Flags().Changed("parent") {
				if err := a.store.MovePlaylist(ctx, id, optionalID(parent)); err != nil {
					return failWith(errmsg.OpPlaylistMove, args[0], err)
				}
			}
			if position >= 0 {
				if err := a.store.SetPlaylistPosition(ctx, id, position); err != nil {
					return failWith(errmsg.OpPlaylistMove, args[0], err)
				}
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&parent, "parent", 0, "new parent folder id, 0 for the root")
	cmd.Flags().IntVar(&position, "position", -1, "new position among siblings")
	return cmd
}

func (a *app) playlistReorderCmd() *cobra.Command {
	var by int
	cmd := &cobra.Command{
		Use:   "reorder <playlist-id> <playable-id> <position> | --by N <playlist-id> <position>...",
		Short: "Move a playable to a position, or shift a selection of positions",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			plID, err := parseID(args[0])
			if err != nil {
				return err
			}

			if by != 0 {
				positions := make([]int, 0, len(args)-1)
				for _, s := range args[1:] {
					p, err := strconv.Atoi(s)
					if err != nil {
						return fmt.Errorf("invalid position %q", s)
					}
					positions = append(positions, p)
				}
				moved, err := a.store.MovePlaylistItems(cmd.Context(), plID, positions, by)
				if err != nil {
					return failWith(errmsg.OpPlaylistReorder, args[0], err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), strings.Trim(fmt.Sprint(moved), "[]"))
				return nil
			}

			if len(args) != 3 {
				return errors.New("reorder needs <playlist-id> <playable-id> <position>")
			}
			playableID, err := parseID(args[1])
			if err != nil {
				return err
			}
			pos, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid position %q", args[2])
			}
			return failWith(errmsg.OpPlaylistReorder, args[0], a.store.ReorderPlaylist(cmd.Context(), plID, playableID, pos))
		},
	}
	cmd.Flags().IntVar(&by, "by", 0, "shift the given positions by N (negative moves up)")
	return cmd
}

func (a *app) playlistDeleteCmd() *cobra.Command {
	var cascade, reparent, clear bool
	cmd := &cobra.Command{
		Use:   "delete <playlist-id>",
		Short: "Delete a playlist or folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if clear {
				return failWith(errmsg.OpPlaylistDelete, args[0], a.store.ClearPlaylist(cmd.Context(), id))
			}

			policy := storage.DeleteRefuse
			switch {
			case cascade && reparent:
				return errors.New("--cascade and --reparent are exclusive")
			case cascade:
				policy = storage.DeleteCascade
			case reparent:
				policy = storage.DeleteReparent
			}
			return failWith(errmsg.OpPlaylistDelete, args[0], a.store.DeletePlaylist(cmd.Context(), id, policy))
		},
	}
	cmd.Flags().BoolVar(&cascade, "cascade", false, "delete the folder's whole subtree")
	cmd.Flags().BoolVar(&reparent, "reparent", false, "move the folder's children to its parent")
	cmd.Flags().BoolVar(&clear, "clear", false, "only remove every item of the playlist")
	return cmd
}

func (a *app) playlistSmartCmd() *cobra.Command {
	var anyTag bool
	cmd := &cobra.Command{
		Use:   "smart <playlist-id> <tag>...",
		Short: "Define a smart playlist by tags",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			mode := storage.MatchAll
			if anyTag {
				mode = storage.MatchAny
			}
			return failWith(errmsg.OpPlaylistSmart, args[0], a.store.DefineSmartPlaylist(cmd.Context(), id, args[1:], mode))
		},
	}
	cmd.Flags().BoolVar(&anyTag, "any", false, "match playables carrying any tag instead of all")
	return cmd
}

func (a *app) playlistRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <playlist-id> <name>",
		Short: "Rename a playlist or folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return failWith(errmsg.OpPlaylistRename, args[0], a.store.RenamePlaylist(cmd.Context(), id, args[1]))
		},
	}
}
