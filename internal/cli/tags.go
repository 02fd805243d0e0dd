package cli

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/llehouerou/wavestore/internal/errmsg"
)

func (a *app) tagCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage tags",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <playable-id> <tag>...",
			Short: "Tag a playable, creating tags as needed",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				return failWith(errmsg.OpTagAdd, strings.Join(args[1:], ", "), a.store.TagPlayableMany(cmd.Context(), id, args[1:]))
			},
		},
		&cobra.Command{
			Use:   "rm <playable-id> <tag>...",
			Short: "Remove tags from a playable",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				return failWith(errmsg.OpTagRemove, strings.Join(args[1:], ", "), a.store.UntagPlayableMany(cmd.Context(), id, args[1:]))
			},
		},
		&cobra.Command{
			Use:   "ls [tag]",
			Short: "List tags, or the playables carrying one",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if len(args) == 1 {
					ps, err := a.store.Tagged(cmd.Context(), args[0])
					if err != nil {
						return failWith(errmsg.OpTagList, args[0], err)
					}
					return printPlayables(cmd.OutOrStdout(), ps)
				}

				tags, err := a.store.Tags(cmd.Context())
				if err != nil {
					return fail(errmsg.OpTagList, err)
				}
				tw := newTable(cmd.OutOrStdout())
				fmt.Fprintln(tw, "ID\tTAG\tPLAYABLES")
				for _, t := range tags {
					fmt.Fprintf(tw, "%d\t%s\t%s\n", t.ID, t.Name, humanize.Comma(int64(t.PlayableCount)))
				}
				return tw.Flush()
			},
		},
		&cobra.Command{
			Use:   "rename <tag-id> <name>",
			Short: "Rename a tag",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				ctx := cmd.Context()
				if err := a.store.RenameTag(ctx, id, args[1]); err != nil {
					return failWith(errmsg.OpTagRename, args[0], err)
				}
				tag, err := a.store.Tag(ctx, id)
				if err != nil {
					return failWith(errmsg.OpTagRename, args[0], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "tag %d is now %q (%d playables)\n", tag.ID, tag.Name, tag.PlayableCount)
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <tag-id>",
			Short: "Delete a tag everywhere",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				return failWith(errmsg.OpTagDelete, args[0], a.store.DeleteTag(cmd.Context(), id))
			},
		},
	)
	return cmd
}
