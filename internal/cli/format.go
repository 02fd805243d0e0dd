package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/llehouerou/wavestore/internal/storage"
)

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, s := range args {
		id, err := parseID(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// optionalID turns an id flag into a pointer, 0 meaning unset.
func optionalID(id int64) *int64 {
	if id <= 0 {
		return nil
	}
	return &id
}

// formatDuration renders seconds as m:ss, or h:mm:ss past an hour.
func formatDuration(seconds int64) string {
	if seconds <= 0 {
		return "-"
	}
	h, m, s := seconds/3600, (seconds%3600)/60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printPlayables(w io.Writer, ps []storage.Playable) error {
	if len(ps) == 0 {
		_, err := fmt.Fprintln(w, "no playables")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTITLE\tARTIST\tALBUM\tTIME")
	for _, p := range ps {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			p.ID, orDash(p.Title), orDash(p.ArtistName), orDash(p.AlbumName), formatDuration(p.Duration))
	}
	return tw.Flush()
}

func printPlayable(w io.Writer, p *storage.Playable, tags []storage.Tag, liked bool) error {
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}

	tw := newTable(w)
	fmt.Fprintf(tw, "id:\t%d\n", p.ID)
	fmt.Fprintf(tw, "title:\t%s\n", orDash(p.Title))
	fmt.Fprintf(tw, "artist:\t%s\n", orDash(p.ArtistName))
	fmt.Fprintf(tw, "album:\t%s\n", orDash(p.AlbumName))
	fmt.Fprintf(tw, "genre:\t%s\n", orDash(p.GenreName))
	fmt.Fprintf(tw, "duration:\t%s\n", formatDuration(p.Duration))
	fmt.Fprintf(tw, "source:\t%s (%s)\n", p.SourceURL, p.Kind)
	fmt.Fprintf(tw, "added:\t%s\n", humanize.Time(time.Unix(p.CreatedAt, 0)))
	fmt.Fprintf(tw, "liked:\t%t\n", liked)
	fmt.Fprintf(tw, "tags:\t%s\n", orDash(strings.Join(names, ", ")))
	if len(p.Artwork) > 0 {
		fmt.Fprintf(tw, "artwork:\t%s\n", humanize.IBytes(uint64(len(p.Artwork))))
	}
	return tw.Flush()
}
