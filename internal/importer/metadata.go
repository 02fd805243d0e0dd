package importer

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/dhowden/tag"
)

var errNoTags = errors.New("no tags found")

type metadata struct {
	title   string
	artist  string
	album   string
	genre   string
	artwork []byte
}

// readMetadata reads the common tags of an audio file. MP3s that
// dhowden/tag cannot parse (some UTF-16 ID3 frames) are retried with id3v2.
func readMetadata(path string) (metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return metadata{}, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		if strings.EqualFold(filepath.Ext(path), ".mp3") {
			if md, id3Err := readID3v2(path); id3Err == nil {
				return md, nil
			}
		}
		return metadata{}, errNoTags
	}

	artist := m.Artist()
	if artist == "" {
		artist = m.AlbumArtist()
	}

	md := metadata{
		title:  strings.TrimSpace(m.Title()),
		artist: strings.TrimSpace(artist),
		album:  strings.TrimSpace(m.Album()),
		genre:  strings.TrimSpace(m.Genre()),
	}
	if pic := m.Picture(); pic != nil && len(pic.Data) > 0 {
		md.artwork = pic.Data
	}
	return md, nil
}

func readID3v2(path string) (metadata, error) {
	id3tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return metadata{}, err
	}
	defer id3tag.Close()

	artist := id3tag.Artist()
	if artist == "" {
		artist = getID3TextFrame(id3tag, "TPE2") // album artist
	}

	md := metadata{
		title:  strings.TrimSpace(id3tag.Title()),
		artist: strings.TrimSpace(artist),
		album:  strings.TrimSpace(id3tag.Album()),
		genre:  strings.TrimSpace(id3tag.Genre()),
	}
	for _, frame := range id3tag.GetFrames(id3tag.CommonID("Attached picture")) {
		if pic, ok := frame.(id3v2.PictureFrame); ok && len(pic.Picture) > 0 {
			md.artwork = pic.Picture
			break
		}
	}
	if md.title == "" && md.artist == "" && md.album == "" && md.artwork == nil {
		return md, errNoTags
	}
	return md, nil
}

func getID3TextFrame(id3tag *id3v2.Tag, frameID string) string {
	frames := id3tag.GetFrames(frameID)
	if len(frames) == 0 {
		return ""
	}
	if tf, ok := frames[0].(id3v2.TextFrame); ok {
		return tf.Text
	}
	return ""
}
