package importer

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	goflac "github.com/go-flac/go-flac"
	"github.com/jfreymuth/vorbis"
	"github.com/llehouerou/go-m4a"
	"github.com/llehouerou/go-mp3"
)

// readDuration measures the playing time of an audio file without decoding
// the whole stream where the container allows it.
func readDuration(path string) (time.Duration, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".flac":
		return flacDuration(path)
	case ".mp3", ".ogg", ".opus", ".m4a", ".mp4":
	default:
		return 0, fmt.Errorf("unsupported format: %s", ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	switch ext {
	case ".mp3":
		return mp3Duration(f)
	case ".ogg", ".opus":
		return oggDuration(f)
	default:
		return m4aDuration(f)
	}
}

func mp3Duration(f *os.File) (time.Duration, error) {
	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		return 0, err
	}

	sampleRate := decoder.SampleRate()
	if sampleRate == 0 {
		return 0, errors.New("mp3: invalid sample rate")
	}

	sampleCount := max(decoder.SampleCount(), 0)
	return time.Duration(float64(sampleCount) / float64(sampleRate) * float64(time.Second)), nil
}

// flacDuration reads total samples and sample rate from the STREAMINFO block.
func flacDuration(path string) (time.Duration, error) {
	flacFile, err := goflac.ParseFile(path)
	if err != nil {
		return 0, err
	}

	for _, meta := range flacFile.Meta {
		if meta.Type != goflac.StreamInfo || len(meta.Data) < 18 {
			continue
		}
		data := meta.Data

		// sample rate: 20 bits from byte 10; total samples: 36 bits from byte 13
		sampleRate := int(data[10])<<12 | int(data[11])<<4 | int(data[12])>>4
		totalSamples := int64(data[13]&0x0F)<<32 | int64(data[14])<<24 | int64(data[15])<<16 | int64(data[16])<<8 | int64(data[17])
		if sampleRate == 0 {
			return 0, errors.New("flac: invalid sample rate")
		}
		return time.Duration(float64(totalSamples) / float64(sampleRate) * float64(time.Second)), nil
	}

	return 0, errors.New("flac: no streaminfo block")
}

// oggDuration divides the granule position of the last page by the rate
// the codec counts granules at. Vorbis counts at the stream sample rate,
// read from the identification header. Opus always counts at 48 kHz and
// its pre-skip is not part of the playing time.
func oggDuration(f *os.File) (time.Duration, error) {
	head, err := firstOggPacket(f)
	if err != nil {
		return 0, err
	}

	var rate, preSkip int64
	if bytes.HasPrefix(head, []byte("OpusHead")) {
		if len(head) < 19 {
			return 0, errors.New("opus: invalid header")
		}
		rate, preSkip = opusGranuleRate, int64(binary.LittleEndian.Uint16(head[10:12]))
	} else {
		var dec vorbis.Decoder
		if err := dec.ReadHeader(head); err != nil {
			return 0, fmt.Errorf("ogg: %w", err)
		}
		rate = int64(dec.SampleRate())
	}
	if rate <= 0 {
		return 0, errors.New("ogg: invalid sample rate")
	}

	granule, err := lastGranule(f)
	if err != nil {
		return 0, err
	}
	samples := granule - preSkip
	if samples <= 0 {
		return 0, errors.New("could not determine ogg duration")
	}
	return time.Duration(float64(samples) / float64(rate) * float64(time.Second)), nil
}

const opusGranuleRate = 48000

// firstOggPacket returns the packet of the first page, the codec
// identification header. It always fits in that page.
func firstOggPacket(f *os.File) ([]byte, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	hdr := make([]byte, 27)
	if _, err := io.ReadFull(f, hdr); err != nil {
		return nil, err
	}
	if string(hdr[:4]) != "OggS" {
		return nil, errors.New("ogg: missing capture pattern")
	}
	lacing := make([]byte, hdr[26])
	if _, err := io.ReadFull(f, lacing); err != nil {
		return nil, err
	}

	size := 0
	for _, l := range lacing {
		size += int(l)
		if l < 255 {
			break
		}
	}
	packet := make([]byte, size)
	if _, err := io.ReadFull(f, packet); err != nil {
		return nil, err
	}
	return packet, nil
}

// lastGranule reads the granule position of the last page in the file.
func lastGranule(f *os.File) (int64, error) {
	fi, err := f.Stat()
	if err != nil {
		return 0, err
	}

	searchSize := min(int64(65536), fi.Size())
	if _, err := f.Seek(-searchSize, io.SeekEnd); err != nil {
		return 0, err
	}

	buf := make([]byte, searchSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return 0, err
	}
	buf = buf[:n]

	for i := len(buf) - 27; i >= 0; i-- {
		if string(buf[i:i+4]) == "OggS" {
			return int64(binary.LittleEndian.Uint64(buf[i+6 : i+14])), nil
		}
	}
	return 0, errors.New("ogg: no page found")
}

func m4aDuration(f *os.File) (time.Duration, error) {
	container, err := m4a.Open(f)
	if err != nil {
		return 0, err
	}
	return container.Duration(), nil
}
