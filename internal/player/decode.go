package player

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// Codec names an audio encoding the output can decode.
type Codec string

const (
	CodecMP3    Codec = "mp3"
	CodecFLAC   Codec = "flac"
	CodecWAV    Codec = "wav"
	CodecVorbis Codec = "vorbis"
)

const (
	extMP3  = ".mp3"
	extFLAC = ".flac"
	extWAV  = ".wav"
	extWAVE = ".wave"
	extOGG  = ".ogg"
	extOGA  = ".oga"
)

// ErrUnsupportedFormat is returned when no decoder matches a file.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// CodecForPath picks a codec from the file extension.
func CodecForPath(path string) (Codec, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case extMP3:
		return CodecMP3, true
	case extFLAC:
		return CodecFLAC, true
	case extWAV, extWAVE:
		return CodecWAV, true
	case extOGG, extOGA:
		return CodecVorbis, true
	default:
		return "", false
	}
}

// Extension returns the canonical file extension for c.
func (c Codec) Extension() string {
	switch c {
	case CodecMP3:
		return extMP3
	case CodecFLAC:
		return extFLAC
	case CodecWAV:
		return extWAV
	case CodecVorbis:
		return extOGG
	default:
		return ""
	}
}

// Sniff inspects the content of r and returns the codec it holds. The read
// position is restored before returning.
func Sniff(r io.ReadSeeker) (Codec, error) {
	start, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return "", err
	}
	defer r.Seek(start, io.SeekStart) //nolint:errcheck // best effort rewind

	header := make([]byte, 12)
	n, err := io.ReadFull(r, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}
	header = header[:n]
	if len(header) == 12 && bytes.Equal(header[0:4], []byte("RIFF")) && bytes.Equal(header[8:12], []byte("WAVE")) {
		return CodecWAV, nil
	}

	if _, err := r.Seek(start, io.SeekStart); err != nil {
		return "", err
	}
	_, fileType, err := tag.Identify(r)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}
	switch fileType {
	case tag.MP3:
		return CodecMP3, nil
	case tag.FLAC:
		return CodecFLAC, nil
	case tag.OGG:
		return CodecVorbis, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, fileType)
	}
}

// Decode reads f with the decoder for codec. Closing the returned streamer
// closes f.
func Decode(f *os.File, codec Codec) (beep.StreamSeekCloser, beep.Format, error) {
	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
		err      error
	)
	switch codec {
	case CodecMP3:
		streamer, format, err = decodeGoMP3(f)
	case CodecFLAC:
		// Some taggers prepend ID3v2 to FLAC files, which the decoder rejects.
		if err := skipID3v2(f); err != nil {
			return nil, beep.Format{}, err
		}
		streamer, format, err = flac.Decode(f)
	case CodecWAV:
		streamer, format, err = wav.Decode(f)
	case CodecVorbis:
		streamer, format, err = vorbis.Decode(f)
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, codec)
	}
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("decode %s: %w", codec, err)
	}
	return &fileStreamer{StreamSeekCloser: streamer, file: f}, format, nil
}

// Open opens path and decodes it using the codec implied by its extension.
func Open(path string) (beep.StreamSeekCloser, beep.Format, error) {
	codec, ok := CodecForPath(path)
	if !ok {
		return nil, beep.Format{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}
	s, format, err := Decode(f, codec)
	if err != nil {
		f.Close()
		return nil, beep.Format{}, err
	}
	return s, format, nil
}

// fileStreamer closes the backing file along with the decoder. Decoders do
// not agree on whether they own their reader.
type fileStreamer struct {
	beep.StreamSeekCloser
	file *os.File
}

func (s *fileStreamer) Close() error {
	err := s.StreamSeekCloser.Close()
	if cerr := s.file.Close(); cerr != nil && !errors.Is(cerr, os.ErrClosed) && err == nil {
		err = cerr
	}
	return err
}

// skipID3v2 positions r after an ID3v2 tag if one is present, otherwise at
// the start.
func skipID3v2(r io.ReadSeeker) error {
	header := make([]byte, 10)
	n, err := io.ReadFull(r, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return err
	}
	if n < 10 || string(header[0:3]) != "ID3" {
		_, err = r.Seek(0, io.SeekStart)
		return err
	}

	// Syncsafe integer: seven bits per byte.
	size := int64(header[6])<<21 | int64(header[7])<<14 | int64(header[8])<<7 | int64(header[9])
	_, err = r.Seek(10+size, io.SeekStart)
	return err
}
