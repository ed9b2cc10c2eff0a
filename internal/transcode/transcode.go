// Package transcode makes imported audio playable by the player: files the
// decoders accept are copied as they are, files with a misleading or missing
// extension are re-encoded to WAV.
package transcode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"

	"github.com/llehouerou/artistmusic/internal/player"
)

// ErrUnsupported is returned when no decoder can read the source.
var ErrUnsupported = errors.New("unsupported audio file")

// Transcoder copies or converts audio into a destination directory.
type Transcoder struct {
	logger *log.Logger
}

// New returns a Transcoder. A nil logger discards output.
func New(logger *log.Logger) *Transcoder {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Transcoder{logger: logger}
}

// EnsurePlayableCopy places a playable version of src in destDir and
// returns its path.
func (t *Transcoder) EnsurePlayableCopy(ctx context.Context, src, destDir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", destDir, err)
	}

	if decodable(src) {
		dest := filepath.Join(destDir, filepath.Base(src))
		if err := copyFile(src, dest); err != nil {
			return "", err
		}
		t.logger.Info("copied audio", "src", src, "dest", dest)
		return dest, nil
	}

	dest, err := t.reencode(ctx, src, destDir)
	if err != nil {
		return "", err
	}
	t.logger.Info("converted audio to wav", "src", src, "dest", dest)
	return dest, nil
}

// decodable reports whether the decoder picked by the extension accepts src.
func decodable(src string) bool {
	s, _, err := player.Open(src)
	if err != nil {
		return false
	}
	s.Close()
	return true
}

func (t *Transcoder) reencode(ctx context.Context, src, destDir string) (string, error) {
	f, err := os.Open(src)
	if err != nil {
		return "", err
	}
	codec, err := player.Sniff(f)
	if err != nil {
		f.Close()
		return "", fmt.Errorf("%w: %s", ErrUnsupported, filepath.Base(src))
	}
	streamer, format, err := player.Decode(f, codec)
	if err != nil {
		f.Close()
		return "", fmt.Errorf("%w: %s: %w", ErrUnsupported, filepath.Base(src), err)
	}
	defer streamer.Close()
	t.logger.Debug("sniffed audio", "src", src, "codec", codec)

	dest := filepath.Join(destDir, stem(src)+".wav")
	if samePath(src, dest) {
		return "", fmt.Errorf("%w: %s would overwrite itself", ErrUnsupported, filepath.Base(src))
	}
	out, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	done := false
	defer func() {
		if !done {
			os.Remove(dest)
		}
	}()

	err = wav.Encode(out, &ctxStreamer{ctx: ctx, s: streamer}, format)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = ctx.Err()
	}
	if err == nil {
		err = streamer.Err()
	}
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", dest, err)
	}
	done = true
	return dest, nil
}

// ctxStreamer ends the stream once ctx is cancelled.
type ctxStreamer struct {
	ctx context.Context
	s   beep.Streamer
}

func (c *ctxStreamer) Stream(samples [][2]float64) (int, bool) {
	if c.ctx.Err() != nil {
		return 0, false
	}
	return c.s.Stream(samples)
}

func (c *ctxStreamer) Err() error { return c.s.Err() }

func copyFile(src, dest string) error {
	if samePath(src, dest) {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*.part")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dest)
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
