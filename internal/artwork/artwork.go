// Package artwork prepares banner, avatar and cover images for storage.
package artwork

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoder for imported images

	"github.com/nfnt/resize"
)

// DefaultMaxSize bounds the longest edge of a stored image, in pixels.
const DefaultMaxSize = 1024

const jpegQuality = 88

// ErrNotImage is returned for data no registered decoder understands.
var ErrNotImage = errors.New("not a PNG or JPEG image")

// Normalize shrinks data so neither edge exceeds maxSize and re-encodes it
// as JPEG. Images already within bounds come back untouched. Empty input
// stays empty so callers can pass a cleared image straight through.
func Normalize(data []byte, maxSize int) ([]byte, error) {
	if len(data) == 0 {
		return data, nil
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotImage, err)
	}
	b := img.Bounds()
	if b.Dx() <= maxSize && b.Dy() <= maxSize {
		return data, nil
	}

	edge := uint(maxSize) //nolint:gosec // checked positive above
	resized := resize.Thumbnail(edge, edge, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode artwork: %w", err)
	}
	return buf.Bytes(), nil
}

// Size returns the pixel dimensions of an encoded image.
func Size(data []byte) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrNotImage, err)
	}
	return cfg.Width, cfg.Height, nil
}
