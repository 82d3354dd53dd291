package imageproc

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
)

const (
	DefaultMaxSide = 1920
	jpegQuality    = 85
)

// ErrNotSmaller means re-encoding would not reduce the payload.
var ErrNotSmaller = errors.New("re-encoded image is not smaller")

// Shrinker downsizes photos before they are relayed, re-encoding them as JPEG.
type Shrinker struct {
	maxSide int
}

// NewShrinker returns a shrinker that caps the longest side at maxSide.
func NewShrinker(maxSide int) *Shrinker {
	if maxSide <= 0 {
		maxSide = DefaultMaxSide
	}
	return &Shrinker{maxSide: maxSide}
}

// Shrink decodes a base64 image, scales it down when needed and returns the
// JPEG result, base64 encoded. The original is kept when the result is larger.
func (s *Shrinker) Shrink(payload string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("decode base64: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w > s.maxSide || h > s.maxSide {
		if w >= h {
			img = imaging.Resize(img, s.maxSide, 0, imaging.Lanczos)
		} else {
			img = imaging.Resize(img, 0, s.maxSide, imaging.Lanczos)
		}
	}

	buf := &bytes.Buffer{}
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", fmt.Errorf("encode jpeg: %w", err)
	}
	if buf.Len() >= len(raw) {
		return "", ErrNotSmaller
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
