// Package imaging normalises uploaded item and proof photos.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/draw"

	"github.com/erazemk/traceback/internal/model"
)

const (
	// MaxUploadBytes caps a single uploaded photo.
	MaxUploadBytes = 5 << 20
	// MaxDimension is the largest stored width or height.
	MaxDimension = 1024
	// JPEGQuality is used when re-encoding.
	JPEGQuality = 85
)

// Errors returned by Process. Both unwrap to model.ErrValidation.
var (
	ErrTooLarge    = fmt.Errorf("%w: image exceeds %d bytes", model.ErrValidation, MaxUploadBytes)
	ErrUnsupported = errors.New("unsupported image format")
)

var allowed = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Photo is a processed upload, always JPEG.
type Photo struct {
	Data   []byte
	MIME   string
	Width  int
	Height int
}

// Process reads at most MaxUploadBytes from r, checks the content by its
// magic bytes, shrinks it to fit MaxDimension and re-encodes it as JPEG.
func Process(r io.Reader) (*Photo, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}
	if len(data) > MaxUploadBytes {
		return nil, ErrTooLarge
	}

	kind := mimetype.Detect(data)
	if !allowed[kind.String()] {
		return nil, fmt.Errorf("%w: %w: %s (JPEG or PNG only)", model.ErrValidation, ErrUnsupported, kind.String())
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding image: %v", model.ErrValidation, err)
	}
	img = fit(img, MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}

	b := img.Bounds()
	return &Photo{Data: buf.Bytes(), MIME: "image/jpeg", Width: b.Dx(), Height: b.Dy()}, nil
}

// fit scales img down, keeping its aspect ratio, so that neither side
// exceeds limit. Smaller images are returned as is.
func fit(img image.Image, limit int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= limit && h <= limit {
		return img
	}

	nw, nh := limit, limit
	if w > h {
		nh = max(1, h*limit/w)
	} else {
		nw = max(1, w*limit/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
