// Package raster is the image-buffer boundary of the renderer: it allocates
// the pixel grid for one frame, hands out row bands to render workers and
// serialises the finished buffer as JPEG.
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"

	"mandelmovie/internal/fileutil"
	"mandelmovie/internal/fractal"
	"mandelmovie/internal/workrange"
)

const (
	// DefaultJPEGQuality matches the encoder quality used when none is configured.
	DefaultJPEGQuality = 90
	// MaxPixels is the largest frame New allocates.
	MaxPixels = 1 << 28
)

var (
	// ErrInvalidDimensions reports a non-positive width or height.
	ErrInvalidDimensions = errors.New("image dimensions must be positive")
	// ErrReleased reports use of an image after Release.
	ErrReleased = errors.New("image already released")
	// ErrTooLarge reports a frame with more than MaxPixels pixels.
	ErrTooLarge = errors.New("image too large")
)

// Image is a width x height grid of opaque RGB pixels.
type Image struct {
	rgba *image.RGBA
}

// New allocates an image of the given size. All pixels start as colour 0.
func New(width, height int) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("allocate %dx%d: %w", width, height, ErrInvalidDimensions)
	}
	if width > MaxPixels || height > MaxPixels || width*height > MaxPixels {
		return nil, fmt.Errorf("allocate %dx%d: %w (limit %d pixels)", width, height, ErrTooLarge, MaxPixels)
	}
	img := &Image{rgba: image.NewRGBA(image.Rect(0, 0, width, height))}
	img.Fill(0)
	return img, nil
}

// Width returns the image width in pixels.
func (img *Image) Width() int {
	if img == nil || img.rgba == nil {
		return 0
	}
	return img.rgba.Rect.Dx()
}

// Height returns the image height in pixels.
func (img *Image) Height() int {
	if img == nil || img.rgba == nil {
		return 0
	}
	return img.rgba.Rect.Dy()
}

// Fill sets every pixel to c.
func (img *Image) Fill(c fractal.Color) {
	if img == nil || img.rgba == nil {
		return
	}
	px := c.RGBA()
	pix := img.rgba.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i] = px.R
		pix[i+1] = px.G
		pix[i+2] = px.B
		pix[i+3] = px.A
	}
}

// Set writes c at (x, y). Coordinates outside the image are ignored.
func (img *Image) Set(x, y int, c fractal.Color) {
	if img == nil || img.rgba == nil {
		return
	}
	img.rgba.SetRGBA(x, y, c.RGBA())
}

// At returns the packed colour at (x, y).
func (img *Image) At(x, y int) fractal.Color {
	if img == nil || img.rgba == nil {
		return 0
	}
	return pack(img.rgba, x, y)
}

// Band returns a writable view of rows [rows.Start, rows.End). Bands built
// from disjoint ranges share no pixels and may be written concurrently.
func (img *Image) Band(rows workrange.Range) *Band {
	if img == nil || img.rgba == nil {
		return &Band{}
	}
	rect := image.Rect(0, rows.Start, img.Width(), rows.End).Intersect(img.rgba.Rect)
	sub, _ := img.rgba.SubImage(rect).(*image.RGBA)
	return &Band{
		rgba:   sub,
		rows:   workrange.Range{Start: rect.Min.Y, End: rect.Max.Y},
		width:  img.Width(),
		height: img.Height(),
	}
}

// EncodeJPEG writes the image as baseline JPEG to w.
func (img *Image) EncodeJPEG(w io.Writer, quality int) error {
	if img == nil || img.rgba == nil {
		return ErrReleased
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	if err := jpeg.Encode(w, img.rgba, &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("encode jpeg: %w", err)
	}
	return nil
}

// WriteJPEG persists the image at path. The file appears only once it has
// been encoded completely.
func (img *Image) WriteJPEG(path string, quality int) error {
	if img == nil || img.rgba == nil {
		return ErrReleased
	}
	if err := fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return img.EncodeJPEG(w, quality)
	}); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Release drops the pixel buffer. The image must not be used afterwards.
func (img *Image) Release() {
	if img == nil {
		return
	}
	img.rgba = nil
}

func pack(rgba *image.RGBA, x, y int) fractal.Color {
	if !(image.Point{X: x, Y: y}.In(rgba.Rect)) {
		return 0
	}
	c := rgba.RGBAAt(x, y)
	return fractal.Color(uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B))
}
