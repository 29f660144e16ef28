package raster

import (
	"image"

	"mandelmovie/internal/fractal"
	"mandelmovie/internal/workrange"
)

// Band is the slice of rows owned by one render worker. Coordinates are
// expressed in full-frame pixels.
type Band struct {
	rgba   *image.RGBA
	rows   workrange.Range
	width  int
	height int
}

// Rows returns the frame rows covered by the band.
func (b *Band) Rows() workrange.Range { return b.rows }

// FrameWidth returns the width of the frame the band belongs to.
func (b *Band) FrameWidth() int { return b.width }

// FrameHeight returns the height of the frame the band belongs to.
func (b *Band) FrameHeight() int { return b.height }

// Set writes c at (x, y). Pixels outside the band are ignored.
func (b *Band) Set(x, y int, c fractal.Color) {
	if b == nil || b.rgba == nil {
		return
	}
	b.rgba.SetRGBA(x, y, c.RGBA())
}
