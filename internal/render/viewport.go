package render

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidViewport reports an empty or non-finite viewport.
var ErrInvalidViewport = errors.New("invalid viewport")

// Viewport is the rectangle of the complex plane mapped onto a frame.
type Viewport struct {
	Xmin, Xmax float64
	Ymin, Ymax float64
}

// Centered returns the viewport of size xscale by yscale centred on (cx, cy).
func Centered(cx, cy, xscale, yscale float64) Viewport {
	return Viewport{
		Xmin: cx - xscale/2,
		Xmax: cx + xscale/2,
		Ymin: cy - yscale/2,
		Ymax: cy + yscale/2,
	}
}

// Validate rejects viewports with non-finite bounds or no area.
func (v Viewport) Validate() error {
	for _, f := range []float64{v.Xmin, v.Xmax, v.Ymin, v.Ymax} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: non-finite bound in %+v", ErrInvalidViewport, v)
		}
	}
	if v.Xmax <= v.Xmin {
		return fmt.Errorf("%w: xmax %g must exceed xmin %g", ErrInvalidViewport, v.Xmax, v.Xmin)
	}
	if v.Ymax <= v.Ymin {
		return fmt.Errorf("%w: ymax %g must exceed ymin %g", ErrInvalidViewport, v.Ymax, v.Ymin)
	}
	return nil
}

// Width returns the horizontal extent.
func (v Viewport) Width() float64 { return v.Xmax - v.Xmin }

// Height returns the vertical extent.
func (v Viewport) Height() float64 { return v.Ymax - v.Ymin }

// PointAt maps pixel (i, j) of a width x height frame onto the plane.
func (v Viewport) PointAt(i, j, width, height int) (float64, float64) {
	x := v.Xmin + float64(i)*(v.Xmax-v.Xmin)/float64(width)
	y := v.Ymin + float64(j)*(v.Ymax-v.Ymin)/float64(height)
	return x, y
}
