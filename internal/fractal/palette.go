package fractal

import (
	"fmt"
	"image/color"
	"math"
)

// PaletteConstant is the packed RGB value reached at the iteration cap.
const PaletteConstant Color = 0xB4A7D6

// Color is a 24-bit RGB value packed as 0xRRGGBB.
type Color uint32

// RGBA unpacks the colour into an opaque color.RGBA.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{
		R: uint8(c >> 16 & 0xFF),
		G: uint8(c >> 8 & 0xFF),
		B: uint8(c & 0xFF),
		A: 0xFF,
	}
}

func (c Color) String() string {
	return fmt.Sprintf("#%06X", uint32(c)&0xFFFFFF)
}

// Mapper converts an iteration count into a pixel colour.
type Mapper interface {
	ColorOf(iterations, maxIter int) Color
}

// LinearPalette scales Base linearly by iterations/maxIter.
type LinearPalette struct {
	Base Color
}

// DefaultMapper returns the linear palette anchored at PaletteConstant.
func DefaultMapper() Mapper {
	return LinearPalette{Base: PaletteConstant}
}

// ColorOf returns floor(Base * iterations / maxIter). The product is formed
// in float64 so large caps cannot overflow.
func (p LinearPalette) ColorOf(iterations, maxIter int) Color {
	if maxIter <= 0 || iterations <= 0 {
		return 0
	}
	if iterations > maxIter {
		iterations = maxIter
	}
	return Color(math.Floor(float64(p.Base) * float64(iterations) / float64(maxIter)))
}

// ColorOf maps iterations with the default palette.
func ColorOf(iterations, maxIter int) Color {
	return LinearPalette{Base: PaletteConstant}.ColorOf(iterations, maxIter)
}
