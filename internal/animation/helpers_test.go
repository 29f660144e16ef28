package animation_test

import (
	"image"
	"image/color"
	"testing"

	"mandelmovie/internal/fractal"
	"mandelmovie/internal/testsupport"
)

// JPEG subsamples chroma, so decoded pixels are compared on luma only.
const lumaTolerance = 6

func readJPEG(path string) (image.Image, error) {
	return testsupport.ReadJPEG(path)
}

func assertNear(t *testing.T, got color.Color, want fractal.Color) {
	t.Helper()
	g := color.GrayModel.Convert(got).(color.Gray).Y
	w := color.GrayModel.Convert(want.RGBA()).(color.Gray).Y
	if d := int(g) - int(w); d < -lumaTolerance || d > lumaTolerance {
		t.Fatalf("pixel %v luma %d differs from %s luma %d", got, g, want, w)
	}
}
