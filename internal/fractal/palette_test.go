package fractal

import (
	"image/color"
	"testing"
)

func TestColorOfEndpoints(t *testing.T) {
	for _, maxIter := range []int{1, 7, 100, 1000, 100000} {
		if got := ColorOf(0, maxIter); got != 0 {
			t.Fatalf("ColorOf(0,%d) = %v, want 0", maxIter, got)
		}
		if got := ColorOf(maxIter, maxIter); got != PaletteConstant {
			t.Fatalf("ColorOf(%d,%d) = %v, want %v", maxIter, maxIter, got, PaletteConstant)
		}
	}
}

func TestColorOfMonotonic(t *testing.T) {
	const maxIter = 1000
	prev := ColorOf(0, maxIter)
	for i := 1; i <= maxIter; i++ {
		got := ColorOf(i, maxIter)
		if got < prev {
			t.Fatalf("ColorOf(%d) = %v decreased from %v", i, got, prev)
		}
		prev = got
	}
}

func TestColorOfLargeCapDoesNotOverflow(t *testing.T) {
	got := ColorOf(5000, 10000)
	want := PaletteConstant / 2
	if got != want {
		t.Fatalf("ColorOf(5000,10000) = %v, want %v", got, want)
	}
}

func TestColorOfDegenerateCap(t *testing.T) {
	if got := ColorOf(3, 0); got != 0 {
		t.Fatalf("expected 0 for zero cap, got %v", got)
	}
}

func TestLinearPaletteCustomBase(t *testing.T) {
	var m Mapper = LinearPalette{Base: 0xFF}
	if got := m.ColorOf(1, 2); got != 0x7F {
		t.Fatalf("expected 0x7F, got %v", got)
	}
}

func TestColorRGBA(t *testing.T) {
	got := PaletteConstant.RGBA()
	want := color.RGBA{R: 0xB4, G: 0xA7, B: 0xD6, A: 0xFF}
	if got != want {
		t.Fatalf("RGBA() = %+v, want %+v", got, want)
	}
	if PaletteConstant.String() != "#B4A7D6" {
		t.Fatalf("unexpected string %q", PaletteConstant.String())
	}
}
