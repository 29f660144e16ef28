package fractal

import "testing"

func TestIterationsAtOriginNeverEscapes(t *testing.T) {
	for _, maxIter := range []int{0, 1, 10, 100, 1000} {
		if got := IterationsAt(0, 0, maxIter); got != maxIter {
			t.Fatalf("IterationsAt(0,0,%d) = %d, want %d", maxIter, got, maxIter)
		}
	}
}

func TestIterationsAtOutsideRadiusIsZero(t *testing.T) {
	points := [][2]float64{
		{2, 2},
		{-3, 0},
		{0, 2.0001},
		{1.5, -1.5},
		{-100, 50},
	}
	for _, p := range points {
		for _, maxIter := range []int{1, 50, 1000} {
			if got := IterationsAt(p[0], p[1], maxIter); got != 0 {
				t.Fatalf("IterationsAt(%v,%v,%d) = %d, want 0", p[0], p[1], maxIter, got)
			}
		}
	}
}

func TestIterationsAtZeroCap(t *testing.T) {
	if got := IterationsAt(-0.5, 0.1, 0); got != 0 {
		t.Fatalf("expected 0 for zero cap, got %d", got)
	}
}

func TestIterationsAtKnownPoints(t *testing.T) {
	tests := []struct {
		name    string
		x, y    float64
		maxIter int
		want    int
	}{
		// main cardioid and period-2 bulb members stay bounded
		{"cardioid", -0.1, 0.1, 500, 500},
		{"period two bulb", -1, 0, 500, 500},
		// c = 1: 1 -> 2 -> 5
		{"real axis escape", 1, 0, 100, 2},
		{"boundary of radius", 2, 0, 100, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IterationsAt(tt.x, tt.y, tt.maxIter); got != tt.want {
				t.Fatalf("IterationsAt(%v,%v,%d) = %d, want %d", tt.x, tt.y, tt.maxIter, got, tt.want)
			}
		})
	}
}

func TestIterationsAtWithinBounds(t *testing.T) {
	for i := -20; i <= 20; i++ {
		for j := -20; j <= 20; j++ {
			x := float64(i) / 10
			y := float64(j) / 10
			got := IterationsAt(x, y, 64)
			if got < 0 || got > 64 {
				t.Fatalf("IterationsAt(%v,%v,64) = %d out of range", x, y, got)
			}
		}
	}
}
