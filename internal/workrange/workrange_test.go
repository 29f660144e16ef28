package workrange

import (
	"errors"
	"testing"
)

func TestSplitRowsRemainderOnLast(t *testing.T) {
	got, err := Split(100, 3)
	if err != nil {
		t.Fatalf("Split returned error: %v", err)
	}
	want := []Range{{0, 33}, {33, 66}, {66, 100}}
	if len(got) != len(want) {
		t.Fatalf("expected %d ranges, got %d (%v)", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("range %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestSplitFramesAcrossProcesses(t *testing.T) {
	got, err := Split(50, 8)
	if err != nil {
		t.Fatalf("Split returned error: %v", err)
	}
	if len(got) != 8 {
		t.Fatalf("expected 8 ranges, got %d", len(got))
	}
	for i := 0; i < 7; i++ {
		if got[i].Len() != 6 {
			t.Fatalf("range %d: expected 6 frames, got %d", i, got[i].Len())
		}
	}
	if got[7].Len() != 8 {
		t.Fatalf("last range: expected 8 frames, got %d", got[7].Len())
	}
	assertExactCover(t, got, 50)
}

func TestSplitCoverage(t *testing.T) {
	tests := []struct {
		total int
		parts int
	}{
		{1, 1},
		{7, 1},
		{7, 7},
		{1000, 20},
		{999, 20},
		{13, 4},
		{5, 3},
	}
	for _, tt := range tests {
		ranges, err := Split(tt.total, tt.parts)
		if err != nil {
			t.Fatalf("Split(%d,%d) returned error: %v", tt.total, tt.parts, err)
		}
		if len(ranges) != tt.parts {
			t.Fatalf("Split(%d,%d): expected %d ranges, got %d", tt.total, tt.parts, tt.parts, len(ranges))
		}
		assertExactCover(t, ranges, tt.total)
	}
}

func TestSplitClampsPartsToTotal(t *testing.T) {
	ranges, err := Split(3, 8)
	if err != nil {
		t.Fatalf("Split returned error: %v", err)
	}
	if len(ranges) != 3 {
		t.Fatalf("expected 3 ranges after clamping, got %d", len(ranges))
	}
	for i, r := range ranges {
		if r.Len() == 0 {
			t.Fatalf("range %d is empty", i)
		}
	}
	assertExactCover(t, ranges, 3)
}

func TestSplitZeroTotal(t *testing.T) {
	ranges, err := Split(0, 4)
	if err != nil {
		t.Fatalf("Split returned error: %v", err)
	}
	if len(ranges) != 0 {
		t.Fatalf("expected no ranges, got %v", ranges)
	}
}

func TestSplitRejectsInvalidInput(t *testing.T) {
	if _, err := Split(10, 0); !errors.Is(err, ErrInvalidParts) {
		t.Fatalf("expected ErrInvalidParts, got %v", err)
	}
	if _, err := Split(-1, 2); err == nil {
		t.Fatal("expected error for negative total")
	}
}

func TestRangeHelpers(t *testing.T) {
	r := Range{Start: 4, End: 9}
	if r.Len() != 5 {
		t.Fatalf("expected len 5, got %d", r.Len())
	}
	if r.String() != "[4,9)" {
		t.Fatalf("unexpected string %q", r.String())
	}
	if (Range{Start: 3, End: 3}).Len() != 0 || (Range{Start: 5, End: 2}).Len() != 0 {
		t.Fatal("expected empty range")
	}
}

func assertExactCover(t *testing.T, ranges []Range, total int) {
	t.Helper()
	next := 0
	for i, r := range ranges {
		if r.Start != next {
			t.Fatalf("range %d starts at %d, expected %d", i, r.Start, next)
		}
		next = r.End
	}
	if next != total {
		t.Fatalf("ranges end at %d, expected %d", next, total)
	}
}
