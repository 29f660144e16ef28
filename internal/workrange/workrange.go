// Package workrange partitions a half-open index interval into contiguous
// ranges, one per worker.
//
// The same policy serves both parallel layers: rows of one frame are split
// across render goroutines and frame indices are split across worker
// processes. Every range except the last holds total/parts indices; the last
// range absorbs the remainder of the integer division.
package workrange

import (
	"errors"
	"fmt"
)

// ErrInvalidParts reports a non-positive worker count.
var ErrInvalidParts = errors.New("worker count must be positive")

// Range is the half-open interval [Start, End).
type Range struct {
	Start int
	End   int
}

// Len returns the number of indices in the range.
func (r Range) Len() int {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}

// Split partitions [0, total) into at most parts contiguous ranges.
//
// When parts exceeds total the count is clamped to total so that no range is
// empty. A total of zero yields no ranges.
func Split(total, parts int) ([]Range, error) {
	if parts < 1 {
		return nil, fmt.Errorf("split %d into %d: %w", total, parts, ErrInvalidParts)
	}
	if total < 0 {
		return nil, fmt.Errorf("split: negative total %d", total)
	}
	if total == 0 {
		return nil, nil
	}
	if parts > total {
		parts = total
	}

	size := total / parts
	ranges := make([]Range, parts)
	for i := range parts {
		start := i * size
		end := start + size
		if i == parts-1 {
			end = total
		}
		ranges[i] = Range{Start: start, End: end}
	}
	return ranges, nil
}
