package scheduler

import (
	"fmt"

	"mandelmovie/internal/workrange"
)

// Assignment is the frame range given to one worker.
type Assignment struct {
	Worker int
	Frames workrange.Range
}

func (a Assignment) String() string {
	return fmt.Sprintf("worker %d frames %s", a.Worker, a.Frames)
}

// Plan splits [0, totalFrames) into contiguous ranges, one per worker. The
// last worker absorbs the remainder. When processes exceeds totalFrames only
// totalFrames workers are planned.
func Plan(totalFrames, processes int) ([]Assignment, error) {
	ranges, err := workrange.Split(totalFrames, processes)
	if err != nil {
		return nil, fmt.Errorf("plan workers: %w", err)
	}
	plan := make([]Assignment, len(ranges))
	for i, r := range ranges {
		plan[i] = Assignment{Worker: i, Frames: r}
	}
	return plan, nil
}
