package journal

import (
	"errors"
	"time"
)

// ErrNotFound reports a run id with no journal entry.
var ErrNotFound = errors.New("run not found")

// Status is the lifecycle state of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	// StatusPartial marks a run where at least one worker failed.
	StatusPartial   Status = "partial"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Run is one invocation of the render command.
type Run struct {
	ID            string
	Status        Status
	OutputPrefix  string
	CenterX       float64
	CenterY       float64
	Scale         float64
	Width         int
	Height        int
	MaxIterations int
	Frames        int
	Processes     int
	Threads       int
	Isolation     string
	FailedWorkers int
	ErrorMessage  string
	StartedAt     time.Time
	FinishedAt    time.Time
}

// Duration returns the wall time of a finished run, or zero.
func (r Run) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Worker is the recorded outcome of one worker of a run.
type Worker struct {
	RunID        string
	Worker       int
	StartFrame   int
	EndFrame     int
	PID          int
	ExitCode     int
	Duration     time.Duration
	ErrorMessage string
}
