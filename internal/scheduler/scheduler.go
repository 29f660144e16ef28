package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"mandelmovie/internal/logging"
	"mandelmovie/internal/workrange"
)

// WorkerResult is the outcome of one worker.
type WorkerResult struct {
	Worker   int
	Frames   workrange.Range
	PID      int
	ExitCode int
	Err      error
	Duration time.Duration
}

// Failed reports whether the worker did not complete its range.
func (r WorkerResult) Failed() bool {
	return r.Err != nil || r.ExitCode != 0
}

// Summary collects every worker result of one run, ordered by worker.
type Summary struct {
	Workers  []WorkerResult
	Duration time.Duration
}

// Failed returns the results of workers that did not finish cleanly.
func (s Summary) Failed() []WorkerResult {
	var failed []WorkerResult
	for _, w := range s.Workers {
		if w.Failed() {
			failed = append(failed, w)
		}
	}
	return failed
}

// OK reports whether every worker succeeded.
func (s Summary) OK() bool {
	return len(s.Failed()) == 0
}

// FramesCompleted counts the frames assigned to successful workers.
func (s Summary) FramesCompleted() int {
	total := 0
	for _, w := range s.Workers {
		if !w.Failed() {
			total += w.Frames.Len()
		}
	}
	return total
}

// Option customizes a Scheduler.
type Option func(*Scheduler)

// WithResultHook registers fn to be called once per worker as it exits.
// Calls are serialized.
func WithResultHook(fn func(WorkerResult)) Option {
	return func(s *Scheduler) {
		s.onResult = fn
	}
}

// Scheduler fans frame ranges out to workers and joins them.
type Scheduler struct {
	launcher Launcher
	logger   *slog.Logger
	onResult func(WorkerResult)
}

// New returns a scheduler that starts workers with launcher.
func New(launcher Launcher, logger *slog.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		launcher: launcher,
		logger:   logging.NewComponentLogger(logger, "scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run plans totalFrames over processes workers, starts all of them and
// blocks until every one has exited. Worker failures are reported in the
// Summary; they do not stop the other workers. The returned error is non-nil
// only when planning fails or ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context, totalFrames, processes int) (Summary, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if s.launcher == nil {
		return Summary{}, errors.New("scheduler: launcher is nil")
	}
	plan, err := Plan(totalFrames, processes)
	if err != nil {
		return Summary{}, err
	}
	logger := logging.WithContext(ctx, s.logger)
	logger.Info("launching workers",
		logging.Int("workers", len(plan)),
		logging.Int("frames", totalFrames),
	)

	start := time.Now()
	results := make(chan WorkerResult, len(plan))
	for _, a := range plan {
		launched := time.Now()
		handle, err := s.launcher.Start(ctx, a)
		if err != nil {
			results <- WorkerResult{Worker: a.Worker, Frames: a.Frames, ExitCode: -1, Err: err}
			continue
		}
		logger.Debug("worker started",
			logging.Int(logging.FieldWorker, a.Worker),
			logging.String("frames", a.Frames.String()),
			logging.Int("pid", handle.PID()),
		)
		go func() {
			waitErr := handle.Wait()
			results <- WorkerResult{
				Worker:   a.Worker,
				Frames:   a.Frames,
				PID:      handle.PID(),
				ExitCode: exitCode(waitErr),
				Err:      waitErr,
				Duration: time.Since(launched),
			}
		}()
	}

	summary := Summary{Workers: make([]WorkerResult, len(plan))}
	for range plan {
		res := <-results
		summary.Workers[res.Worker] = res
		s.report(logger, res)
		if s.onResult != nil {
			s.onResult(res)
		}
	}
	summary.Duration = time.Since(start)

	if err := ctx.Err(); err != nil {
		return summary, fmt.Errorf("render interrupted: %w", err)
	}
	return summary, nil
}

func (s *Scheduler) report(logger *slog.Logger, res WorkerResult) {
	if !res.Failed() {
		logger.Info("worker finished",
			logging.Int(logging.FieldWorker, res.Worker),
			logging.String("frames", res.Frames.String()),
			logging.Duration("duration", res.Duration),
		)
		return
	}
	attrs := []logging.Attr{
		logging.Int(logging.FieldWorker, res.Worker),
		logging.String("frames", res.Frames.String()),
		logging.Int("exit_code", res.ExitCode),
		logging.String(logging.FieldImpact, fmt.Sprintf("frames %s may be missing", res.Frames)),
		logging.String(logging.FieldErrorHint, "rerun with --processes 1 to see the failing frame"),
	}
	if res.Err != nil {
		attrs = append(attrs, logging.Error(res.Err))
	}
	logging.WarnWithContext(logger, "worker failed", "worker_failed", attrs...)
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code >= 0 {
			return code
		}
	}
	return -1
}
