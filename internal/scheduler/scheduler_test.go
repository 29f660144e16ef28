package scheduler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"mandelmovie/internal/animation"
	"mandelmovie/internal/workrange"
)

func TestPlan(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		processes int
		want      []workrange.Range
	}{
		{"even", 50, 5, []workrange.Range{{Start: 0, End: 10}, {Start: 10, End: 20}, {Start: 20, End: 30}, {Start: 30, End: 40}, {Start: 40, End: 50}}},
		{"remainder on last", 50, 8, []workrange.Range{{Start: 0, End: 6}, {Start: 6, End: 12}, {Start: 12, End: 18}, {Start: 18, End: 24}, {Start: 24, End: 30}, {Start: 30, End: 36}, {Start: 36, End: 42}, {Start: 42, End: 50}}},
		{"single worker", 7, 1, []workrange.Range{{Start: 0, End: 7}}},
		{"more workers than frames", 3, 8, []workrange.Range{{Start: 0, End: 1}, {Start: 1, End: 2}, {Start: 2, End: 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Plan(tt.total, tt.processes)
			if err != nil {
				t.Fatalf("Plan: %v", err)
			}
			if len(plan) != len(tt.want) {
				t.Fatalf("got %d assignments, want %d", len(plan), len(tt.want))
			}
			for i, a := range plan {
				if a.Worker != i || a.Frames != tt.want[i] {
					t.Fatalf("assignment %d = %+v, want worker %d frames %v", i, a, i, tt.want[i])
				}
			}
		})
	}

	if _, err := Plan(10, 0); !errors.Is(err, workrange.ErrInvalidParts) {
		t.Fatalf("Plan with zero processes error = %v", err)
	}
}

// barrierLauncher only lets workers finish once every worker has started.
type barrierLauncher struct {
	mu       sync.Mutex
	started  []Assignment
	all      chan struct{}
	want     int
	fail     map[int]error
	startErr map[int]error
}

func newBarrierLauncher(want int) *barrierLauncher {
	return &barrierLauncher{all: make(chan struct{}), want: want, fail: map[int]error{}, startErr: map[int]error{}}
}

func (l *barrierLauncher) Start(_ context.Context, a Assignment) (Handle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.started = append(l.started, a)
	if len(l.started) == l.want {
		close(l.all)
	}
	if err := l.startErr[a.Worker]; err != nil {
		return nil, err
	}
	return &fakeHandle{pid: 1000 + a.Worker, all: l.all, err: l.fail[a.Worker]}, nil
}

type fakeHandle struct {
	pid int
	all chan struct{}
	err error
}

func (h *fakeHandle) PID() int { return h.pid }

func (h *fakeHandle) Wait() error {
	<-h.all
	return h.err
}

func TestRunStartsAllWorkersBeforeJoining(t *testing.T) {
	launcher := newBarrierLauncher(4)
	var hooked []int
	s := New(launcher, nil, WithResultHook(func(r WorkerResult) {
		hooked = append(hooked, r.Worker)
	}))

	done := make(chan struct{})
	var summary Summary
	var runErr error
	go func() {
		defer close(done)
		summary, runErr = s.Run(context.Background(), 20, 4)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return; workers were not all started up front")
	}
	if runErr != nil {
		t.Fatalf("Run: %v", runErr)
	}
	if len(summary.Workers) != 4 || !summary.OK() {
		t.Fatalf("unexpected summary %+v", summary)
	}
	for i, w := range summary.Workers {
		if w.Worker != i || w.PID != 1000+i || w.Frames.Len() != 5 {
			t.Fatalf("unexpected worker result %+v", w)
		}
	}
	if summary.FramesCompleted() != 20 {
		t.Fatalf("FramesCompleted = %d, want 20", summary.FramesCompleted())
	}
	if len(hooked) != 4 {
		t.Fatalf("result hook called %d times, want 4", len(hooked))
	}
}

func TestRunReportsFailuresWithoutStoppingOthers(t *testing.T) {
	launcher := newBarrierLauncher(3)
	launcher.fail[1] = errors.New("disk full")
	launcher.startErr[2] = errors.New("fork failed")

	summary, err := New(launcher, nil).Run(context.Background(), 9, 3)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	failed := summary.Failed()
	if len(failed) != 2 {
		t.Fatalf("expected 2 failed workers, got %+v", failed)
	}
	if failed[0].Worker != 1 || failed[1].Worker != 2 {
		t.Fatalf("unexpected failed workers %+v", failed)
	}
	if failed[1].ExitCode != -1 {
		t.Fatalf("launch failure exit code = %d, want -1", failed[1].ExitCode)
	}
	if summary.FramesCompleted() != 3 {
		t.Fatalf("FramesCompleted = %d, want 3", summary.FramesCompleted())
	}
}

func TestRunRejectsInvalidPlan(t *testing.T) {
	if _, err := New(newBarrierLauncher(1), nil).Run(context.Background(), 10, 0); err == nil {
		t.Fatal("expected error for zero processes")
	}
	if _, err := New(nil, nil).Run(context.Background(), 10, 1); err == nil {
		t.Fatal("expected error for nil launcher")
	}
}

func testSettings(t *testing.T, frames int) animation.Settings {
	t.Helper()
	return animation.Settings{
		BaseScale:     4,
		Width:         24,
		Height:        16,
		MaxIterations: 40,
		TotalFrames:   frames,
		Threads:       2,
		OutputPrefix:  filepath.Join(t.TempDir(), "zoom"),
	}
}

func TestInProcessLauncherRendersEveryFrame(t *testing.T) {
	settings := testSettings(t, 7)
	gen, err := animation.NewGenerator(settings, nil, nil)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}

	summary, err := New(&InProcessLauncher{Generator: gen}, nil).Run(context.Background(), settings.TotalFrames, 3)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !summary.OK() {
		t.Fatalf("unexpected failures %+v", summary.Failed())
	}
	for idx := 0; idx < settings.TotalFrames; idx++ {
		if _, err := os.Stat(animation.OutputPath(settings.OutputPrefix, idx)); err != nil {
			t.Fatalf("frame %d missing: %v", idx, err)
		}
	}
	if summary.Workers[0].PID != os.Getpid() {
		t.Fatalf("in-process worker pid = %d", summary.Workers[0].PID)
	}
}

func TestInProcessLauncherCancelled(t *testing.T) {
	settings := testSettings(t, 4)
	gen, err := animation.NewGenerator(settings, nil, nil)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := New(&InProcessLauncher{Generator: gen}, nil).Run(ctx, settings.TotalFrames, 2)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run error = %v, want context.Canceled", err)
	}
	if summary.OK() {
		t.Fatal("expected cancelled workers to be reported as failed")
	}
}

func setHelperCommand(t *testing.T, captured *[][]string, mu *sync.Mutex) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		mu.Lock()
		*captured = append(*captured, append([]string(nil), args...))
		mu.Unlock()
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "SCHEDULER_HELPER_WORKER="+args[1])
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
}

func TestProcessLauncherCollectsExitCodes(t *testing.T) {
	var (
		captured [][]string
		mu       sync.Mutex
	)
	setHelperCommand(t, &captured, &mu)

	launcher, err := NewProcessLauncher("/usr/bin/mandelmovie", func(a Assignment) []string {
		return []string{"--worker", strconv.Itoa(a.Worker), "--start", strconv.Itoa(a.Frames.Start), "--end", strconv.Itoa(a.Frames.End)}
	})
	if err != nil {
		t.Fatalf("NewProcessLauncher: %v", err)
	}

	summary, err := New(launcher, nil).Run(context.Background(), 6, 3)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(captured) != 3 {
		t.Fatalf("expected 3 launches, got %d", len(captured))
	}
	for _, w := range summary.Workers {
		want := 0
		if w.Worker == 1 {
			want = 1
		}
		if w.ExitCode != want {
			t.Fatalf("worker %d exit code = %d, want %d", w.Worker, w.ExitCode, want)
		}
		if w.PID <= 0 {
			t.Fatalf("worker %d has no pid", w.Worker)
		}
	}
	failed := summary.Failed()
	if len(failed) != 1 || failed[0].Worker != 1 {
		t.Fatalf("unexpected failures %+v", failed)
	}
}

func TestNewProcessLauncherDefaultsToSelf(t *testing.T) {
	launcher, err := NewProcessLauncher("", func(Assignment) []string { return nil })
	if err != nil {
		t.Fatalf("NewProcessLauncher: %v", err)
	}
	if launcher.Executable == "" {
		t.Fatal("expected executable to default to the running binary")
	}
	if _, err := NewProcessLauncher("x", nil); err == nil {
		t.Fatal("expected error for nil args builder")
	}
}

func TestExitCode(t *testing.T) {
	if exitCode(nil) != 0 {
		t.Fatal("nil error should map to 0")
	}
	if exitCode(fmt.Errorf("boom")) != -1 {
		t.Fatal("non-exit error should map to -1")
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	switch os.Getenv("SCHEDULER_HELPER_WORKER") {
	case "1":
		fmt.Fprintln(os.Stderr, "render failed")
		os.Exit(1)
	default:
		os.Exit(0)
	}
}
