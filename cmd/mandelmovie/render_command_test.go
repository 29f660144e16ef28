package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"mandelmovie/internal/animation"
	"mandelmovie/internal/config"
	"mandelmovie/internal/journal"
	"mandelmovie/internal/outputlock"
	"mandelmovie/internal/scheduler"
	"mandelmovie/internal/testsupport"
	"mandelmovie/internal/workrange"
)

func latestRun(t *testing.T, env *cliTestEnv) (journal.Run, []journal.Worker) {
	t.Helper()
	store, err := journal.Open(env.journalPath)
	if err != nil {
		t.Fatalf("journal.Open: %v", err)
	}
	defer store.Close()
	runs, err := store.ListRuns(context.Background(), 1)
	if err != nil || len(runs) != 1 {
		t.Fatalf("ListRuns: %v (%d runs)", err, len(runs))
	}
	workers, err := store.Workers(context.Background(), runs[0].ID)
	if err != nil {
		t.Fatalf("Workers: %v", err)
	}
	return runs[0], workers
}

func TestRenderGoroutineIsolation(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "render", "-n", "5", "-c", "2", "-t", "3", "--isolation", "goroutine")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"All images generated!", "ffmpeg -i " + env.prefix + "%02d.jpg -r 50 -q:v 5 " + env.prefix + ".mpg", "5 of 5 frames"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	testsupport.AssertFrames(t, env.prefix, 5)
	testsupport.AssertNoFrame(t, env.prefix, 5)

	run, workers := latestRun(t, env)
	if run.Status != journal.StatusCompleted || run.Frames != 5 || run.Isolation != config.IsolationGoroutine {
		t.Fatalf("unexpected journal run %+v", run)
	}
	if len(workers) != 2 || workers[1].StartFrame != 2 || workers[1].EndFrame != 5 {
		t.Fatalf("unexpected journal workers %+v", workers)
	}
}

func TestRenderWritesFrameLinesToLogFile(t *testing.T) {
	env := setupCLITestEnv(t)
	logPath := filepath.Join(env.baseDir, "logs", "render.log")

	if _, _, err := runCLI(t, env, "--log-level", "info", "--log-file", logPath, "render", "-n", "3", "-c", "1", "--isolation", "goroutine"); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if got := strings.Count(string(data), "frame rendered"); got != 3 {
		t.Fatalf("expected 3 frame lines, got %d:\n%s", got, data)
	}
}

func TestRenderProcessIsolation(t *testing.T) {
	env := setupCLITestEnv(t)
	useWorkerSubprocess(t)

	out, _, err := runCLI(t, env, "render", "--center-x=-0.5", "-s", "3")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "All images generated!") {
		t.Fatalf("expected completion line:\n%s", out)
	}
	testsupport.AssertFrames(t, env.prefix, 4)

	run, workers := latestRun(t, env)
	if run.Status != journal.StatusCompleted || run.CenterX != -0.5 || run.Scale != 3 {
		t.Fatalf("unexpected journal run %+v", run)
	}
	if len(workers) != 2 {
		t.Fatalf("expected 2 workers, got %+v", workers)
	}
	for _, w := range workers {
		if w.PID <= 0 || w.PID == os.Getpid() || w.ExitCode != 0 {
			t.Fatalf("worker %d did not run in a separate process: %+v", w.Worker, w)
		}
	}
}

func TestRenderReportsFailedWorker(t *testing.T) {
	env := setupCLITestEnv(t)
	useWorkerSubprocess(t)

	if err := os.MkdirAll(animation.OutputPath(env.prefix, 2), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	out, _, err := runCLI(t, env, "render")
	if err != nil {
		t.Fatalf("render should tolerate worker failures by default: %v", err)
	}
	if !strings.Contains(out, "1 of 2 workers failed") {
		t.Fatalf("expected failure summary:\n%s", out)
	}
	if strings.Contains(out, "All images generated!") {
		t.Fatalf("completion line printed despite failure:\n%s", out)
	}
	testsupport.AssertFrames(t, env.prefix, 2)
	testsupport.AssertNoFrame(t, env.prefix, 3)

	run, workers := latestRun(t, env)
	if run.Status != journal.StatusPartial || run.FailedWorkers != 1 {
		t.Fatalf("unexpected journal run %+v", run)
	}
	if workers[1].ExitCode != 1 {
		t.Fatalf("worker 1 exit code = %d, want 1", workers[1].ExitCode)
	}

	if _, _, err := runCLI(t, env, "render", "--fail-on-worker-error"); err == nil {
		t.Fatal("expected error with --fail-on-worker-error")
	}
}

func TestRenderRejectsThreadCount(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, env, "render", "-t", "21", "--isolation", "goroutine")
	if err == nil || !strings.Contains(err.Error(), "between 1 and 20") {
		t.Fatalf("expected thread range error, got %v", err)
	}
	testsupport.AssertNoFrame(t, env.prefix, 0)
}

func TestRenderRejectsOversizedFrame(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, env, "render", "-W", "1048576", "-H", "1048576", "--isolation", "goroutine")
	if err == nil || !strings.Contains(err.Error(), "must not exceed") {
		t.Fatalf("expected frame size error, got %v", err)
	}
	testsupport.AssertNoFrame(t, env.prefix, 0)
}

func TestRenderRefusesLockedPrefix(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.MkdirAll(env.baseDir+"/out", 0o755); err != nil {
		t.Fatal(err)
	}
	lock, err := outputlock.Acquire(env.prefix)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer lock.Release()

	_, _, err = runCLI(t, env, "render", "--isolation", "goroutine")
	if !errors.Is(err, outputlock.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	testsupport.AssertNoFrame(t, env.prefix, 0)
}

func TestGeometryArgsRoundTrip(t *testing.T) {
	cfg := config.Default()
	cfg.Render.CenterX = -0.743643887037151
	cfg.Render.CenterY = 0.131825904205330
	cfg.Render.Scale = 1e-7
	cfg.Render.Width = 640
	cfg.Render.Height = 480
	cfg.Render.MaxIterations = 4000
	cfg.Render.Frames = 120
	cfg.Render.OutputPrefix = "/tmp/frames/zoom"
	cfg.Render.JPEGQuality = 75
	cfg.Parallel.Threads = 7

	var flags renderFlags
	fs := pflag.NewFlagSet("worker", pflag.ContinueOnError)
	flags.bindGeometry(fs)
	if err := fs.Parse(geometryArgs(&cfg)); err != nil {
		t.Fatalf("parse: %v", err)
	}

	got := config.Default()
	flags.apply(fs, &got)
	if got.Render != cfg.Render {
		t.Fatalf("render settings differ:\n got %+v\nwant %+v", got.Render, cfg.Render)
	}
	if got.Parallel.Threads != 7 {
		t.Fatalf("threads = %d, want 7", got.Parallel.Threads)
	}
}

func TestWorkerArgs(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.File = "/tmp/mandelmovie.log"
	args := workerArgs(&cfg, "run-123")(scheduler.Assignment{Worker: 3, Frames: workrange.Range{Start: 12, End: 18}})

	if args[0] != "worker" {
		t.Fatalf("first arg = %q, want worker subcommand", args[0])
	}
	joined := strings.Join(args, " ")
	for _, want := range []string{"--worker=3", "--start=12", "--end=18", "--run-id=run-123", "--frames=50", "--log-level=info", "--log-file=/tmp/mandelmovie.log"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("missing %q in %v", want, args)
		}
	}
}

func TestWorkerCommandRendersRange(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.MkdirAll(env.baseDir+"/out", 0o755); err != nil {
		t.Fatal(err)
	}

	_, _, err := runCLI(t, env, "worker", "--start=1", "--end=3", "--frames=4", "--width=16", "--height=16", "--output="+env.prefix)
	if err != nil {
		t.Fatalf("worker: %v", err)
	}
	testsupport.AssertNoFrame(t, env.prefix, 0)
	testsupport.AssertNoFrame(t, env.prefix, 3)
	for _, idx := range []int{1, 2} {
		if _, err := os.Stat(animation.OutputPath(env.prefix, idx)); err != nil {
			t.Fatalf("frame %d: %v", idx, err)
		}
	}
}

func TestRunStatus(t *testing.T) {
	ok := scheduler.Summary{Workers: []scheduler.WorkerResult{{Worker: 0}, {Worker: 1}}}
	if status, _ := runStatus(ok, nil); status != journal.StatusCompleted {
		t.Fatalf("status = %q, want completed", status)
	}
	partial := scheduler.Summary{Workers: []scheduler.WorkerResult{{Worker: 0}, {Worker: 1, ExitCode: 1}}}
	if status, _ := runStatus(partial, nil); status != journal.StatusPartial {
		t.Fatalf("status = %q, want partial", status)
	}
	allFailed := scheduler.Summary{Workers: []scheduler.WorkerResult{{Worker: 0, ExitCode: 2}}}
	if status, _ := runStatus(allFailed, nil); status != journal.StatusFailed {
		t.Fatalf("status = %q, want failed", status)
	}
	if status, _ := runStatus(ok, context.Canceled); status != journal.StatusCancelled {
		t.Fatalf("status = %q, want cancelled", status)
	}
}

func TestFFmpegHint(t *testing.T) {
	if got := ffmpegHint("mandel"); got != "ffmpeg -i mandel%02d.jpg -r 50 -q:v 5 mandel.mpg" {
		t.Fatalf("unexpected hint %q", got)
	}
}
