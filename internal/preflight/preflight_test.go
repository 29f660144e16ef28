package preflight

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mandelmovie/internal/config"
	"mandelmovie/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckExecutable(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "worker")
	if err := os.WriteFile(script, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	if r := CheckExecutable("exe", script); !r.Passed {
		t.Fatalf("expected executable to pass: %s", r.Detail)
	}

	plain := filepath.Join(dir, "plain")
	if err := os.WriteFile(plain, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if os.Geteuid() != 0 {
		if r := CheckExecutable("exe", plain); r.Passed {
			t.Fatal("expected non-executable file to fail")
		}
	}
	if r := CheckExecutable("exe", dir); r.Passed {
		t.Fatal("expected directory to fail")
	}
}

func TestCheckFreeSpace(t *testing.T) {
	dir := t.TempDir()
	if r := CheckFreeSpace("space", dir, 1); !r.Passed {
		t.Fatalf("expected one byte to fit: %s", r.Detail)
	}
	if r := CheckFreeSpace("space", dir, ^uint64(0)); r.Passed {
		t.Fatal("expected impossible requirement to fail")
	}
	if r := CheckFreeSpace("space", filepath.Join(dir, "missing"), 1); r.Passed {
		t.Fatal("expected missing path to fail")
	}
}

func TestEstimateOutputBytes(t *testing.T) {
	if got := EstimateOutputBytes(100, 50, 4); got != 20000 {
		t.Fatalf("EstimateOutputBytes = %d, want 20000", got)
	}
	if got := EstimateOutputBytes(0, 50, 4); got != 0 {
		t.Fatalf("EstimateOutputBytes with zero width = %d", got)
	}
	if got := EstimateOutputBytes(1<<40, 1<<40, 50); got != math.MaxUint64 {
		t.Fatalf("EstimateOutputBytes should saturate, got %d", got)
	}
	if got := EstimateOutputBytes(1<<31, 1<<31, 1<<10); got != math.MaxUint64 {
		t.Fatalf("EstimateOutputBytes should saturate on the frame product, got %d", got)
	}
	if r := CheckFreeSpace("output space", t.TempDir(), EstimateOutputBytes(1<<40, 1<<40, 50)); r.Passed {
		t.Fatalf("free-space check passed for a saturated estimate: %+v", r)
	}
}

func TestRunAllPassesForTestConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	exe, err := os.Executable()
	if err != nil {
		t.Fatal(err)
	}

	results := RunAll(cfg, exe)
	if err := Failures(results); err != nil {
		t.Fatalf("unexpected failures: %v", err)
	}
	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.Name)
	}
	joined := strings.Join(names, ",")
	for _, want := range []string{"Output directory", "Output free space", "Journal directory", "Worker executable"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("missing check %q in %v", want, names)
		}
	}
}

func TestRunAllSkipsOptionalChecks(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithJournalDisabled(),
		testsupport.WithIsolation(config.IsolationGoroutine),
	)
	results := RunAll(cfg, "/nonexistent")
	for _, r := range results {
		if r.Name == "Journal directory" || r.Name == "Worker executable" {
			t.Fatalf("unexpected check %q", r.Name)
		}
	}
}

func TestRunAllReportsMissingOutputDirectory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Render.OutputPrefix = filepath.Join(t.TempDir(), "gone", "mandel")

	err := Failures(RunAll(cfg, ""))
	if err == nil || !strings.Contains(err.Error(), "Output directory") {
		t.Fatalf("expected output directory failure, got %v", err)
	}
}

func TestRunAllNilConfig(t *testing.T) {
	if RunAll(nil, "") != nil {
		t.Fatal("expected nil results for nil config")
	}
}
