package preflight

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"mandelmovie/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the checks that apply to cfg. executable is the binary
// worker processes will be launched from; it is only checked for process
// isolation.
func RunAll(cfg *config.Config, executable string) []Result {
	if cfg == nil {
		return nil
	}

	outputDir := cfg.OutputDir()
	results := []Result{
		CheckDirectoryAccess("Output directory", outputDir),
	}
	if results[0].Passed {
		need := EstimateOutputBytes(cfg.Render.Width, cfg.Render.Height, cfg.Render.Frames)
		results = append(results, CheckFreeSpace("Output free space", outputDir, need))
	}

	if cfg.Journal.Enabled {
		results = append(results, CheckDirectoryAccess("Journal directory", filepath.Dir(cfg.Journal.Path)))
	}

	if cfg.Parallel.Isolation == config.IsolationProcess && strings.TrimSpace(executable) != "" {
		results = append(results, CheckExecutable("Worker executable", executable))
	}

	return results
}

// Failures joins the details of every failed result into one error, or
// returns nil when all checks passed.
func Failures(results []Result) error {
	var errs []error
	for _, r := range results {
		if !r.Passed {
			errs = append(errs, fmt.Errorf("%s: %s", r.Name, r.Detail))
		}
	}
	return errors.Join(errs...)
}
