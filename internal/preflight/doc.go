// Package preflight provides readiness checks for the filesystem paths and
// binary a render depends on.
//
// The render command calls RunAll before any worker starts. If a check
// fails, the run aborts so that no worker process is spawned for a doomed
// animation. Each check returns a Result instead of an error so that the CLI
// can print every problem at once.
package preflight
