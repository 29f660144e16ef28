// Package scheduler partitions an animation's frames across workers, launches
// every worker up front and waits for all of them.
//
// Workers are started through a Launcher. ProcessLauncher re-executes the
// current binary so every frame range renders in its own address space;
// InProcessLauncher runs ranges on goroutines of the calling process. Either
// way the scheduler never talks to a worker after launch: it only collects
// the exit status of each one and reports a Summary once the last worker is
// done.
package scheduler
