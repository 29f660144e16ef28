package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"mandelmovie/internal/animation"
	"mandelmovie/internal/logging"
)

var commandContext = exec.CommandContext

// workerStopGrace bounds how long a signalled worker may take to exit before
// it is killed.
const workerStopGrace = 5 * time.Second

// Handle is a started worker.
type Handle interface {
	PID() int
	Wait() error
}

// Launcher starts one worker for an assignment. Start must not block on the
// worker's completion.
type Launcher interface {
	Start(ctx context.Context, a Assignment) (Handle, error)
}

// ArgsFunc builds the command line of a worker process.
type ArgsFunc func(Assignment) []string

// ProcessLauncher runs each assignment in a child process of Executable.
// Children inherit stdout and stderr unless overridden.
type ProcessLauncher struct {
	Executable string
	Args       ArgsFunc
	Env        []string
	Stdout     io.Writer
	Stderr     io.Writer
}

// NewProcessLauncher returns a launcher for executable. When executable is
// empty the running binary is used.
func NewProcessLauncher(executable string, args ArgsFunc) (*ProcessLauncher, error) {
	if strings.TrimSpace(executable) == "" {
		self, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("resolve executable: %w", err)
		}
		executable = self
	}
	if args == nil {
		return nil, errors.New("process launcher: args builder is nil")
	}
	return &ProcessLauncher{Executable: executable, Args: args}, nil
}

// Start launches the worker process.
func (l *ProcessLauncher) Start(ctx context.Context, a Assignment) (Handle, error) {
	cmd := commandContext(ctx, l.Executable, l.Args(a)...) //nolint:gosec
	cmd.Stdout = l.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = l.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	if len(l.Env) > 0 {
		cmd.Env = append(cmd.Environ(), l.Env...)
	}
	cmd.Cancel = func() error {
		return cmd.Process.Signal(unix.SIGTERM)
	}
	cmd.WaitDelay = workerStopGrace

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("launch %s: %w", a, err)
	}
	return processHandle{cmd: cmd}, nil
}

type processHandle struct {
	cmd *exec.Cmd
}

func (h processHandle) PID() int {
	if h.cmd.Process == nil {
		return 0
	}
	return h.cmd.Process.Pid
}

func (h processHandle) Wait() error {
	return h.cmd.Wait()
}

// InProcessLauncher renders assignments on goroutines of the current process
// with a shared generator.
type InProcessLauncher struct {
	Generator *animation.Generator
}

// Start begins rendering a.Frames on a new goroutine.
func (l *InProcessLauncher) Start(ctx context.Context, a Assignment) (Handle, error) {
	if l.Generator == nil {
		return nil, errors.New("in-process launcher: generator is nil")
	}
	h := &goroutineHandle{done: make(chan struct{})}
	workerCtx := logging.WithWorker(ctx, a.Worker)
	go func() {
		defer close(h.done)
		defer func() {
			if r := recover(); r != nil {
				h.err = fmt.Errorf("worker %d panicked: %v", a.Worker, r)
			}
		}()
		_, h.err = animation.RunRange(workerCtx, l.Generator, a.Frames)
	}()
	return h, nil
}

type goroutineHandle struct {
	done chan struct{}
	err  error
}

func (h *goroutineHandle) PID() int { return os.Getpid() }

func (h *goroutineHandle) Wait() error {
	<-h.done
	return h.err
}
