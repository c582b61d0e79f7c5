package executor

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"

	"github.com/multibootusb/mbusb/internal/debug"
)

// ErrToolNotFound indicates the external program is not on PATH.
// Reported identically in dry-run and live mode so a dry-run is a
// faithful preview of what live execution would encounter.
var ErrToolNotFound = errors.New("command not found on PATH")

// Command describes one external program invocation.
type Command struct {
	// Program is the executable name, resolved via PATH.
	Program string
	// Args are the program arguments (without the program itself).
	Args []string
	// NeedsRoot marks commands that require elevated privileges.
	// When set and the current process is not root, the invocation
	// is prefixed with sudo.
	NeedsRoot bool
	// ReadOnly marks commands that only inspect system state.
	// Read-only commands execute even in dry-run mode.
	ReadOnly bool
}

// String returns the command as a single shell-style line.
func (c Command) String() string {
	return strings.Join(append([]string{c.Program}, c.Args...), " ")
}

// Result is the outcome of one command invocation.
type Result struct {
	// Command is the command this result belongs to.
	Command Command
	// ExitCode is the program's exit code (0 for dry-run simulations).
	ExitCode int
	// Output is the combined stdout/stderr text.
	Output string
	// Err is set when the program could not be started or exited non-zero.
	Err error
	// DryRun reports whether this result is a simulation.
	DryRun bool
}

// OK reports whether the command succeeded (or was simulated).
func (r Result) OK() bool {
	return r.Err == nil && r.ExitCode == 0
}

// Runner abstracts command execution so that the pipeline can be tested
// against a recording fake instead of real devices.
type Runner interface {
	// Run invokes (or simulates) one command and returns its result.
	Run(ctx context.Context, cmd Command) Result
	// Trace returns the shell-style lines of every command seen so far,
	// in invocation order.
	Trace() []string
}

// Exec is the live Runner. In dry-run mode it logs each command and
// returns a synthetic success without starting a process, except for
// read-only commands which always execute.
type Exec struct {
	dryRun bool
	echo   func(line string)
	trace  []string
}

// New creates an Exec. echo is called once per command with the full
// command line before execution; it may be nil.
func New(dryRun bool, echo func(line string)) *Exec {
	return &Exec{dryRun: dryRun, echo: echo}
}

// DryRun reports whether this executor is in dry-run mode.
func (e *Exec) DryRun() bool {
	return e.dryRun
}

// Run implements Runner.
func (e *Exec) Run(ctx context.Context, cmd Command) Result {
	program := cmd.Program
	args := cmd.Args
	if cmd.NeedsRoot && os.Geteuid() != 0 {
		args = append([]string{program}, args...)
		program = "sudo"
	}

	line := strings.Join(append([]string{program}, args...), " ")
	e.trace = append(e.trace, line)
	if e.echo != nil {
		e.echo(line)
	}

	// The tool itself must exist on PATH even for a simulation, so that
	// a dry-run surfaces missing tools before any live attempt. The
	// check targets the original program, not the sudo wrapper it may
	// have been prefixed with.
	if _, err := exec.LookPath(cmd.Program); err != nil {
		return Result{
			Command:  cmd,
			ExitCode: -1,
			Err:      ErrToolNotFound,
			DryRun:   e.dryRun && !cmd.ReadOnly,
		}
	}

	if e.dryRun && !cmd.ReadOnly {
		debug.Debug("dry-run: skipped %q", line)
		return Result{Command: cmd, DryRun: true}
	}

	out, err := exec.CommandContext(ctx, program, args...).CombinedOutput()
	res := Result{Command: cmd, Output: string(out)}
	if err != nil {
		res.Err = err
		res.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		}
	}
	debug.DebugValue("exit "+cmd.Program, res.ExitCode)
	return res
}

// Trace implements Runner.
func (e *Exec) Trace() []string {
	return e.trace
}
