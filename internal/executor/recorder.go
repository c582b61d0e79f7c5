package executor

import (
	"context"
	"strings"
)

// Recorder is a Runner for tests: it records every command instead of
// executing anything, returning scripted results where provided and
// synthetic success otherwise.
type Recorder struct {
	// Commands holds every command passed to Run, in order.
	Commands []Command
	// Results maps a program name to the result Run should return for it.
	// The Command field of the scripted result is filled in by Run.
	Results map[string]Result

	trace []string
}

// Run implements Runner.
func (r *Recorder) Run(ctx context.Context, cmd Command) Result {
	r.Commands = append(r.Commands, cmd)
	r.trace = append(r.trace, cmd.String())

	if res, ok := r.Results[cmd.Program]; ok {
		res.Command = cmd
		return res
	}
	return Result{Command: cmd}
}

// Trace implements Runner.
func (r *Recorder) Trace() []string {
	return r.trace
}

// Ran reports whether any recorded command line contains the given
// substring. Convenience for asserting on command sequences.
func (r *Recorder) Ran(substr string) bool {
	for _, line := range r.trace {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}
