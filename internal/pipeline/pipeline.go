// Package pipeline runs the ordered provisioning stages against the
// target device: wipe, partition, format, mount, install bootloader,
// populate data, generate config, unmount. Each stage has an explicit
// skip predicate so that re-running against an already provisioned
// device only rescans ISOs and rewrites the menu.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/multibootusb/mbusb/internal/config"
	"github.com/multibootusb/mbusb/internal/device"
	"github.com/multibootusb/mbusb/internal/executor"
	"github.com/multibootusb/mbusb/internal/plan"
)

// Stage names one provisioning stage.
type Stage string

const (
	StageWipe              Stage = "wipe"
	StagePartition         Stage = "partition"
	StageFormat            Stage = "format"
	StageMount             Stage = "mount"
	StageInstallBootloader Stage = "install-bootloader"
	StagePopulateData      Stage = "populate-data"
	StageGenerateConfig    Stage = "generate-config"
	StageUnmount           Stage = "unmount"
)

// StageStatus records how one stage ended.
type StageStatus struct {
	// Stage is the stage name.
	Stage Stage
	// Skipped reports whether the stage's skip predicate fired.
	Skipped bool
	// Reason is the skip reason, empty for stages that ran.
	Reason string
}

// Result is the per-stage outcome log of one pipeline run.
type Result struct {
	// Stages holds one entry per stage that was considered, in order.
	Stages []StageStatus
}

// Skipped reports whether stage was skipped.
func (r *Result) Skipped(stage Stage) bool {
	for _, s := range r.Stages {
		if s.Stage == stage {
			return s.Skipped
		}
	}
	return false
}

// Ran reports whether stage ran to completion.
func (r *Result) Ran(stage Stage) bool {
	for _, s := range r.Stages {
		if s.Stage == stage {
			return !s.Skipped
		}
	}
	return false
}

// StageError reports a failed stage together with the command that
// failed and its captured output.
type StageError struct {
	// Stage is the failing stage.
	Stage Stage
	// Command is the failing command line, empty for in-process failures.
	Command string
	// Output is the captured command output.
	Output string
	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	msg := fmt.Sprintf("stage %s failed", e.Stage)
	if e.Command != "" {
		msg += fmt.Sprintf(": %s", e.Command)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	if e.Output != "" {
		msg += fmt.Sprintf("\n%s", e.Output)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *StageError) Unwrap() error {
	return e.Cause
}

// Pipeline executes the provisioning stages in order.
type Pipeline struct {
	cfg      *config.RunConfig
	layout   *plan.PartitionPlan
	detected device.InstallState
	runner   executor.Runner
	logf     func(msg string)

	bootPartition string
	dataPartition string
	bootMount     string
	isoMount      string

	// mounted holds mount points in mount order for reverse unmounting.
	mounted []string
}

// New creates a Pipeline. detected is the pre-run installation probe
// result (zero value for a fresh device or a dry run). logf receives
// human-readable progress lines and may be nil.
func New(cfg *config.RunConfig, layout *plan.PartitionPlan, detected device.InstallState, runner executor.Runner, logf func(string)) *Pipeline {
	return &Pipeline{
		cfg:           cfg,
		layout:        layout,
		detected:      detected,
		runner:        runner,
		logf:          logf,
		bootPartition: device.PartitionPath(cfg.Device, 1),
		dataPartition: device.PartitionPath(cfg.Device, 2),
		bootMount:     filepath.Join(cfg.MountPoint, "boot"),
		isoMount:      filepath.Join(cfg.MountPoint, "iso"),
	}
}

type stageStep struct {
	name Stage
	skip func() (bool, string)
	run  func(ctx context.Context) error
}

func neverSkip() (bool, string) {
	return false, ""
}

func (p *Pipeline) steps() []stageStep {
	return []stageStep{
		{StageWipe, p.skipWipe, p.runWipe},
		{StagePartition, p.skipPartition, p.runPartition},
		{StageFormat, p.skipFormat, p.runFormat},
		{StageMount, p.skipMount, p.runMount},
		{StageInstallBootloader, p.skipInstall, p.runInstall},
		{StagePopulateData, p.skipPopulate, p.runPopulate},
		{StageGenerateConfig, neverSkip, p.runGenerateConfig},
		{StageUnmount, p.skipUnmount, p.runUnmount},
	}
}

// Run executes every stage in order. The first failing stage aborts
// the rest; anything mounted by then is unmounted best-effort before
// the error is returned. Completed stages are never rolled back.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	result := &Result{}

	for _, step := range p.steps() {
		if skip, reason := step.skip(); skip {
			p.log(fmt.Sprintf("Skipping %s: %s", step.name, reason))
			result.Stages = append(result.Stages, StageStatus{Stage: step.name, Skipped: true, Reason: reason})
			continue
		}

		if err := step.run(ctx); err != nil {
			p.releaseMounts(ctx)
			return result, err
		}
		result.Stages = append(result.Stages, StageStatus{Stage: step.name})
	}

	return result, nil
}

// exec runs one root-requiring command and converts a failure into a
// StageError for stage.
func (p *Pipeline) exec(ctx context.Context, stage Stage, program string, args ...string) error {
	res := p.runner.Run(ctx, executor.Command{Program: program, Args: args, NeedsRoot: true})
	if !res.OK() {
		return &StageError{Stage: stage, Command: res.Command.String(), Output: res.Output, Cause: res.Err}
	}
	return nil
}

func (p *Pipeline) log(msg string) {
	if p.logf != nil {
		p.logf(msg)
	}
}

// releaseMounts unmounts everything mounted so far, best effort, in
// reverse mount order. Used on the abort path where the original
// failure must stay the reported one.
func (p *Pipeline) releaseMounts(ctx context.Context) {
	for i := len(p.mounted) - 1; i >= 0; i-- {
		p.runner.Run(ctx, executor.Command{
			Program:   "umount",
			Args:      []string{p.mounted[i]},
			NeedsRoot: true,
		})
	}
	p.mounted = nil
}

// settleDelay is how long to wait after partitioning for the kernel to
// create the partition device nodes.
var settleDelay = time.Second

func (p *Pipeline) liveMode() bool {
	return !p.cfg.DryRun
}
