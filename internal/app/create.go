// Package app implements the provisioning workflow behind the CLI
// front-end: validation, device inspection, partition planning and the
// stage pipeline.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/multibootusb/mbusb/internal/config"
	"github.com/multibootusb/mbusb/internal/debug"
	"github.com/multibootusb/mbusb/internal/device"
	"github.com/multibootusb/mbusb/internal/executor"
	"github.com/multibootusb/mbusb/internal/pipeline"
	"github.com/multibootusb/mbusb/internal/plan"
)

// CreateOptions carries everything Create needs.
type CreateOptions struct {
	// Config is the validated-on-entry run configuration.
	Config *config.RunConfig
	// Runner executes external commands. Defaults to a live executor
	// honoring Config.DryRun; tests substitute a recorder.
	Runner executor.Runner
	// Logf receives human-readable progress lines. May be nil.
	Logf func(msg string)
	// ValidateDevice checks that a path names a block device. Defaults
	// to device.Validate; tests substitute a stub since real block
	// devices cannot be assumed in automated runs.
	ValidateDevice func(path string) error
}

// CreateResult summarizes a completed run.
type CreateResult struct {
	// Device is the inspected target device.
	Device device.BlockDevice
	// Plan is the computed partition layout.
	Plan *plan.PartitionPlan
	// Detection is the pre-run installation probe result.
	Detection device.InstallState
	// Stages is the per-stage outcome log.
	Stages []pipeline.StageStatus
	// Trace holds every command line issued (or simulated), in order.
	Trace []string
}

// Create runs the full provisioning workflow. Validation and the
// privilege check happen before any command is issued, so a rejected
// run leaves the system untouched.
func Create(ctx context.Context, opts CreateOptions) (*CreateResult, error) {
	debug.DebugSection("create workflow")
	cfg := opts.Config

	if err := cfg.Validate(); err != nil {
		return nil, NewAppError(ValidationFailed, "configuration rejected", err)
	}

	// Destructive stages need root. sudo-prefixing individual commands
	// is not enough: mount points and the grub directory are written by
	// this process directly.
	if !cfg.DryRun && os.Geteuid() != 0 {
		return nil, NewAppError(PrivilegeRequired,
			"a live run requires root; re-run with sudo or keep --dry-run", nil)
	}

	runner := opts.Runner
	if runner == nil {
		runner = executor.New(cfg.DryRun, opts.Logf)
	}

	validateDevice := opts.ValidateDevice
	if validateDevice == nil {
		validateDevice = device.Validate
	}
	if err := validateDevice(cfg.Device); err != nil {
		return nil, NewAppError(DeviceInspectFailed, "target device validation failed", err)
	}

	target, err := lookupDevice(ctx, runner, cfg.Device)
	if err != nil {
		return nil, err
	}
	debug.DebugValue("target device", target)

	layout, err := plan.Plan(target.SizeBytes, cfg.BootSizeMB)
	if err != nil {
		return nil, NewAppError(PlanFailed, "partition planning failed", err)
	}

	// The probe mounts the boot partition, which a dry run must not do;
	// dry runs always preview the full fresh-install path.
	var detected device.InstallState
	if !cfg.DryRun {
		detected = device.DetectInstallation(ctx, runner, cfg.Device)
	}

	result, err := pipeline.New(cfg, layout, detected, runner, opts.Logf).Run(ctx)
	if err != nil {
		return nil, NewAppError(PipelineFailed, "provisioning aborted", err)
	}

	return &CreateResult{
		Device:    target,
		Plan:      layout,
		Detection: detected,
		Stages:    result.Stages,
		Trace:     runner.Trace(),
	}, nil
}

// lookupDevice finds the target in the lsblk listing to learn its size.
func lookupDevice(ctx context.Context, runner executor.Runner, path string) (device.BlockDevice, error) {
	devices, err := device.List(ctx, runner)
	if err != nil {
		return device.BlockDevice{}, NewAppError(DeviceInspectFailed, "device enumeration failed", err)
	}
	for _, d := range devices {
		if d.Path == path {
			return d, nil
		}
	}
	return device.BlockDevice{}, NewAppError(DeviceInspectFailed,
		fmt.Sprintf("device %s not present in system listing", path), nil)
}
