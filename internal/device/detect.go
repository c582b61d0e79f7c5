package device

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/multibootusb/mbusb/internal/debug"
	"github.com/multibootusb/mbusb/internal/executor"
)

// InstallState holds the facts detected about a device before
// provisioning. The zero value means "fresh device, no prior
// installation".
type InstallState struct {
	// HasPartitions reports whether the device already carries partitions.
	HasPartitions bool
	// PartitionCount is the number of partitions found.
	PartitionCount int
	// DataFilesystem is the filesystem type of the second partition, if any.
	DataFilesystem string
	// HasBootloader reports whether the first partition carries a GRUB
	// directory with a grub.cfg.
	HasBootloader bool
}

// DetectInstallation probes device for a prior installation by reading
// its partition table and mounting the presumed boot partition
// read-only. The probe is advisory: any failure along the way yields
// the zero state rather than an error, biasing toward a fresh setup.
func DetectInstallation(ctx context.Context, runner executor.Runner, devicePath string) InstallState {
	var state InstallState

	res := runner.Run(ctx, executor.Command{
		Program:  "lsblk",
		Args:     []string{"-J", "-b", "-o", "NAME,SIZE,TYPE,FSTYPE", devicePath},
		ReadOnly: true,
	})
	if !res.OK() {
		return state
	}

	var parsed lsblkOutput
	if err := json.Unmarshal([]byte(res.Output), &parsed); err != nil {
		return state
	}
	if len(parsed.BlockDevices) == 0 {
		return state
	}

	parts := parsed.BlockDevices[0].Children
	state.PartitionCount = len(parts)
	state.HasPartitions = len(parts) > 0
	if len(parts) >= 2 {
		state.DataFilesystem = parts[1].Fstype
	}
	if len(parts) == 0 {
		return state
	}

	state.HasBootloader = probeBootloader(ctx, runner, PartitionPath(devicePath, 1))
	debug.DebugValue("detected installation state", state)
	return state
}

// probeBootloader mounts the boot partition read-only at a scratch
// directory and looks for grub/grub.cfg. Mount failures mean "no
// bootloader".
func probeBootloader(ctx context.Context, runner executor.Runner, bootPartition string) bool {
	scratch, err := os.MkdirTemp("", "mbusb-probe-")
	if err != nil {
		return false
	}
	defer os.RemoveAll(scratch)

	res := runner.Run(ctx, executor.Command{
		Program:   "mount",
		Args:      []string{"-o", "ro", bootPartition, scratch},
		NeedsRoot: true,
	})
	if !res.OK() {
		return false
	}
	defer runner.Run(ctx, executor.Command{
		Program:   "umount",
		Args:      []string{scratch},
		NeedsRoot: true,
	})

	_, err = os.Stat(filepath.Join(scratch, "grub", "grub.cfg"))
	return err == nil
}
