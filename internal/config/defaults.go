package config

// Defaults for RunConfig fields.
const (
	// DefaultMountPoint is where partitions are mounted during a run.
	DefaultMountPoint = "/mnt/usb"
	// DefaultBootSizeMB leaves room for GRUB plus a few themes.
	DefaultBootSizeMB = 256
	// DefaultMenuTimeoutSec is the GRUB menu countdown.
	DefaultMenuTimeoutSec = 10
)

// Default returns a RunConfig with all defaults applied. Dry-run is on
// by default: destroying a device must be asked for explicitly.
func Default() *RunConfig {
	return &RunConfig{
		MountPoint:     DefaultMountPoint,
		BootSizeMB:     DefaultBootSizeMB,
		ISOFormat:      Ext4,
		DryRun:         true,
		MenuTimeoutSec: DefaultMenuTimeoutSec,
	}
}
