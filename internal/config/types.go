// Package config defines the immutable run configuration assembled
// from CLI flags and interactive input.
package config

import "fmt"

// Filesystem is a supported data-partition filesystem type.
type Filesystem string

const (
	// Ext4 is the Linux-native default.
	Ext4 Filesystem = "ext4"
	// ExFAT is usable from Windows and macOS as well.
	ExFAT Filesystem = "exfat"
)

// Filesystems lists the supported data-partition filesystem types.
var Filesystems = []Filesystem{Ext4, ExFAT}

// ParseFilesystem validates and converts a filesystem name.
func ParseFilesystem(s string) (Filesystem, error) {
	for _, fs := range Filesystems {
		if s == string(fs) {
			return fs, nil
		}
	}
	return "", NewFieldError("iso-format", fmt.Sprintf("unsupported filesystem %q (supported: ext4, exfat)", s))
}

// RunConfig is the record of user choices for one run. It is
// constructed once by the CLI front-end and read-only afterwards;
// every component receives it explicitly instead of consulting
// ambient state.
type RunConfig struct {
	// ISODir is the source directory with ISO images. Optional: when
	// empty, the data partition is provisioned but left unpopulated.
	ISODir string
	// Device is the target block device path, e.g. /dev/sdb.
	Device string
	// MountPoint is the directory under which boot/ and iso/ mounts
	// are created.
	MountPoint string
	// BootSizeMB is the boot partition size in mebibytes.
	BootSizeMB int
	// ISOFormat is the data partition filesystem type. The boot
	// partition is always ext4.
	ISOFormat Filesystem
	// DryRun logs planned commands without executing them. On by default.
	DryRun bool
	// AutoConfirm skips the interactive confirmation prompt.
	AutoConfirm bool
	// MenuTimeoutSec is the GRUB menu timeout in seconds.
	MenuTimeoutSec int
}
