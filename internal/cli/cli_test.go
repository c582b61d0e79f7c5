package cli

import (
	"strings"
	"testing"

	"github.com/multibootusb/mbusb/internal/config"
	"github.com/multibootusb/mbusb/internal/device"
)

func resetCreateFlags() {
	createISODir = ""
	createDevice = ""
	createMountPoint = config.DefaultMountPoint
	createBootSizeMB = config.DefaultBootSizeMB
	createISOFormat = string(config.Ext4)
	createDryRun = true
	createNoDryRun = false
	createAutoConfirm = false
	createMenuTimeout = config.DefaultMenuTimeoutSec
}

func TestBuildCreateConfigDefaults(t *testing.T) {
	resetCreateFlags()
	createDevice = "/dev/sdb"

	cfg, err := buildCreateConfig()
	if err != nil {
		t.Fatalf("buildCreateConfig failed: %v", err)
	}

	if !cfg.DryRun {
		t.Error("Dry-run should be on by default")
	}
	if cfg.BootSizeMB != 256 {
		t.Errorf("Expected default boot size 256, got %d", cfg.BootSizeMB)
	}
	if cfg.ISOFormat != config.Ext4 {
		t.Errorf("Expected default format ext4, got %s", cfg.ISOFormat)
	}
	if cfg.MountPoint != "/mnt/usb" {
		t.Errorf("Expected default mount point /mnt/usb, got %s", cfg.MountPoint)
	}
}

func TestBuildCreateConfigNoDryRunWins(t *testing.T) {
	resetCreateFlags()
	createDevice = "/dev/sdb"
	createNoDryRun = true

	cfg, err := buildCreateConfig()
	if err != nil {
		t.Fatalf("buildCreateConfig failed: %v", err)
	}
	if cfg.DryRun {
		t.Error("--no-dry-run must disable dry-run mode")
	}
}

func TestBuildCreateConfigRejectsBadFormat(t *testing.T) {
	resetCreateFlags()
	createDevice = "/dev/sdb"
	createISOFormat = "ntfs"

	if _, err := buildCreateConfig(); err == nil {
		t.Fatal("Expected error for unsupported filesystem")
	}
}

func TestFormatDeviceOption(t *testing.T) {
	line := formatDeviceOption(device.BlockDevice{
		Path:      "/dev/sdb",
		SizeBytes: 16 * 1024 * 1024 * 1024,
		Removable: true,
	})

	if !strings.Contains(line, "/dev/sdb") {
		t.Errorf("Expected device path in option, got %q", line)
	}
	if !strings.Contains(line, "16 GiB") {
		t.Errorf("Expected humanized size in option, got %q", line)
	}
	if !strings.Contains(line, "(removable)") {
		t.Errorf("Expected removable marker, got %q", line)
	}

	fixed := formatDeviceOption(device.BlockDevice{Path: "/dev/sda", SizeBytes: 512110190592})
	if strings.Contains(fixed, "removable") {
		t.Errorf("Fixed disk must not carry removable marker, got %q", fixed)
	}
}
