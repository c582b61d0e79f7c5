package device

import (
	"context"
	"testing"

	"github.com/multibootusb/mbusb/internal/executor"
)

func TestListParsesDisksInReportedOrder(t *testing.T) {
	rec := &executor.Recorder{
		Results: map[string]executor.Result{
			"lsblk": {Output: `{
				"blockdevices": [
					{"name": "sda", "size": 512110190592, "type": "disk", "rm": false},
					{"name": "sda1", "size": 536870912, "type": "part", "rm": false},
					{"name": "sdb", "size": 15931539456, "type": "disk", "rm": true},
					{"name": "sr0", "size": 1073741312, "type": "rom", "rm": true}
				]
			}`},
		},
	}

	devices, err := List(context.Background(), rec)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(devices) != 2 {
		t.Fatalf("Expected 2 disks, got %d", len(devices))
	}
	if devices[0].Path != "/dev/sda" {
		t.Errorf("Expected first disk /dev/sda, got %s", devices[0].Path)
	}
	if devices[1].Path != "/dev/sdb" {
		t.Errorf("Expected second disk /dev/sdb, got %s", devices[1].Path)
	}
	if devices[0].Removable {
		t.Error("sda should not be removable")
	}
	if !devices[1].Removable {
		t.Error("sdb should be removable")
	}
	if devices[1].SizeBytes != 15931539456 {
		t.Errorf("Expected sdb size 15931539456, got %d", devices[1].SizeBytes)
	}
}

func TestListHandlesOlderLsblkStringFields(t *testing.T) {
	// util-linux before 2.37 quotes sizes and emits rm as "0"/"1"
	rec := &executor.Recorder{
		Results: map[string]executor.Result{
			"lsblk": {Output: `{
				"blockdevices": [
					{"name": "sdb", "size": "15931539456", "type": "disk", "rm": "1"}
				]
			}`},
		},
	}

	devices, err := List(context.Background(), rec)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(devices) != 1 {
		t.Fatalf("Expected 1 disk, got %d", len(devices))
	}
	if devices[0].SizeBytes != 15931539456 {
		t.Errorf("Expected size 15931539456, got %d", devices[0].SizeBytes)
	}
	if !devices[0].Removable {
		t.Error("Expected removable flag set")
	}
}

func TestListFailure(t *testing.T) {
	rec := &executor.Recorder{
		Results: map[string]executor.Result{
			"lsblk": {ExitCode: 1, Output: "lsblk: error"},
		},
	}

	if _, err := List(context.Background(), rec); err == nil {
		t.Fatal("Expected error when lsblk fails")
	}
}

func TestPartitionPath(t *testing.T) {
	tests := []struct {
		device string
		n      int
		want   string
	}{
		{"/dev/sdb", 1, "/dev/sdb1"},
		{"/dev/sdb", 2, "/dev/sdb2"},
		{"/dev/nvme0n1", 1, "/dev/nvme0n1p1"},
		{"/dev/mmcblk0", 2, "/dev/mmcblk0p2"},
		{"/dev/loop0", 1, "/dev/loop0p1"},
	}

	for _, tt := range tests {
		if got := PartitionPath(tt.device, tt.n); got != tt.want {
			t.Errorf("PartitionPath(%q, %d) = %q, want %q", tt.device, tt.n, got, tt.want)
		}
	}
}

func TestValidateMissingDevice(t *testing.T) {
	err := Validate("/dev/mbusb-does-not-exist")
	if err == nil {
		t.Fatal("Expected error for missing device")
	}
	devErr, ok := err.(*DeviceError)
	if !ok {
		t.Fatalf("Expected *DeviceError, got %T", err)
	}
	if devErr.Type != DeviceNotFound {
		t.Errorf("Expected DeviceNotFound, got %v", devErr.Type)
	}
}

func TestValidateNotABlockDevice(t *testing.T) {
	err := Validate("/dev/null")
	if err == nil {
		t.Fatal("Expected error for character device")
	}
	devErr, ok := err.(*DeviceError)
	if !ok {
		t.Fatalf("Expected *DeviceError, got %T", err)
	}
	if devErr.Type != NotABlockDevice {
		t.Errorf("Expected NotABlockDevice, got %v", devErr.Type)
	}
}

func TestDetectInstallationFreshDevice(t *testing.T) {
	rec := &executor.Recorder{
		Results: map[string]executor.Result{
			"lsblk": {Output: `{
				"blockdevices": [
					{"name": "sdb", "size": 15931539456, "type": "disk", "rm": true}
				]
			}`},
		},
	}

	state := DetectInstallation(context.Background(), rec, "/dev/sdb")
	if state.HasPartitions {
		t.Error("Fresh device should have no partitions")
	}
	if state.HasBootloader {
		t.Error("Fresh device should have no bootloader")
	}
	if rec.Ran("mount") {
		t.Error("No mount should be attempted without partitions")
	}
}

func TestDetectInstallationPartitionsNoBootloader(t *testing.T) {
	// Mount of the boot partition fails: probe must degrade to
	// "no bootloader" instead of propagating the failure.
	rec := &executor.Recorder{
		Results: map[string]executor.Result{
			"lsblk": {Output: `{
				"blockdevices": [
					{"name": "sdb", "size": 15931539456, "type": "disk", "rm": true, "children": [
						{"name": "sdb1", "size": 268435456, "type": "part", "fstype": "ext4"},
						{"name": "sdb2", "size": 15662038528, "type": "part", "fstype": "exfat"}
					]}
				]
			}`},
			"mount": {ExitCode: 32, Output: "mount: wrong fs type"},
		},
	}

	state := DetectInstallation(context.Background(), rec, "/dev/sdb")
	if !state.HasPartitions || state.PartitionCount != 2 {
		t.Errorf("Expected 2 partitions, got %+v", state)
	}
	if state.DataFilesystem != "exfat" {
		t.Errorf("Expected data filesystem exfat, got %q", state.DataFilesystem)
	}
	if state.HasBootloader {
		t.Error("Failed mount must be treated as no bootloader")
	}
}

func TestDetectInstallationGarbledOutput(t *testing.T) {
	rec := &executor.Recorder{
		Results: map[string]executor.Result{
			"lsblk": {Output: "not json"},
		},
	}

	state := DetectInstallation(context.Background(), rec, "/dev/sdb")
	if state != (InstallState{}) {
		t.Errorf("Garbled lsblk output should yield zero state, got %+v", state)
	}
}
