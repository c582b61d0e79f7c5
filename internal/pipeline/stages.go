package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/multibootusb/mbusb/internal/config"
	"github.com/multibootusb/mbusb/internal/menu"
)

// Wipe: destroy the existing partition table on the fresh-install path.

func (p *Pipeline) skipWipe() (bool, string) {
	if p.detected.HasBootloader {
		return true, "existing installation detected"
	}
	return false, ""
}

func (p *Pipeline) runWipe(ctx context.Context) error {
	p.log("Wiping device...")
	return p.exec(ctx, StageWipe, "wipefs", "-a", p.cfg.Device)
}

// Partition: MBR label, boot partition, bootable flag, data partition.

func (p *Pipeline) skipPartition() (bool, string) {
	if p.detected.HasBootloader && p.detected.PartitionCount >= 2 {
		return true, "existing partition layout detected"
	}
	return false, ""
}

func (p *Pipeline) runPartition(ctx context.Context) error {
	p.log("Creating partition layout...")
	p.log(fmt.Sprintf("  Partition 1 (boot): %d MiB", p.layout.BootSizeMiB()))
	p.log(fmt.Sprintf("  Partition 2 (ISOs): %d MiB", p.layout.DataSizeMiB()))

	dev := p.cfg.Device
	if err := p.exec(ctx, StagePartition, "parted", "-s", dev, "mklabel", "msdos"); err != nil {
		return err
	}
	if err := p.exec(ctx, StagePartition, "parted", "-s", dev, "mkpart", "primary", "ext4",
		p.layout.BootStartArg(), p.layout.BootEndArg()); err != nil {
		return err
	}
	if err := p.exec(ctx, StagePartition, "parted", "-s", dev, "set", "1", "boot", "on"); err != nil {
		return err
	}
	return p.exec(ctx, StagePartition, "parted", "-s", dev, "mkpart", "primary", string(p.cfg.ISOFormat),
		p.layout.BootEndArg(), p.layout.DataEndArg())
}

// Format: filesystems on both partitions.

func (p *Pipeline) skipFormat() (bool, string) {
	if p.detected.HasBootloader && p.detected.DataFilesystem == string(p.cfg.ISOFormat) {
		return true, fmt.Sprintf("filesystems already match (%s)", p.cfg.ISOFormat)
	}
	return false, ""
}

func (p *Pipeline) runFormat(ctx context.Context) error {
	p.log("Formatting partitions...")

	if p.liveMode() {
		// Partition device nodes appear asynchronously after parted.
		time.Sleep(settleDelay)
	}

	// With an installation in place only the data partition is redone;
	// reformatting the boot partition would discard the bootloader the
	// install stage is about to skip.
	if p.detected.HasBootloader {
		p.log(fmt.Sprintf("  %s kept (existing boot partition)", p.bootPartition))
	} else {
		p.log(fmt.Sprintf("  %s -> ext4 (BOOT)", p.bootPartition))
		if err := p.exec(ctx, StageFormat, "mkfs.ext4", "-F", "-L", "BOOT", p.bootPartition); err != nil {
			return err
		}
	}

	p.log(fmt.Sprintf("  %s -> %s (ISOs)", p.dataPartition, p.cfg.ISOFormat))
	if p.cfg.ISOFormat == config.ExFAT {
		return p.exec(ctx, StageFormat, "mkfs.exfat", "-n", "ISOs", p.dataPartition)
	}
	return p.exec(ctx, StageFormat, "mkfs.ext4", "-F", "-L", "ISOs", p.dataPartition)
}

// Mount: boot and data partitions under the configured mount point.

func (p *Pipeline) skipMount() (bool, string) {
	if !p.liveMode() {
		return false, ""
	}
	if p.isMounted(p.bootPartition, p.bootMount) && p.isMounted(p.dataPartition, p.isoMount) {
		// Record them so the unmount stage still releases them.
		p.mounted = []string{p.bootMount, p.isoMount}
		return true, "partitions already mounted"
	}
	return false, ""
}

func (p *Pipeline) runMount(ctx context.Context) error {
	p.log("Mounting partitions...")

	if p.liveMode() {
		for _, dir := range []string{p.cfg.MountPoint, p.bootMount, p.isoMount} {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return &StageError{Stage: StageMount, Cause: err}
			}
		}
	}

	p.log(fmt.Sprintf("  %s -> %s", p.bootPartition, p.bootMount))
	if err := p.exec(ctx, StageMount, "mount", p.bootPartition, p.bootMount); err != nil {
		return err
	}
	p.mounted = append(p.mounted, p.bootMount)

	p.log(fmt.Sprintf("  %s -> %s", p.dataPartition, p.isoMount))
	if err := p.exec(ctx, StageMount, "mount", p.dataPartition, p.isoMount); err != nil {
		return err
	}
	p.mounted = append(p.mounted, p.isoMount)
	return nil
}

// isMounted reports whether source is mounted at target according to
// /proc/self/mounts.
func (p *Pipeline) isMounted(source, target string) bool {
	data, err := os.ReadFile("/proc/self/mounts")
	if err != nil {
		return false
	}
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[0] == source && fields[1] == target {
			return true
		}
	}
	return false
}

// Install bootloader: grub-install onto the device's boot sector with
// support files on the mounted boot partition.

func (p *Pipeline) skipInstall() (bool, string) {
	if p.detected.HasBootloader {
		return true, "bootloader already present"
	}
	return false, ""
}

func (p *Pipeline) runInstall(ctx context.Context) error {
	p.log("Installing GRUB2...")

	if p.liveMode() {
		if err := os.MkdirAll(filepath.Join(p.bootMount, "grub"), 0755); err != nil {
			return &StageError{Stage: StageInstallBootloader, Cause: err}
		}
	}
	return p.exec(ctx, StageInstallBootloader, "grub-install",
		"--force", "--no-floppy", "--boot-directory="+p.bootMount, p.cfg.Device)
}

// Populate data: copy source ISOs onto the data partition.

func (p *Pipeline) skipPopulate() (bool, string) {
	if p.cfg.ISODir == "" {
		return true, "no ISO source directory provided"
	}
	return false, ""
}

func (p *Pipeline) runPopulate(ctx context.Context) error {
	p.log("Copying ISO files...")

	entries, err := menu.ScanISOs(p.cfg.ISODir)
	if err != nil {
		return &StageError{Stage: StagePopulateData, Cause: err}
	}
	if len(entries) == 0 {
		p.log("  No ISO files found in " + p.cfg.ISODir)
		return nil
	}

	isoDir := filepath.Join(p.isoMount, menu.IsoDirName)
	if p.liveMode() {
		if err := os.MkdirAll(isoDir, 0755); err != nil {
			return &StageError{Stage: StagePopulateData, Cause: err}
		}
	}

	for _, entry := range entries {
		p.log(fmt.Sprintf("  %-50s %s", entry.FileName, humanize.IBytes(uint64(entry.SizeBytes))))
		if !p.liveMode() {
			continue
		}
		src := filepath.Join(p.cfg.ISODir, entry.FileName)
		if err := copyFile(src, filepath.Join(isoDir, entry.FileName)); err != nil {
			return &StageError{Stage: StagePopulateData, Cause: err}
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}

// Generate config: rewrite grub.cfg from the ISO set actually on the
// data partition, so re-runs pick up ISOs added or removed since the
// last run. Never skipped.

func (p *Pipeline) runGenerateConfig(ctx context.Context) error {
	p.log("Writing GRUB configuration...")

	var entries []menu.Entry
	var err error
	if p.liveMode() {
		entries, err = menu.ScanISOs(filepath.Join(p.isoMount, menu.IsoDirName))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return &StageError{Stage: StageGenerateConfig, Cause: err}
		}
	} else if p.cfg.ISODir != "" {
		// The data partition is not mounted in a dry run; preview the
		// menu from the source directory instead.
		entries, err = menu.ScanISOs(p.cfg.ISODir)
		if err != nil {
			return &StageError{Stage: StageGenerateConfig, Cause: err}
		}
	}

	rendered, err := menu.Render(entries, p.cfg.MenuTimeoutSec)
	if err != nil {
		return &StageError{Stage: StageGenerateConfig, Cause: err}
	}

	cfgPath := filepath.Join(p.bootMount, "grub", "grub.cfg")
	p.log(fmt.Sprintf("  %s (%d boot entries)", cfgPath, len(entries)))
	if !p.liveMode() {
		return nil
	}
	if err := os.WriteFile(cfgPath, []byte(rendered), 0644); err != nil {
		return &StageError{Stage: StageGenerateConfig, Cause: err}
	}
	return nil
}

// Unmount: release both partitions in reverse mount order.

func (p *Pipeline) skipUnmount() (bool, string) {
	if len(p.mounted) == 0 {
		return true, "nothing mounted"
	}
	return false, ""
}

func (p *Pipeline) runUnmount(ctx context.Context) error {
	p.log("Unmounting...")

	for i := len(p.mounted) - 1; i >= 0; i-- {
		target := p.mounted[i]
		p.log("  " + target)
		if err := p.exec(ctx, StageUnmount, "umount", target); err != nil {
			p.mounted = p.mounted[:i+1]
			return err
		}
	}
	p.mounted = nil
	return nil
}
