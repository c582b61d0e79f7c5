package cli

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/multibootusb/mbusb/internal/app"
	"github.com/multibootusb/mbusb/internal/config"
	"github.com/multibootusb/mbusb/internal/device"
	"github.com/multibootusb/mbusb/internal/executor"
)

// createCmd represents the create command
var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create (or update) a multiboot USB drive",
	Long: `Partition and format the target device, install GRUB2, copy ISO
images and generate the boot menu.

Runs are dry-run previews by default. Against an already provisioned
drive only the ISO copy and menu rewrite are performed.

Examples:
  mbusb create --iso-dir ~/isos
  mbusb create --iso-dir ~/isos --device /dev/sdb --auto-confirm
  sudo mbusb create --iso-dir ~/isos --device /dev/sdb --auto-confirm --no-dry-run`,
	Args: cobra.NoArgs,
	RunE: runCreate,
}

// Create command flags
var (
	createISODir      string
	createDevice      string
	createMountPoint  string
	createBootSizeMB  int
	createISOFormat   string
	createDryRun      bool
	createNoDryRun    bool
	createAutoConfirm bool
	createMenuTimeout int
)

func init() {
	createCmd.Flags().StringVarP(&createISODir, FlagISODir, "i", "", DescISODir)
	createCmd.Flags().StringVarP(&createDevice, FlagDevice, "d", "", DescDevice)
	createCmd.Flags().StringVarP(&createMountPoint, FlagMountPoint, "m", config.DefaultMountPoint, DescMountPoint)
	createCmd.Flags().IntVar(&createBootSizeMB, FlagBootSize, config.DefaultBootSizeMB, DescBootSize)
	createCmd.Flags().StringVar(&createISOFormat, FlagISOFormat, string(config.Ext4), DescISOFormat)
	createCmd.Flags().BoolVar(&createDryRun, FlagDryRun, true, DescDryRun)
	createCmd.Flags().BoolVar(&createNoDryRun, FlagNoDryRun, false, DescNoDryRun)
	createCmd.Flags().BoolVar(&createAutoConfirm, FlagAutoConfirm, false, DescAutoConfirm)
	createCmd.Flags().IntVar(&createMenuTimeout, FlagMenuTimeout, config.DefaultMenuTimeoutSec, DescMenuTimeout)
}

// buildCreateConfig assembles the immutable run configuration from the
// create command's flag values.
func buildCreateConfig() (*config.RunConfig, error) {
	format, err := config.ParseFilesystem(createISOFormat)
	if err != nil {
		return nil, err
	}

	cfg := config.Default()
	cfg.ISODir = createISODir
	cfg.Device = createDevice
	cfg.MountPoint = createMountPoint
	cfg.BootSizeMB = createBootSizeMB
	cfg.ISOFormat = format
	cfg.DryRun = createDryRun && !createNoDryRun
	cfg.AutoConfirm = createAutoConfirm
	cfg.MenuTimeoutSec = createMenuTimeout
	return cfg, nil
}

func runCreate(cmd *cobra.Command, args []string) error {
	cfg, err := buildCreateConfig()
	if err != nil {
		return err
	}

	// Fail fast before touching anything, including the device listing.
	if !cfg.DryRun && os.Geteuid() != 0 {
		return fmt.Errorf("--%s requires root; re-run with sudo", FlagNoDryRun)
	}

	runner := executor.New(cfg.DryRun, printProgress)

	devices, err := device.List(cmd.Context(), runner)
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		return fmt.Errorf("no block devices detected")
	}

	if cfg.Device == "" {
		selected, err := promptSelectDevice(devices)
		if err != nil {
			return err
		}
		cfg.Device = selected
	}

	printSummary(cfg)

	if !cfg.AutoConfirm {
		target, ok := findDevice(devices, cfg.Device)
		if !ok {
			return fmt.Errorf("device not found: %s", cfg.Device)
		}
		confirmed, err := confirmWipe(target)
		if err != nil {
			return err
		}
		if !confirmed {
			printInfo("Aborted.")
			return nil
		}
	}

	result, err := app.Create(cmd.Context(), app.CreateOptions{
		Config: cfg,
		Runner: runner,
		Logf:   printInfo,
	})
	if err != nil {
		printErrorMsg(fmt.Sprintf("Create failed: %v", err))
		return err
	}

	printInfo("")
	if cfg.DryRun {
		printSuccess("Dry-run complete (no changes made)")
		printInfo(fmt.Sprintf("  Run with --%s to execute the %d commands above", FlagNoDryRun, len(result.Trace)))
	} else {
		printSuccess("Multiboot USB ready!")
		printInfo(fmt.Sprintf("  Boot from %s to use the GRUB menu", cfg.Device))
	}
	return nil
}

// printSummary shows the run parameters before anything happens.
func printSummary(cfg *config.RunConfig) {
	printHeader("GRUB2 Multiboot USB Creator")
	if cfg.ISODir != "" {
		printInfo(fmt.Sprintf("ISO directory: %s", cfg.ISODir))
	} else {
		printInfo("ISO directory: (none, data partition left empty)")
	}
	printInfo(fmt.Sprintf("Target device: %s", cfg.Device))
	printInfo(fmt.Sprintf("Mount point:   %s", cfg.MountPoint))
	printInfo(fmt.Sprintf("Boot size:     %s", humanize.IBytes(uint64(cfg.BootSizeMB)*1024*1024)))
	printInfo(fmt.Sprintf("ISO format:    %s", cfg.ISOFormat))
	printInfo(fmt.Sprintf("Dry-run mode:  %t", cfg.DryRun))
	printSeparator()
}

func findDevice(devices []device.BlockDevice, path string) (device.BlockDevice, bool) {
	for _, d := range devices {
		if d.Path == path {
			return d, true
		}
	}
	return device.BlockDevice{}, false
}
