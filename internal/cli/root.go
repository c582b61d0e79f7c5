package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/multibootusb/mbusb/internal/debug"
)

// Version information (set via ldflags by cmd/mbusb)
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global flags
var (
	globalNoColor bool
	globalQuiet   bool
	globalDebug   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mbusb",
	Short: "GRUB2 multiboot USB creator",
	Long: `mbusb builds bootable multiboot USB drives with GRUB2.

Use "mbusb create --iso-dir <dir>" to:
  1. Partition the target device (boot + data partitions)
  2. Install GRUB2 onto the boot partition
  3. Copy your ISO images onto the data partition
  4. Generate a boot menu for every ISO on the drive

All runs are dry-run previews by default; pass --no-dry-run to execute.
Re-running against an already provisioned drive only rescans the ISOs
and rewrites the boot menu.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		debug.SetDebug(globalDebug)
		debug.SetNoColor(globalNoColor)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVar(&globalNoColor, FlagNoColor, false, DescNoColor)
	rootCmd.PersistentFlags().BoolVarP(&globalQuiet, FlagQuiet, "q", false, DescQuiet)
	rootCmd.PersistentFlags().BoolVar(&globalDebug, FlagDebug, false, DescDebug)

	// Add subcommands
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(versionCmd)
}

// printError prints an error message to stderr
func printError(err error) {
	if globalQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}
