package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/multibootusb/mbusb/internal/device"
	"github.com/multibootusb/mbusb/internal/executor"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List attached block devices",
	Long: `List the block devices attached to this machine with their sizes.

Useful for finding the right --device argument before running create.

Examples:
  mbusb list`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	// Listing is read-only, so the executor's mode does not matter.
	runner := executor.New(true, nil)

	devices, err := device.List(cmd.Context(), runner)
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		printWarning("No block devices detected")
		return nil
	}

	printInfo("Attached block devices:")
	for _, d := range devices {
		printInfo(fmt.Sprintf("  %s", formatDeviceOption(d)))
	}
	return nil
}
