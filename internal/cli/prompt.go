package cli

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/dustin/go-humanize"

	"github.com/multibootusb/mbusb/internal/device"
)

// promptSelectDevice interactively picks a target from the attached
// block devices.
func promptSelectDevice(devices []device.BlockDevice) (string, error) {
	options := make([]string, 0, len(devices))
	for _, d := range devices {
		options = append(options, formatDeviceOption(d))
	}

	var choice string
	prompt := &survey.Select{
		Message: "Select target device:",
		Options: options,
		Help:    "Every partition and file on the selected device will be destroyed",
	}
	if err := survey.AskOne(prompt, &choice); err != nil {
		return "", err
	}
	for i, opt := range options {
		if opt == choice {
			return devices[i].Path, nil
		}
	}
	return "", fmt.Errorf("no device selected")
}

// formatDeviceOption renders one picker line for a device.
func formatDeviceOption(d device.BlockDevice) string {
	line := fmt.Sprintf("%-14s %9s", d.Path, humanize.IBytes(d.SizeBytes))
	if d.Removable {
		line += "  (removable)"
	}
	return line
}

// confirmWipe asks the operator to type the literal word "yes" before
// a destructive run proceeds.
func confirmWipe(target device.BlockDevice) (bool, error) {
	printWarning(fmt.Sprintf("This will erase all data on %s (%s)",
		target.Path, humanize.IBytes(target.SizeBytes)))

	var answer string
	prompt := &survey.Input{
		Message: "Continue? Type 'yes' to proceed:",
	}
	if err := survey.AskOne(prompt, &answer); err != nil {
		return false, err
	}
	return strings.EqualFold(strings.TrimSpace(answer), "yes"), nil
}
