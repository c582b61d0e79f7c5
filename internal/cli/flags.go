package cli

// Common flag names and descriptions
const (
	// Flag names
	FlagISODir      = "iso-dir"
	FlagDevice      = "device"
	FlagMountPoint  = "mount-point"
	FlagBootSize    = "boot-size-mb"
	FlagISOFormat   = "iso-format"
	FlagDryRun      = "dry-run"
	FlagNoDryRun    = "no-dry-run"
	FlagAutoConfirm = "auto-confirm"
	FlagMenuTimeout = "menu-timeout"
	FlagNoColor     = "no-color"
	FlagQuiet       = "quiet"
	FlagDebug       = "debug"

	// Flag descriptions
	DescISODir      = "Directory with ISO files to copy"
	DescDevice      = "Target USB device (e.g. /dev/sdb); prompts interactively when omitted"
	DescMountPoint  = "Mount point used while provisioning"
	DescBootSize    = "Boot partition size in MB"
	DescISOFormat   = "Data partition filesystem (ext4|exfat)"
	DescDryRun      = "Preview commands without executing them"
	DescNoDryRun    = "Execute changes (requires root)"
	DescAutoConfirm = "Skip the confirmation prompt"
	DescMenuTimeout = "GRUB menu timeout in seconds"
	DescNoColor     = "Disable colored output"
	DescQuiet       = "Suppress non-error output"
	DescDebug       = "Enable debug logging"
)
