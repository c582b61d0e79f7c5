package config

import (
	"fmt"
	"os"
)

// Validate checks the configuration before any destructive operation
// begins. Block-device validation of Device is performed separately by
// the device inspector; here only the value shape is checked.
func (c *RunConfig) Validate() error {
	if c.Device == "" {
		return NewFieldError("device", "target device must be set")
	}
	if c.MountPoint == "" {
		return NewFieldError("mount-point", "mount point must be set")
	}
	if c.BootSizeMB <= 0 {
		return NewFieldError("boot-size-mb", fmt.Sprintf("boot partition size must be positive, got %d", c.BootSizeMB))
	}
	if _, err := ParseFilesystem(string(c.ISOFormat)); err != nil {
		return err
	}
	if c.MenuTimeoutSec < 0 {
		return NewFieldError("menu-timeout", "menu timeout cannot be negative")
	}

	if c.ISODir != "" {
		info, err := os.Stat(c.ISODir)
		if err != nil {
			return &ConfigError{Field: "iso-dir", Message: "ISO directory not found", Cause: err}
		}
		if !info.IsDir() {
			return NewFieldError("iso-dir", fmt.Sprintf("%s is not a directory", c.ISODir))
		}
	}
	return nil
}
