package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig(t *testing.T) *RunConfig {
	t.Helper()
	cfg := Default()
	cfg.Device = "/dev/sdb"
	cfg.ISODir = t.TempDir()
	return cfg
}

func TestValidateAcceptsDefaults(t *testing.T) {
	if err := validConfig(t).Validate(); err != nil {
		t.Fatalf("Valid config rejected: %v", err)
	}
}

func TestValidateOptionalISODir(t *testing.T) {
	cfg := validConfig(t)
	cfg.ISODir = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Config without ISO dir should be valid: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RunConfig)
		field  string
	}{
		{"missing device", func(c *RunConfig) { c.Device = "" }, "device"},
		{"missing mount point", func(c *RunConfig) { c.MountPoint = "" }, "mount-point"},
		{"zero boot size", func(c *RunConfig) { c.BootSizeMB = 0 }, "boot-size-mb"},
		{"negative boot size", func(c *RunConfig) { c.BootSizeMB = -16 }, "boot-size-mb"},
		{"bad filesystem", func(c *RunConfig) { c.ISOFormat = "ntfs" }, "iso-format"},
		{"negative timeout", func(c *RunConfig) { c.MenuTimeoutSec = -1 }, "menu-timeout"},
		{"missing iso dir", func(c *RunConfig) { c.ISODir = "/does/not/exist" }, "iso-dir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Expected validation error")
			}
			cfgErr, ok := err.(*ConfigError)
			if !ok {
				t.Fatalf("Expected *ConfigError, got %T", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("Expected field %q, got %q", tt.field, cfgErr.Field)
			}
		})
	}
}

func TestValidateISODirIsFile(t *testing.T) {
	cfg := validConfig(t)
	file := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg.ISODir = file

	if err := cfg.Validate(); err == nil {
		t.Fatal("Expected error when ISO dir is a regular file")
	}
}

func TestParseFilesystem(t *testing.T) {
	for _, name := range []string{"ext4", "exfat"} {
		fs, err := ParseFilesystem(name)
		if err != nil {
			t.Errorf("ParseFilesystem(%q) failed: %v", name, err)
		}
		if string(fs) != name {
			t.Errorf("ParseFilesystem(%q) = %q", name, fs)
		}
	}

	if _, err := ParseFilesystem("btrfs"); err == nil {
		t.Error("Expected error for unsupported filesystem")
	}
}
