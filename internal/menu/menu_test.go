package menu

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name string, size int) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), make([]byte, size), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
}

func TestScanISOsSortedByFilename(t *testing.T) {
	dir := t.TempDir()
	// Written out of order; scan must sort.
	writeFile(t, dir, "ubuntu-24.04.iso", 10)
	writeFile(t, dir, "debian-12.iso", 20)
	writeFile(t, dir, "arch_linux.ISO", 30)
	writeFile(t, dir, "notes.txt", 5)

	entries, err := ScanISOs(dir)
	if err != nil {
		t.Fatalf("ScanISOs failed: %v", err)
	}

	if len(entries) != 3 {
		t.Fatalf("Expected 3 ISO entries, got %d", len(entries))
	}

	wantOrder := []string{"arch_linux.ISO", "debian-12.iso", "ubuntu-24.04.iso"}
	for i, want := range wantOrder {
		if entries[i].FileName != want {
			t.Errorf("Entry %d: expected %s, got %s", i, want, entries[i].FileName)
		}
	}

	if entries[0].Label != "arch linux" {
		t.Errorf("Expected underscores replaced in label, got %q", entries[0].Label)
	}
	if entries[1].Label != "debian-12" {
		t.Errorf("Expected label debian-12, got %q", entries[1].Label)
	}
	if entries[1].SizeBytes != 20 {
		t.Errorf("Expected size 20, got %d", entries[1].SizeBytes)
	}
}

func TestScanISOsMissingDirectory(t *testing.T) {
	if _, err := ScanISOs(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("Expected error for missing directory")
	}
}

func TestScanISOsEmptyDirectory(t *testing.T) {
	entries, err := ScanISOs(t.TempDir())
	if err != nil {
		t.Fatalf("ScanISOs failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no entries, got %d", len(entries))
	}
}

func TestRenderTwoEntries(t *testing.T) {
	entries := []Entry{
		{Label: "debian-12", FileName: "debian-12.iso"},
		{Label: "ubuntu-24.04", FileName: "ubuntu-24.04.iso"},
	}

	cfg, err := Render(entries, 10)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if got := strings.Count(cfg, "loopback loop"); got != 2 {
		t.Errorf("Expected 2 loopback entries, got %d", got)
	}

	debianIdx := strings.Index(cfg, `menuentry "debian-12"`)
	ubuntuIdx := strings.Index(cfg, `menuentry "ubuntu-24.04"`)
	if debianIdx < 0 || ubuntuIdx < 0 {
		t.Fatalf("Missing menu entries in config:\n%s", cfg)
	}
	if debianIdx > ubuntuIdx {
		t.Error("Expected debian entry before ubuntu entry")
	}

	if !strings.Contains(cfg, "set isofile=/isos/debian-12.iso") {
		t.Error("Entry should reference the ISO under /isos")
	}
	if !strings.Contains(cfg, "set timeout=10") {
		t.Error("Config should carry the timeout")
	}
}

func TestRenderUtilityEntriesAlwaysPresent(t *testing.T) {
	cfg, err := Render(nil, 5)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	for _, want := range []string{
		`menuentry "UEFI Firmware Settings"`,
		`menuentry "Reboot"`,
		`menuentry "Power Off"`,
		"fwsetup",
	} {
		if !strings.Contains(cfg, want) {
			t.Errorf("Config missing %q", want)
		}
	}
}
