// Package menu discovers ISO images and renders the GRUB2 boot menu
// configuration for them.
//
// The rendered entries use a generic casper-style loopback template.
// Live distributions differ in their in-ISO kernel and initrd paths and
// kernel command lines, so some ISOs need their entry edited by hand
// after generation; the menu is a starting point, not a universal boot
// recipe.
package menu

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
)

// IsoDirName is the directory on the data partition that holds the ISO
// images. Detection and regeneration across runs depend on this name.
const IsoDirName = "isos"

// Entry is one discovered ISO image.
type Entry struct {
	// Label is the menu title, derived from the filename.
	Label string
	// FileName is the bare ISO filename on the data partition.
	FileName string
	// SizeBytes is the image size.
	SizeBytes int64
}

// ScanISOs returns the ISO images in dir, sorted by filename so that
// menu order is deterministic regardless of directory listing order.
func ScanISOs(dir string) ([]Entry, error) {
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read ISO directory %s: %w", dir, err)
	}

	var entries []Entry
	for _, de := range dirents {
		if de.IsDir() {
			continue
		}
		name := de.Name()
		if !strings.EqualFold(filepath.Ext(name), ".iso") {
			continue
		}
		info, err := de.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", name, err)
		}
		entries = append(entries, Entry{
			Label:     labelFor(name),
			FileName:  name,
			SizeBytes: info.Size(),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].FileName < entries[j].FileName
	})
	return entries, nil
}

// labelFor derives a menu title from an ISO filename.
func labelFor(fileName string) string {
	label := fileName[:len(fileName)-len(filepath.Ext(fileName))]
	return strings.ReplaceAll(label, "_", " ")
}

var configTemplate = template.Must(template.New("grub.cfg").Parse(`# GRUB2 Multiboot Configuration
# Auto-generated by mbusb - regenerated on every run, do not edit

set default=0
set timeout={{.TimeoutSec}}

### Boot Entries ###
{{range .Entries}}
menuentry "{{.Label}}" {
    echo "Loading {{.Label}}..."
    set isofile=/{{$.IsoDir}}/{{.FileName}}
    loopback loop $isofile
    insmod gfxterm
    terminal_output gfxterm

    linux (loop)/casper/vmlinuz iso-scan/filename=$isofile boot=casper noeject noprompt splash --
    initrd (loop)/casper/initrd
}
{{end}}
### System Utilities ###
menuentry "UEFI Firmware Settings" {
    fwsetup
}

menuentry "Reboot" {
    reboot
}

menuentry "Power Off" {
    halt
}
`))

// Render produces the full grub.cfg text for entries. The configuration
// is always rendered from scratch; it is never patched in place.
func Render(entries []Entry, timeoutSec int) (string, error) {
	var b strings.Builder
	err := configTemplate.Execute(&b, struct {
		TimeoutSec int
		IsoDir     string
		Entries    []Entry
	}{
		TimeoutSec: timeoutSec,
		IsoDir:     IsoDirName,
		Entries:    entries,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render grub.cfg: %w", err)
	}
	return b.String(), nil
}
