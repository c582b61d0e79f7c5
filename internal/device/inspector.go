// Package device inspects attached block devices via lsblk and stat.
package device

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/sys/unix"

	"github.com/multibootusb/mbusb/internal/executor"
)

// BlockDevice is one attached disk as reported by lsblk.
type BlockDevice struct {
	// Path is the device node path, e.g. /dev/sdb.
	Path string
	// SizeBytes is the device size in bytes.
	SizeBytes uint64
	// Removable reports the kernel's removable flag for the device.
	Removable bool
}

// lsblkOutput mirrors the root of `lsblk -J` JSON output.
type lsblkOutput struct {
	BlockDevices []lsblkDevice `json:"blockdevices"`
}

// lsblkDevice is one entry of `lsblk -J` output. Children are present
// only when lsblk is invoked without -d.
type lsblkDevice struct {
	Name     string        `json:"name"`
	Size     flexUint      `json:"size"`
	Type     string        `json:"type"`
	RM       flexBool      `json:"rm"`
	Fstype   string        `json:"fstype"`
	Children []lsblkDevice `json:"children"`
}

// flexUint decodes a byte count that util-linux emits as a JSON number
// (>= 2.37) or as a quoted string (older releases).
type flexUint uint64

func (f *flexUint) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return err
	}
	*f = flexUint(v)
	return nil
}

// flexBool decodes a flag that util-linux emits as true/false (>= 2.37)
// or as "0"/"1" strings (older releases).
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	switch strings.Trim(string(data), `"`) {
	case "1", "true":
		*f = true
	default:
		*f = false
	}
	return nil
}

// List enumerates attached disks in the order lsblk reports them.
// The listing command is read-only and therefore executes even when the
// runner is in dry-run mode.
func List(ctx context.Context, runner executor.Runner) ([]BlockDevice, error) {
	res := runner.Run(ctx, executor.Command{
		Program:  "lsblk",
		Args:     []string{"-J", "-b", "-d", "-o", "NAME,SIZE,TYPE,RM"},
		ReadOnly: true,
	})
	if !res.OK() {
		return nil, NewListError("failed to list block devices", res.Err)
	}

	var parsed lsblkOutput
	if err := json.Unmarshal([]byte(res.Output), &parsed); err != nil {
		return nil, NewListError("failed to parse lsblk output", err)
	}

	var devices []BlockDevice
	for _, d := range parsed.BlockDevices {
		if d.Type != "disk" {
			continue
		}
		devices = append(devices, BlockDevice{
			Path:      "/dev/" + d.Name,
			SizeBytes: uint64(d.Size),
			Removable: bool(d.RM),
		})
	}
	return devices, nil
}

// Validate checks that path exists and names a block device.
func Validate(path string) error {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		if os.IsNotExist(err) || err == unix.ENOENT {
			return NewNotFoundError(path, nil)
		}
		return NewNotFoundError(path, err)
	}
	if st.Mode&unix.S_IFMT != unix.S_IFBLK {
		return NewNotBlockError(path)
	}
	return nil
}

// PartitionPath returns the device node of partition n on device.
// Devices whose name ends in a digit (nvme0n1, mmcblk0, loop0) take a
// "p" infix before the partition number.
func PartitionPath(device string, n int) string {
	if device != "" && unicode.IsDigit(rune(device[len(device)-1])) {
		return device + "p" + strconv.Itoa(n)
	}
	return device + strconv.Itoa(n)
}
