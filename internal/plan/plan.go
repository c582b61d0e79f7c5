// Package plan computes the two-partition layout written to the target
// device: a small boot partition followed by a data partition spanning
// the rest of the device.
package plan

import (
	"errors"
	"fmt"
)

const (
	// MiB is one mebibyte in bytes.
	MiB = 1024 * 1024

	// ReservedHeadMiB is kept free at the start of the device for the
	// partition table and 1MiB alignment.
	ReservedHeadMiB = 1
	// ReservedTailMiB is kept free at the end of the device.
	ReservedTailMiB = 1
	// MinDataMiB is the smallest data partition worth creating; below
	// this no ISO fits and the layout is rejected.
	MinDataMiB = 64
)

// ErrInsufficientSpace indicates the device is too small for the
// requested boot partition plus a minimum viable data partition.
var ErrInsufficientSpace = errors.New("insufficient space on device")

// PlanError describes why a layout could not be planned.
type PlanError struct {
	// Message is the error message.
	Message string
	// Cause is the underlying error, typically ErrInsufficientSpace.
	Cause error
}

// Error implements the error interface.
func (e *PlanError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *PlanError) Unwrap() error {
	return e.Cause
}

// PartitionPlan is the computed layout in whole MiB boundaries.
// Boundaries round in the safe direction: the boot partition is never
// smaller than requested and the data partition never claims space the
// device does not have.
type PartitionPlan struct {
	// DeviceSizeBytes is the total device capacity.
	DeviceSizeBytes uint64
	// BootStartMiB is the first MiB of the boot partition.
	BootStartMiB int64
	// BootEndMiB is the MiB boundary where the boot partition ends and
	// the data partition begins.
	BootEndMiB int64
	// DataEndMiB is the last usable MiB boundary of the data partition
	// (device size rounded down, minus the trailing reserve).
	DataEndMiB int64
}

// Plan computes the layout for a device of deviceSizeBytes with a boot
// partition of bootSizeMB mebibytes.
func Plan(deviceSizeBytes uint64, bootSizeMB int) (*PartitionPlan, error) {
	if bootSizeMB <= 0 {
		return nil, &PlanError{Message: fmt.Sprintf("boot partition size must be positive, got %d MB", bootSizeMB)}
	}

	// Rounding down here means the data partition never extends past
	// the real end of the device.
	deviceMiB := int64(deviceSizeBytes / MiB)

	p := &PartitionPlan{
		DeviceSizeBytes: deviceSizeBytes,
		BootStartMiB:    ReservedHeadMiB,
		BootEndMiB:      ReservedHeadMiB + int64(bootSizeMB),
		DataEndMiB:      deviceMiB - ReservedTailMiB,
	}

	if p.DataEndMiB-p.BootEndMiB < MinDataMiB {
		return nil, &PlanError{
			Message: fmt.Sprintf("device of %d MiB cannot hold a %d MB boot partition plus %d MiB of data",
				deviceMiB, bootSizeMB, MinDataMiB),
			Cause: ErrInsufficientSpace,
		}
	}
	return p, nil
}

// BootSizeMiB returns the boot partition size.
func (p *PartitionPlan) BootSizeMiB() int64 {
	return p.BootEndMiB - p.BootStartMiB
}

// DataSizeMiB returns the data partition size.
func (p *PartitionPlan) DataSizeMiB() int64 {
	return p.DataEndMiB - p.BootEndMiB
}

// BootStartArg returns the parted start argument for the boot partition.
func (p *PartitionPlan) BootStartArg() string {
	return fmt.Sprintf("%dMiB", p.BootStartMiB)
}

// BootEndArg returns the parted end argument for the boot partition,
// which is also the start of the data partition.
func (p *PartitionPlan) BootEndArg() string {
	return fmt.Sprintf("%dMiB", p.BootEndMiB)
}

// DataEndArg returns the parted end argument for the data partition.
// parted resolves "100%" to the last usable sector itself, which keeps
// the created partition within DataEndMiB.
func (p *PartitionPlan) DataEndArg() string {
	return "100%"
}
