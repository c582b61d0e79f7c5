package device

import "fmt"

// DeviceErrorType represents the type of device error.
type DeviceErrorType int

const (
	// DeviceNotFound indicates the device path does not exist.
	DeviceNotFound DeviceErrorType = iota
	// NotABlockDevice indicates the path exists but is not a block device.
	NotABlockDevice
	// ListFailed indicates block device enumeration failed.
	ListFailed
)

// DeviceError represents a device inspection error.
type DeviceError struct {
	// Type is the error type.
	Type DeviceErrorType
	// Path is the device path involved, if any.
	Path string
	// Message is the error message.
	Message string
	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *DeviceError) Error() string {
	if e.Path != "" {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %s: %v", e.Message, e.Path, e.Cause)
		}
		return fmt.Sprintf("%s: %s", e.Message, e.Path)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *DeviceError) Unwrap() error {
	return e.Cause
}

// NewNotFoundError creates a DeviceNotFound error.
func NewNotFoundError(path string, cause error) *DeviceError {
	return &DeviceError{Type: DeviceNotFound, Path: path, Message: "device not found", Cause: cause}
}

// NewNotBlockError creates a NotABlockDevice error.
func NewNotBlockError(path string) *DeviceError {
	return &DeviceError{Type: NotABlockDevice, Path: path, Message: "not a block device"}
}

// NewListError creates a ListFailed error.
func NewListError(message string, cause error) *DeviceError {
	return &DeviceError{Type: ListFailed, Message: message, Cause: cause}
}
