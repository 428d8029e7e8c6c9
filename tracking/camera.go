package tracking

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// ErrPermissionDenied is returned when the capture device exists but cannot be opened
var ErrPermissionDenied = errors.New("camera permission denied")

// Camera is the capture stream handle; frames are consumed by the tracker, not the engine
type Camera interface {
	Open(ctx context.Context) error
	Close() error
	Name() string
}

// NullCamera is used when no device is configured
type NullCamera struct{}

func (NullCamera) Open(context.Context) error { return nil }
func (NullCamera) Close() error               { return nil }
func (NullCamera) Name() string               { return "none" }

// DeviceCamera holds a video device node open for the session
type DeviceCamera struct {
	Path string

	mu sync.Mutex
	f  *os.File
}

// NewDeviceCamera creates a camera for a device node such as /dev/video0
func NewDeviceCamera(path string) *DeviceCamera {
	return &DeviceCamera{Path: path}
}

func (c *DeviceCamera) Name() string { return c.Path }

// Open acquires the device; it is a no-op when already open
func (c *DeviceCamera) Open(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.f != nil {
		return nil
	}
	f, err := os.OpenFile(c.Path, os.O_RDONLY, 0)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return fmt.Errorf("%w: %s", ErrPermissionDenied, c.Path)
		}
		return fmt.Errorf("open camera %s: %w", c.Path, err)
	}
	c.f = f
	return nil
}

// Close releases the device; closing twice is safe
func (c *DeviceCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.f == nil {
		return nil
	}
	err := c.f.Close()
	c.f = nil
	return err
}

// IsOpen reports whether the device is held
func (c *DeviceCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.f != nil
}

// SelectCamera returns a DeviceCamera for device, or a NullCamera when device is empty
func SelectCamera(device string) Camera {
	if device == "" {
		return NullCamera{}
	}
	return NewDeviceCamera(device)
}

// EnumerateCameras lists video device nodes under dir, sorted
func EnumerateCameras(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "video*"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}
