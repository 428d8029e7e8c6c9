package tracking

import (
	"context"
	"errors"
	"time"

	"github.com/lixenwraith/ar-hunt/scene"
)

var (
	// ErrBundleMissing is returned by Start when the compiled target bundle is absent or empty
	ErrBundleMissing = errors.New("target bundle missing")
	// ErrCameraUnavailable is returned by Start when the capture device cannot be opened
	ErrCameraUnavailable = errors.New("camera unavailable")
	// ErrUnknownAnchor is returned for ids without a registered anchor
	ErrUnknownAnchor = errors.New("unknown anchor")
	// ErrDuplicateAnchor is returned when an id is registered twice
	ErrDuplicateAnchor = errors.New("anchor already registered")
	// ErrRunning is returned when anchors are added after Start
	ErrRunning = errors.New("tracker already running")
)

// Service is the image-tracking contract the session depends on
// Start and Stop may be called from any goroutine; Poll runs on the frame loop
type Service interface {
	AddAnchor(id int) (*Anchor, error)
	Anchor(id int) (*Anchor, bool)
	Anchors() []*Anchor
	Root() *scene.Node
	Start(ctx context.Context) error
	Stop() error
	Running() bool
	// Poll applies pending visibility/pose updates, firing anchor hooks
	Poll(now time.Time)
}
