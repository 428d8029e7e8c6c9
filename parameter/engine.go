package parameter

import "time"

// Frame Loop Timing
const (
	// FrameInterval is the render loop period (~60 FPS)
	FrameInterval = time.Second / 60

	// MaxFrameDelta caps the per-frame delta handed to the updater after stalls (suspend, debugger)
	MaxFrameDelta = 100 * time.Millisecond

	// PostQueueSize is the capacity of the loop task queue fed by the UI and input goroutines
	PostQueueSize = 256

	// VisibleLogEveryFrames is the frame period of the "visible markers" progress log (~1 second)
	VisibleLogEveryFrames = 60
)

// Marker Lifecycle Timing
const (
	// DwellThreshold is the continuous visibility required before a reveal triggers
	DwellThreshold = 2000 * time.Millisecond

	// CountdownLogStep is the dwell countdown log granularity
	CountdownLogStep = 500 * time.Millisecond

	// CollectTimeout clears a collected marker under the timeout collection policy
	CollectTimeout = 5 * time.Second
)

// Session Events
const (
	// NoticeQueueSize bounds undelivered user-facing notices
	NoticeQueueSize = 32
)
