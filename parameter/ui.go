package parameter

import "time"

// UI Shell
const (
	// MarkerKeys maps keyboard runes to marker ids for the simulated tracker (index = marker id)
	MarkerKeys = "0123456789abcdefghijklmnop"

	// DiagnosticsTimeout bounds a full diagnostics run
	DiagnosticsTimeout = 3 * time.Second

	// AlertRows is the height reserved for the blocking error panel
	AlertRows = 7
)

// HUD and Panels
const (
	// HUDRows is the overlay height under the AR viewport
	HUDRows = 6

	// UIRefreshInterval is the redraw period of the idle screen
	UIRefreshInterval = 100 * time.Millisecond

	// NoticeDisplay is how long a marker notice stays in the HUD
	NoticeDisplay = 4 * time.Second

	// CameraDir is where capture devices are enumerated
	CameraDir = "/dev"
)
