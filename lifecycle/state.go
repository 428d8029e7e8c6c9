package lifecycle

import (
	"time"

	"github.com/lixenwraith/ar-hunt/config"
)

// State is the per-marker lifecycle phase
type State uint8

const (
	Idle State = iota
	Dwelling
	Revealing
	Revealed
	Collected
)

var stateNames = [...]string{"idle", "dwelling", "revealing", "revealed", "collected"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Runtime is the mutable record of one marker, owned by the Controller
// A zero DetectedAt means no dwell timer is running
type Runtime struct {
	ID               int
	Kind             config.Kind
	State            State
	Visible          bool
	DetectedAt       time.Time
	AnimationStarted bool
	Opened           bool
	CollectedAt      time.Time

	// next countdown boundary to log, as remaining dwell
	nextCountdown time.Duration
}

// Dwell returns how long the marker has been continuously visible at now
func (r *Runtime) Dwell(now time.Time) time.Duration {
	if r.DetectedAt.IsZero() {
		return 0
	}
	return now.Sub(r.DetectedAt)
}

func (r *Runtime) reset() {
	r.State = Idle
	r.DetectedAt = time.Time{}
	r.AnimationStarted = false
	r.Opened = false
	r.nextCountdown = 0
}
