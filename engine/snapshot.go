package engine

import (
	"time"

	"github.com/lixenwraith/ar-hunt/config"
	"github.com/lixenwraith/ar-hunt/hunt"
	"github.com/lixenwraith/ar-hunt/lifecycle"
)

// MarkerStatus is the read-only view of one marker for the UI
type MarkerStatus struct {
	ID       int
	Name     string
	Kind     config.Kind
	State    lifecycle.State
	Visible  bool
	Pending  bool
	Fallback bool
	Dwell    time.Duration
}

// Snapshot is an immutable copy of session state published once per frame
type Snapshot struct {
	At      time.Time
	Frame   uint64
	Running bool
	Score   int
	Found   int
	Total   int
	Clues   []hunt.Clue
	Rewards []hunt.Reward
	Markers []MarkerStatus
}

// Marker returns the status for id
func (s *Snapshot) Marker(id int) (MarkerStatus, bool) {
	for _, m := range s.Markers {
		if m.ID == id {
			return m, true
		}
	}
	return MarkerStatus{}, false
}

// NoticeKind classifies user-facing session events
type NoticeKind uint8

const (
	NoticeDetected NoticeKind = iota
	NoticeClue
	NoticeCollected
	NoticeComplete
)

var noticeNames = [...]string{"detected", "clue", "collected", "complete"}

func (k NoticeKind) String() string {
	if int(k) < len(noticeNames) {
		return noticeNames[k]
	}
	return "unknown"
}

// Notice is a transient message for the marker info panel
type Notice struct {
	MarkerID int
	Kind     NoticeKind
	Text     string
	Points   int
	At       time.Time
}
