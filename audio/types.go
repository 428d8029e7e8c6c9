package audio

import "errors"

// Cue identifies a sound effect played on a marker transition
type Cue int

const (
	CueDetect  Cue = iota // Marker found, dwell countdown started
	CueSpin               // Clue arrow starts spinning
	CueReveal             // Treasure contents appear
	CueCollect            // Treasure collected
	cueCount
)

var cueNames = [...]string{"detect", "spin", "reveal", "collect"}

func (c Cue) String() string {
	if c >= 0 && c < cueCount {
		return cueNames[c]
	}
	return "unknown"
}

// ErrSpeakerUnavailable is returned when no output device could be opened
var ErrSpeakerUnavailable = errors.New("audio output unavailable")
