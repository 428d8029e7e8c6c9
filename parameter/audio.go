package parameter

import "time"

// Audio Hardware Settings
const (
	AudioSampleRate = 44100

	// AudioBufferDuration determines speaker latency
	AudioBufferDuration = 100 * time.Millisecond
)

// Detect Cue (bell)
const (
	DetectSoundDuration           = 600 * time.Millisecond
	DetectSoundAttack             = 5 * time.Millisecond
	DetectSoundFundamentalRelease = 550 * time.Millisecond
	DetectSoundOvertoneRelease    = 200 * time.Millisecond
)

// Spin Cue (whoosh)
const (
	SpinSoundDuration = 300 * time.Millisecond
	SpinSoundAttack   = 150 * time.Millisecond
	SpinSoundRelease  = 150 * time.Millisecond
)

// Reveal Cue (two-note chime)
const (
	RevealSoundNote1Duration = 80 * time.Millisecond
	RevealSoundNote2Duration = 280 * time.Millisecond
	RevealSoundAttack        = 5 * time.Millisecond
	RevealSoundNote1Release  = 40 * time.Millisecond
	RevealSoundNote2Release  = 200 * time.Millisecond
)

// Collect Cue (rising arpeggio)
const (
	CollectSoundNoteDuration = 90 * time.Millisecond
	CollectSoundAttack       = 5 * time.Millisecond
	CollectSoundRelease      = 60 * time.Millisecond
)
