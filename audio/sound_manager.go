package audio

import (
	"fmt"
	"sync"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/ar-hunt/config"
	"github.com/lixenwraith/ar-hunt/parameter"
)

// Player plays transition cues; implementations never block the frame loop
type Player interface {
	Play(cue Cue)
	Close() error
}

// Silent is a Player that drops every cue
type Silent struct{}

func (Silent) Play(Cue)     {}
func (Silent) Close() error { return nil }

// SoundManager mixes cue streamers into the speaker
type SoundManager struct {
	mu          sync.Mutex
	rate        beep.SampleRate
	volume      float64
	mixer       *beep.Mixer
	initialized bool
	played      [cueCount]int
}

// NewSoundManager creates an uninitialized manager; Play is a no-op until Initialize succeeds
func NewSoundManager(volume float64) *SoundManager {
	return &SoundManager{
		rate:   beep.SampleRate(parameter.AudioSampleRate),
		volume: volume,
		mixer:  &beep.Mixer{},
	}
}

// Initialize opens the speaker and starts the mixer
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	if err := speaker.Init(sm.rate, sm.rate.N(parameter.AudioBufferDuration)); err != nil {
		return fmt.Errorf("%w: %v", ErrSpeakerUnavailable, err)
	}

	speaker.Play(sm.mixer)
	sm.initialized = true
	return nil
}

// Play queues the cue into the mixer
func (sm *SoundManager) Play(cue Cue) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized || cue < 0 || cue >= cueCount {
		return
	}
	s := Effect(cue, sm.rate, sm.volume)
	if s == nil {
		return
	}
	sm.played[cue]++
	speaker.Lock()
	sm.mixer.Add(s)
	speaker.Unlock()
}

// Played returns how many times cue was queued
func (sm *SoundManager) Played(cue Cue) int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if cue < 0 || cue >= cueCount {
		return 0
	}
	return sm.played[cue]
}

// Close stops all sounds and releases the output device
func (sm *SoundManager) Close() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return nil
	}

	speaker.Lock()
	sm.mixer.Clear()
	speaker.Unlock()
	speaker.Clear()
	speaker.Close()
	sm.initialized = false
	return nil
}

// New returns a speaker-backed Player, or Silent when audio is disabled or no device is available
func New(cfg config.Audio, logger zerolog.Logger) Player {
	if !cfg.Enabled {
		return Silent{}
	}
	sm := NewSoundManager(cfg.Volume)
	if err := sm.Initialize(); err != nil {
		logger.Warn().Err(err).Msg("audio disabled")
		return Silent{}
	}
	logger.Debug().Float64("volume", cfg.Volume).Msg("audio initialized")
	return sm
}
