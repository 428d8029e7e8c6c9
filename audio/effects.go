package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"github.com/lixenwraith/ar-hunt/parameter"
	"github.com/lixenwraith/ar-hunt/particle"
)

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// oscillator generates raw audio waves
type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
	rng      *particle.FastRand
}

// NewOscillator creates a fixed-length oscillator
func NewOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     freq,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
		rng:      particle.NewFastRand(uint64(time.Now().UnixNano())),
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			if o.phase < 0.5 {
				val = 1.0
			} else {
				val = -1.0
			}
		case WaveSaw:
			val = 2.0 * (o.phase - 0.5)
		case WaveNoise:
			val = float64(o.rng.Signed(1))
		}

		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// sweep is a sine oscillator gliding linearly between two frequencies
type sweep struct {
	from, to float64
	phase    float64
	duration int
	position int
	rate     beep.SampleRate
}

// NewSweep creates a frequency glide, used for the arrow spin whoosh
func NewSweep(from, to float64, duration time.Duration, rate beep.SampleRate) beep.Streamer {
	return &sweep{from: from, to: to, duration: rate.N(duration), rate: rate}
}

func (s *sweep) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if s.position >= s.duration {
			return i, i > 0
		}
		t := float64(s.position) / float64(s.duration)
		freq := s.from + (s.to-s.from)*t
		val := math.Sin(2 * math.Pi * s.phase)
		samples[i][0] = val
		samples[i][1] = val
		s.phase += freq / float64(s.rate)
		s.phase -= math.Floor(s.phase)
		s.position++
	}
	return len(samples), true
}

func (s *sweep) Err() error { return nil }

// envelope applies attack/release shaping to a stream
type envelope struct {
	streamer       beep.Streamer
	position       int
	attackSamples  int
	releaseSamples int
	sustainSamples int
	totalSamples   int
}

// NewEnvelope creates an attack/release envelope
func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	total := rate.N(duration)
	att := rate.N(attack)
	rel := rate.N(release)
	sus := max(total-att-rel, 0)

	return &envelope{
		streamer:       s,
		attackSamples:  att,
		releaseSamples: rel,
		sustainSamples: sus,
		totalSamples:   total,
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)

	for i := 0; i < n; i++ {
		if e.position >= e.totalSamples {
			return i, i > 0
		}

		vol := 1.0
		if e.position < e.attackSamples && e.attackSamples > 0 {
			vol = float64(e.position) / float64(e.attackSamples)
		}
		releaseStart := e.attackSamples + e.sustainSamples
		if e.position >= releaseStart && e.releaseSamples > 0 {
			vol = max(float64(e.totalSamples-e.position)/float64(e.releaseSamples), 0)
		}

		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}

	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// newVolume wraps s with a linear gain; math.Log2(0) is -Inf so zero is mapped to silent
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

// CreateDetectSound generates a soft bell when a marker enters view
func CreateDetectSound(rate beep.SampleRate, vol float64) beep.Streamer {
	// Fundamental (A5)
	fund := NewOscillator(880.0, parameter.DetectSoundDuration, WaveSine, rate)
	fundShaped := NewEnvelope(fund, parameter.DetectSoundDuration, parameter.DetectSoundAttack, parameter.DetectSoundFundamentalRelease, rate)

	// Octave up
	over := NewOscillator(1760.0, parameter.DetectSoundDuration, WaveSine, rate)
	overShaped := NewEnvelope(over, parameter.DetectSoundDuration, parameter.DetectSoundAttack, parameter.DetectSoundOvertoneRelease, rate)

	mixed := beep.Mix(
		newVolume(fundShaped, 0.7),
		newVolume(overShaped, 0.3),
	)
	return newVolume(mixed, vol)
}

// CreateSpinSound generates a rising whoosh for the arrow spin
func CreateSpinSound(rate beep.SampleRate, vol float64) beep.Streamer {
	noise := NewOscillator(0, parameter.SpinSoundDuration, WaveNoise, rate)
	noiseShaped := NewEnvelope(noise, parameter.SpinSoundDuration, parameter.SpinSoundAttack, parameter.SpinSoundRelease, rate)

	glide := NewSweep(220, 660, parameter.SpinSoundDuration, rate)
	glideShaped := NewEnvelope(glide, parameter.SpinSoundDuration, parameter.SpinSoundAttack, parameter.SpinSoundRelease, rate)

	mixed := beep.Mix(
		newVolume(noiseShaped, 0.4),
		newVolume(glideShaped, 0.3),
	)
	return newVolume(mixed, vol)
}

// CreateRevealSound generates a two-note chime when treasure appears
func CreateRevealSound(rate beep.SampleRate, vol float64) beep.Streamer {
	// B5
	n1 := NewOscillator(987.77, parameter.RevealSoundNote1Duration, WaveSquare, rate)
	n1Shaped := NewEnvelope(n1, parameter.RevealSoundNote1Duration, parameter.RevealSoundAttack, parameter.RevealSoundNote1Release, rate)

	// E6
	n2 := NewOscillator(1318.51, parameter.RevealSoundNote2Duration, WaveSquare, rate)
	n2Shaped := NewEnvelope(n2, parameter.RevealSoundNote2Duration, parameter.RevealSoundAttack, parameter.RevealSoundNote2Release, rate)

	return newVolume(beep.Seq(n1Shaped, n2Shaped), vol*0.5)
}

// collectNotes is a C major arpeggio
var collectNotes = []float64{523.25, 659.25, 783.99, 1046.50}

// CreateCollectSound generates a rising arpeggio on collection
func CreateCollectSound(rate beep.SampleRate, vol float64) beep.Streamer {
	seq := make([]beep.Streamer, 0, len(collectNotes))
	for _, f := range collectNotes {
		osc := NewOscillator(f, parameter.CollectSoundNoteDuration, WaveSine, rate)
		seq = append(seq, NewEnvelope(osc, parameter.CollectSoundNoteDuration, parameter.CollectSoundAttack, parameter.CollectSoundRelease, rate))
	}
	return newVolume(beep.Seq(seq...), vol)
}

// Effect returns the streamer for a cue, nil for unknown cues
func Effect(cue Cue, rate beep.SampleRate, vol float64) beep.Streamer {
	switch cue {
	case CueDetect:
		return CreateDetectSound(rate, vol)
	case CueSpin:
		return CreateSpinSound(rate, vol)
	case CueReveal:
		return CreateRevealSound(rate, vol)
	case CueCollect:
		return CreateCollectSound(rate, vol)
	default:
		return nil
	}
}
