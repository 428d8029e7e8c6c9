package engine

import (
	"sync/atomic"

	"github.com/lixenwraith/ar-hunt/status"
)

// sessionStats holds metric pointers resolved once so frame code never takes the registry lock
type sessionStats struct {
	session  *status.AtomicString
	camera   *status.AtomicString
	tracking *atomic.Bool

	frames     *atomic.Int64
	frameDelta *status.AtomicFloat
	fps        *status.AtomicFloat
	visible    *atomic.Int64
	anims      *atomic.Int64
	particles  *atomic.Int64

	modelsPending  *atomic.Int64
	fallbacks      *atomic.Int64
	revealsStarted *atomic.Int64
	revealsDone    *atomic.Int64
	score          *atomic.Int64
}

func newSessionStats(reg *status.Registry) sessionStats {
	return sessionStats{
		session:  reg.Strings.Get(status.KeySession),
		camera:   reg.Strings.Get(status.KeyCamera),
		tracking: reg.Bools.Get(status.KeyTrackingRunning),

		frames:     reg.Ints.Get(status.KeyFrames),
		frameDelta: reg.Floats.Get(status.KeyFrameDeltaMs),
		fps:        reg.Floats.Get(status.KeyFPS),
		visible:    reg.Ints.Get(status.KeyVisibleMarkers),
		anims:      reg.Ints.Get(status.KeyActiveAnims),
		particles:  reg.Ints.Get(status.KeyActiveParticles),

		modelsPending:  reg.Ints.Get(status.KeyModelsPending),
		fallbacks:      reg.Ints.Get(status.KeyVisualFallbacks),
		revealsStarted: reg.Ints.Get(status.KeyRevealsStarted),
		revealsDone:    reg.Ints.Get(status.KeyRevealsDone),
		score:          reg.Ints.Get(status.KeyScore),
	}
}
