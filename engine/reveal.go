package engine

import (
	"time"

	"github.com/chewxy/math32"

	"github.com/lixenwraith/ar-hunt/anim"
	"github.com/lixenwraith/ar-hunt/audio"
	"github.com/lixenwraith/ar-hunt/config"
	"github.com/lixenwraith/ar-hunt/lifecycle"
	"github.com/lixenwraith/ar-hunt/parameter"
)

// Lifecycle hooks run synchronously on the loop goroutine inside Observe, Tick and Collect

func (s *Session) hooks() lifecycle.Hooks {
	return lifecycle.Hooks{
		Detected: s.onDetected,
		Reveal:   s.onReveal,
		Reset:    s.onReset,
		Collect:  s.onCollect,
	}
}

func (s *Session) onDetected(m config.MarkerConfig, now time.Time) {
	s.audio.Play(audio.CueDetect)
	s.notify(Notice{MarkerID: m.ID, Kind: NoticeDetected, Text: m.Label(), At: now})
}

func (s *Session) onReveal(m config.MarkerConfig, now time.Time) {
	v, ok := s.visuals[m.ID]
	if !ok {
		return
	}
	s.stats.revealsStarted.Add(1)
	switch {
	case v.clue != nil:
		s.startSpin(v, now)
	case v.treasure != nil:
		s.startLidOpen(v, now)
	default:
		s.startFallbackSpin(v, now)
	}
}

// startSpin spins the arrow several full turns, settling on the clue direction
func (s *Session) startSpin(v *markerVisual, now time.Time) {
	m := v.marker
	arrow := v.clue.Spinnable
	target := anim.SpinTarget(float32(m.FinalAngle), s.cfg.Timing.SpinTurns)

	a := anim.New("arrow-spin", now, s.cfg.Timing.ArrowSpin, 0, target, anim.EaseOutExpo, func(val float32) {
		arrow.Rotation[2] = val
	})
	a.OnComplete(func() { s.revealDone(m) })

	s.anims.Start(m.ID, a)
	s.audio.Play(audio.CueSpin)
}

// startLidOpen swings the lid open from wherever it is; treasure and particles appear part way
func (s *Session) startLidOpen(v *markerVisual, now time.Time) {
	m := v.marker
	tv := v.treasure
	lid := tv.Lid

	// A close cut short by a new dwell may have left the treasure out
	tv.Treasure.Visible = false
	tv.Particles.Deactivate()

	a := anim.New("lid-open", now, s.cfg.Timing.LidOpen, lid.Rotation[0], parameter.LidOpenAngle, anim.EaseOutCubic, func(val float32) {
		lid.Rotation[0] = val
	})
	a.At(float32(s.cfg.Timing.RevealProgress), func() {
		tv.Treasure.Visible = true
		tv.Particles.Activate()
		s.audio.Play(audio.CueReveal)
		s.logger.Debug().Int("marker", m.ID).Msg("treasure revealed")
	})
	a.OnComplete(func() { s.revealDone(m) })

	s.anims.Start(m.ID, a)
}

// startFallbackSpin turns the fallback cube once so a failed visual still acknowledges the reveal
func (s *Session) startFallbackSpin(v *markerVisual, now time.Time) {
	m := v.marker
	cube := v.fallback
	a := anim.New("fallback-spin", now, parameter.FallbackRevealDuration, 0, 2*math32.Pi, anim.EaseOutCubic, func(val float32) {
		cube.Rotation[1] = val
	})
	a.OnComplete(func() { s.revealDone(m) })
	s.anims.Start(m.ID, a)
}

// revealDone reports completion to the controller and runs game logic for the finished reveal
func (s *Session) revealDone(m config.MarkerConfig) {
	if !s.controller.RevealComplete(m.ID) {
		return
	}
	s.stats.revealsDone.Add(1)

	switch m.Kind {
	case config.KindClue:
		if s.game.ClueRevealed(m, s.now) {
			s.notify(Notice{MarkerID: m.ID, Kind: NoticeClue, Text: m.Label(), At: s.now})
		}
	case config.KindTreasure:
		if !s.cfg.AutoCollect {
			return
		}
		if err := s.controller.Collect(m.ID, s.now); err != nil {
			s.logger.Warn().Err(err).Int("marker", m.ID).Msg("auto collect failed")
		}
	}
}

// onReset cancels the marker animation; treasure lids close instead of snapping shut
func (s *Session) onReset(m config.MarkerConfig, reason lifecycle.ResetReason, now time.Time) {
	v, ok := s.visuals[m.ID]
	if !ok {
		return
	}
	cancelled := s.anims.Cancel(m.ID)
	s.logger.Debug().Int("marker", m.ID).Stringer("reason", reason).Bool("cancelled", cancelled).Msg("marker reset")

	switch {
	case v.clue != nil:
		v.clue.Spinnable.Rotation[2] = 0
	case v.treasure != nil:
		s.startLidClose(v, now)
	case v.fallback != nil:
		v.fallback.Rotation[1] = 0
	}
}

// startLidClose closes the lid linearly, hiding treasure and particles part way
func (s *Session) startLidClose(v *markerVisual, now time.Time) {
	tv := v.treasure
	lid := tv.Lid
	if lid.Rotation[0] == 0 {
		tv.Treasure.Visible = false
		tv.Particles.Deactivate()
		return
	}

	a := anim.New("lid-close", now, s.cfg.Timing.LidClose, lid.Rotation[0], 0, anim.Linear, func(val float32) {
		lid.Rotation[0] = val
	})
	a.At(parameter.TreasureHideProgress, func() {
		tv.Treasure.Visible = false
		tv.Particles.Deactivate()
	})
	s.anims.Start(v.marker.ID, a)
}

func (s *Session) onCollect(m config.MarkerConfig, now time.Time) {
	reward, awarded := s.game.Collected(m, now)
	s.audio.Play(audio.CueCollect)
	s.stats.score.Store(int64(s.game.Score()))

	n := Notice{MarkerID: m.ID, Kind: NoticeCollected, Text: reward.Label, Points: reward.Points, At: now}
	if !awarded {
		n.Points = 0
	}
	s.notify(n)
	if awarded && s.game.Complete() {
		s.notify(Notice{Kind: NoticeComplete, Points: s.game.Score(), At: now})
	}
}
