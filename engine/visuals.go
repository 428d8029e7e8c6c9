package engine

import (
	"context"
	"time"

	"github.com/lixenwraith/ar-hunt/config"
	"github.com/lixenwraith/ar-hunt/particle"
	"github.com/lixenwraith/ar-hunt/scene"
	"github.com/lixenwraith/ar-hunt/tracking"
)

// markerVisual is the composed content of one marker and its anchor
// Exactly one of clue, treasure or fallback is set once the visual is built
type markerVisual struct {
	marker config.MarkerConfig
	anchor *tracking.Anchor

	clue     *scene.ClueVisual
	treasure *scene.TreasureVisual
	fallback *scene.Node

	// pending is set while the marker model loads; the lifecycle skips pending markers
	pending bool
	shimmer float32
}

func (v *markerVisual) root() *scene.Node {
	switch {
	case v.clue != nil:
		return v.clue.Root
	case v.treasure != nil:
		return v.treasure.Root
	default:
		return v.fallback
	}
}

// treasureOptions derives chest builder inputs from configuration
func (s *Session) treasureOptions(model *scene.Node) scene.TreasureOptions {
	ps := particle.DefaultSettings()
	ps.Gravity = float32(s.cfg.Particles.Gravity)
	ps.FlickerRate = float32(s.cfg.Particles.FlickerRate)
	return scene.TreasureOptions{
		ParticleCount: s.cfg.Particles.Count,
		Particles:     ps,
		Rand:          particle.NewFastRand(s.rng.Next()),
		Model:         model,
		ModelScale:    float32(s.cfg.Model.Scale),
	}
}

// buildVisual composes the marker content; treasure models are requested and attached later
func (s *Session) buildVisual(ctx context.Context, v *markerVisual) {
	m := v.marker
	var err error
	switch m.Kind {
	case config.KindClue:
		v.clue, err = scene.BuildClueVisual(m)
	case config.KindTreasure:
		if m.Model != "" {
			v.pending = true
			s.models.Request(ctx, m.Model)
			s.logger.Debug().Int("marker", m.ID).Str("model", m.Model).Msg("visual waiting for model")
			return
		}
		v.treasure, err = scene.BuildTreasureVisual(m, s.treasureOptions(nil))
	default:
		err = scene.ErrWrongKind
	}
	if err != nil {
		s.useFallback(v, err)
		return
	}
	v.anchor.Attach(v.root())
}

// useFallback substitutes the golden cube for a visual that could not be built
func (s *Session) useFallback(v *markerVisual, cause error) {
	v.pending = false
	v.clue, v.treasure = nil, nil
	v.fallback = scene.Fallback(v.marker)
	v.anchor.DetachAll()
	v.anchor.Attach(v.fallback)
	s.stats.fallbacks.Add(1)
	s.logger.Warn().Err(cause).Int("marker", v.marker.ID).Msg("visual build failed, using fallback")
}

// attachModels consumes finished loads and builds the waiting treasure visuals
func (s *Session) attachModels(now time.Time) {
	results := s.models.Poll()
	for _, res := range results {
		for _, id := range s.order {
			v := s.visuals[id]
			if !v.pending || v.marker.Model != res.Path {
				continue
			}
			if res.Err != nil {
				s.useFallback(v, res.Err)
				continue
			}
			node, err := s.models.Instance(res.Path)
			if err != nil {
				s.useFallback(v, err)
				continue
			}
			tv, err := scene.BuildTreasureVisual(v.marker, s.treasureOptions(node))
			if err != nil {
				s.useFallback(v, err)
				continue
			}
			v.pending = false
			v.treasure = tv
			v.anchor.Attach(tv.Root)
			s.logger.Debug().Int("marker", id).Str("model", res.Path).Time("at", now).Msg("model visual attached")
		}
	}
	if len(results) > 0 {
		s.stats.modelsPending.Store(int64(s.pendingCount()))
	}
}

func (s *Session) pendingCount() int {
	n := 0
	for _, v := range s.visuals {
		if v.pending {
			n++
		}
	}
	return n
}
