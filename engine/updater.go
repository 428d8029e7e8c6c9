package engine

import (
	"time"

	"github.com/chewxy/math32"

	"github.com/lixenwraith/ar-hunt/parameter"
)

// update advances animations, then particles and treasure shimmer by the frame delta
func (s *Session) update(now time.Time, dt time.Duration) {
	s.anims.Update(now)

	sec := float32(dt.Seconds())
	for _, id := range s.order {
		v := s.visuals[id]
		if v.treasure == nil {
			continue
		}
		v.treasure.Particles.Step(sec)
		if v.treasure.Treasure.Visible {
			shimmer(v, sec)
		}
		v.treasure.SyncParticles()
	}
}

// shimmer spins coins and bars and pulses their glow while the treasure is shown
func shimmer(v *markerVisual, dt float32) {
	v.shimmer += dt
	t := v.shimmer
	for i, c := range v.treasure.Coins {
		c.Rotation[1] += dt * (parameter.CoinSpinBase + float32(i)*parameter.CoinSpinStep)
		if c.Mesh != nil {
			c.Mesh.Emissive = parameter.CoinEmissive + parameter.CoinEmissiveSwing*math32.Sin(t*parameter.CoinShimmerRate+float32(i))
		}
	}
	for i, b := range v.treasure.Bars {
		b.Rotation[1] += dt * parameter.BarSpinRate
		if b.Mesh != nil {
			b.Mesh.Emissive = parameter.BarEmissive + parameter.BarEmissiveSwing*math32.Sin(t*parameter.BarShimmerRate+float32(i))
		}
	}
}

// activeParticles counts live particles across every treasure pool
func (s *Session) activeParticles() int {
	n := 0
	for _, v := range s.visuals {
		if v.treasure == nil || !v.treasure.Particles.Active() {
			continue
		}
		for _, p := range v.treasure.Particles.Particles() {
			if p.Active {
				n++
			}
		}
	}
	return n
}
