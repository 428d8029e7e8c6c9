package particle

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/lixenwraith/ar-hunt/parameter"
)

// Particle is one recycled point of the celebratory effect
type Particle struct {
	Position mgl32.Vec3
	Velocity mgl32.Vec3
	Life     float32 // seconds since (re)spawn
	MaxLife  float32
	Active   bool
	Opacity  float32
}

// Settings tunes emission and motion
type Settings struct {
	Gravity     float32 // velocity.y loss per second
	FlickerRate float32 // scintillation angular rate
	Origin      mgl32.Vec3
}

// DefaultSettings returns the chest emitter tuning
func DefaultSettings() Settings {
	return Settings{
		Gravity:     parameter.ParticleGravity,
		FlickerRate: parameter.ParticleFlickerRate,
		Origin:      mgl32.Vec3{0, parameter.ParticleOriginY, 0},
	}
}

// Pool is a fixed-size particle set; particles are respawned, never destroyed
type Pool struct {
	particles []Particle
	settings  Settings
	rng       *FastRand
	active    bool
}

// NewPool allocates size particles, all inactive with opacity 0
func NewPool(size int, settings Settings, rng *FastRand) *Pool {
	if size < 0 {
		size = 0
	}
	if rng == nil {
		rng = NewFastRand(1)
	}
	p := &Pool{
		particles: make([]Particle, size),
		settings:  settings,
		rng:       rng,
	}
	for i := range p.particles {
		p.spawn(&p.particles[i], false)
	}
	return p
}

// spawn places a particle at the origin with a fresh velocity and lifespan
func (p *Pool) spawn(pt *Particle, jitter bool) {
	pos := p.settings.Origin
	if jitter {
		pos = pos.Add(mgl32.Vec3{
			p.rng.Signed(parameter.ParticleRespawnJitterXZ),
			p.rng.Signed(parameter.ParticleRespawnJitterY),
			p.rng.Signed(parameter.ParticleRespawnJitterXZ),
		})
	} else {
		pos = pos.Add(mgl32.Vec3{
			p.rng.Signed(parameter.ParticleRespawnJitterXZ * 2),
			p.rng.Range(0, parameter.ParticleRespawnJitterY*4),
			p.rng.Signed(parameter.ParticleRespawnJitterXZ * 2),
		})
	}
	pt.Position = pos
	pt.Velocity = mgl32.Vec3{
		p.rng.Signed(parameter.ParticleSpreadXZ),
		p.rng.Range(parameter.ParticleRiseMin, parameter.ParticleRiseMax),
		p.rng.Signed(parameter.ParticleSpreadXZ),
	}
	pt.MaxLife = p.rng.Range(parameter.ParticleLifeMin, parameter.ParticleLifeMax)
	pt.Life = 0
}

// Activate restarts every particle at full opacity with zero life
func (p *Pool) Activate() {
	p.active = true
	for i := range p.particles {
		pt := &p.particles[i]
		pt.Active = true
		pt.Life = 0
		pt.Opacity = 1
	}
}

// Deactivate stops stepping and hides every particle
func (p *Pool) Deactivate() {
	p.active = false
	for i := range p.particles {
		p.particles[i].Active = false
		p.particles[i].Opacity = 0
	}
}

// Active reports whether the pool is emitting
func (p *Pool) Active() bool { return p.active }

// Len returns the constant pool size
func (p *Pool) Len() int { return len(p.particles) }

// Particles exposes the backing slice for rendering; callers must not resize it
func (p *Pool) Particles() []Particle { return p.particles }

// Step advances every active particle by dt seconds
func (p *Pool) Step(dt float32) {
	if !p.active || dt <= 0 {
		return
	}
	for i := range p.particles {
		p.stepOne(&p.particles[i], dt)
	}
}

func (p *Pool) stepOne(pt *Particle, dt float32) {
	pt.Life += dt
	if pt.Life > pt.MaxLife {
		p.spawn(pt, true)
	} else {
		pt.Position = pt.Position.Add(pt.Velocity)
		pt.Velocity[1] -= p.settings.Gravity * dt
	}
	pt.Opacity = Opacity(pt.Life, pt.MaxLife, p.settings.FlickerRate)
}

// Opacity is the fade-out envelope modulated by a sine scintillation, clamped to [0,1]
func Opacity(life, maxLife, flickerRate float32) float32 {
	if maxLife <= 0 {
		return 0
	}
	scint := 0.5 + 0.5*math32.Sin(life*flickerRate)
	o := (1 - life/maxLife) * scint
	if o < 0 {
		return 0
	}
	if o > 1 {
		return 1
	}
	return o
}
