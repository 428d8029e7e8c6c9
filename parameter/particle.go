package parameter

// Treasure Particle Pool
const (
	// ParticlePoolSize is the fixed number of particles per treasure marker
	ParticlePoolSize = 30

	// ParticleLifeMin/Max bound the randomized lifespan of each particle (seconds)
	ParticleLifeMin = 2.0
	ParticleLifeMax = 4.0

	// ParticleGravity is subtracted from vertical velocity per second
	ParticleGravity = 0.008

	// ParticleFlickerRate is the scintillation frequency (rad per second of life)
	ParticleFlickerRate = 10.0

	// ParticleSpreadXZ is the horizontal velocity range, centered on zero (units per frame step)
	ParticleSpreadXZ = 0.008

	// ParticleRiseMin/Max bound the initial upward velocity (units per frame step)
	ParticleRiseMin = 0.008
	ParticleRiseMax = 0.023

	// ParticleOriginY is the emission height above the anchor (chest rim)
	ParticleOriginY = 0.15

	// ParticleRespawnJitterXZ/Y randomize the respawn point around the origin
	ParticleRespawnJitterXZ = 0.1
	ParticleRespawnJitterY  = 0.05

	// ParticleSize is the point radius used by the composer
	ParticleSize = 0.003
)

