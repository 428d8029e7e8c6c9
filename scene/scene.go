package scene

import "github.com/go-gl/mathgl/mgl32"

// LightKind distinguishes light sources
type LightKind uint8

const (
	LightAmbient LightKind = iota
	LightPoint
	LightDirectional
)

// Light is a scene light; Position is a direction for directional lights
type Light struct {
	Kind      LightKind
	Color     Color
	Intensity float32
	Position  mgl32.Vec3
}

// Scene is the renderable root plus lighting
type Scene struct {
	Root   *Node
	Lights []Light
}

// New creates an empty scene with the default light rig
func New() *Scene {
	return &Scene{
		Root:   NewGroup("root"),
		Lights: DefaultLights(),
	}
}

// DefaultLights is the warm/cool rig used for every marker
func DefaultLights() []Light {
	return []Light{
		{Kind: LightAmbient, Color: 0xffffff, Intensity: 1.2},
		{Kind: LightPoint, Color: 0xff6b6b, Intensity: 1.5, Position: mgl32.Vec3{5, 5, 5}},
		{Kind: LightPoint, Color: 0x4ecdc4, Intensity: 1.2, Position: mgl32.Vec3{-5, 3, -5}},
		{Kind: LightDirectional, Color: 0xffffff, Intensity: 0.8, Position: mgl32.Vec3{1, 1, 1}},
	}
}

// Illumination returns a brightness factor in [0,1] for a world-space point
// Ambient contributes a floor, point and directional lights add by inverse-distance and facing
func (s *Scene) Illumination(p mgl32.Vec3) float32 {
	var total float32
	for _, l := range s.Lights {
		switch l.Kind {
		case LightAmbient:
			total += 0.25 * l.Intensity
		case LightPoint:
			d := l.Position.Sub(p).Len()
			total += 0.15 * l.Intensity / (1 + 0.1*d)
		case LightDirectional:
			dir := l.Position
			if dir.Len() > 0 {
				dir = dir.Normalize()
			}
			// Surfaces are treated as facing the viewer (+Z) and up (+Y)
			f := 0.5*dir.Y() + 0.5*dir.Z()
			if f > 0 {
				total += 0.2 * l.Intensity * f
			}
		}
	}
	if total > 1 {
		total = 1
	}
	return total
}
