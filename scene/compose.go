package scene

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/lixenwraith/ar-hunt/config"
	"github.com/lixenwraith/ar-hunt/parameter"
	"github.com/lixenwraith/ar-hunt/particle"
)

// ErrWrongKind is returned when a builder receives a descriptor of the other marker kind
var ErrWrongKind = errors.New("marker kind does not match visual")

// Palette
const (
	ColorArrow    Color = 0xff0000
	ColorWood     Color = 0xb8860b
	ColorIron     Color = 0x2c2c2c
	ColorRivet    Color = 0x404040
	ColorKeyhole  Color = 0x000000
	ColorGold     Color = 0xffd700
	ColorEmboss   Color = 0xffa500
	ColorFallback Color = 0xffd700
)

// ClueVisual is the arrow attached to a clue marker
type ClueVisual struct {
	Root      *Node
	Spinnable *Node // rotated around Z by the spin animation
}

// TreasureVisual is the chest attached to a treasure marker
type TreasureVisual struct {
	Root          *Node
	Lid           *Node // pivot rotated around X
	Treasure      *Node // hidden until the lid is half open
	Coins         []*Node
	Bars          []*Node
	Particles     *particle.Pool
	ParticleNodes []*Node
}

// TreasureOptions carries the non-descriptor inputs of the chest builder
type TreasureOptions struct {
	ParticleCount int
	Particles     particle.Settings
	Rand          *particle.FastRand
	// Model, when set, replaces the procedural chest; ownership passes to the visual
	Model      *Node
	ModelScale float32
}

// BuildClueVisual builds the red arrow: shaft and cone head inside a spinnable group
func BuildClueVisual(cfg config.MarkerConfig) (*ClueVisual, error) {
	if cfg.Kind != config.KindClue {
		return nil, fmt.Errorf("marker %d: %w", cfg.ID, ErrWrongKind)
	}
	root := NewGroup(fmt.Sprintf("clue-%d", cfg.ID))
	arrow := NewGroup("arrow")
	arrow.Add(
		NewMeshNode("shaft", Cylinder(0.02, 0.02, 0.6, ColorArrow), mgl32.Vec3{0, 0.3, 0}),
		NewMeshNode("head", Cone(0.06, 0.2, ColorArrow), mgl32.Vec3{0, 0.7, 0}),
	)
	root.Add(arrow)
	return &ClueVisual{Root: root, Spinnable: arrow}, nil
}

// BuildTreasureVisual builds the chest, its hidden treasure and one point node per particle
func BuildTreasureVisual(cfg config.MarkerConfig, opts TreasureOptions) (*TreasureVisual, error) {
	if cfg.Kind != config.KindTreasure {
		return nil, fmt.Errorf("marker %d: %w", cfg.ID, ErrWrongKind)
	}
	rng := opts.Rand
	if rng == nil {
		rng = particle.NewFastRand(uint64(cfg.ID) + 1)
	}

	v := &TreasureVisual{Root: NewGroup(fmt.Sprintf("treasure-%d", cfg.ID))}

	if opts.Model != nil {
		v.Lid = wrapModel(v.Root, opts.Model, opts.ModelScale)
	} else {
		v.Root.Add(buildChestBody())
		v.Lid = buildLid()
		v.Root.Add(v.Lid)
	}

	v.Treasure, v.Coins, v.Bars = buildTreasure(rng)
	v.Root.Add(v.Treasure)

	v.Particles = particle.NewPool(opts.ParticleCount, opts.Particles, rng)
	for i := 0; i < v.Particles.Len(); i++ {
		n := NewMeshNode(fmt.Sprintf("particle-%d", i), Point(parameter.ParticleSize, ColorGold), v.Particles.Particles()[i].Position)
		n.Visible = false
		v.ParticleNodes = append(v.ParticleNodes, n)
		v.Root.Add(n)
	}
	return v, nil
}

// SyncParticles copies pool state onto the particle nodes
func (v *TreasureVisual) SyncParticles() {
	ps := v.Particles.Particles()
	for i, n := range v.ParticleNodes {
		p := ps[i]
		n.Position = p.Position
		n.Mesh.Opacity = p.Opacity
		n.Visible = p.Active && p.Opacity > 0
	}
}

// Fallback builds the minimal primitive substituted when a visual cannot be produced
func Fallback(cfg config.MarkerConfig) *Node {
	root := NewGroup(fmt.Sprintf("fallback-%d", cfg.ID))
	cube := NewMeshNode("cube", Box(0.2, 0.2, 0.2, ColorFallback), mgl32.Vec3{0, 0.1, 0})
	cube.Mesh.Emissive = 0.2
	root.Add(cube)
	return root
}

// wrapModel attaches a loaded model; a child named "Lid" becomes the pivot, otherwise the whole model does
func wrapModel(root, model *Node, scale float32) *Node {
	if scale <= 0 {
		scale = 1
	}
	holder := NewGroup("model")
	holder.Scale = mgl32.Vec3{scale, scale, scale}
	holder.Add(model)
	root.Add(holder)

	if lid := model.Find("Lid"); lid != nil && lid != model {
		parent := lid.Parent()
		pivot := NewGroup("lid-pivot")
		pivot.Position = lid.Position
		lid.Position = mgl32.Vec3{}
		parent.Add(pivot)
		pivot.Add(lid)
		return pivot
	}
	return holder
}

func buildChestBody() *Node {
	body := NewMeshNode("body", Box(0.4, 0.15, 0.3, ColorWood), mgl32.Vec3{0, 0.075, 0})

	// Children are in body space, whose origin sits at y 0.075
	off := func(x, y, z float32) mgl32.Vec3 { return mgl32.Vec3{x, y - 0.075, z} }

	for i, y := range []float32{0.02, 0.075, 0.13} {
		body.Add(NewMeshNode(fmt.Sprintf("band-h%d", i), Box(0.42, 0.025, 0.32, ColorIron), off(0, y, 0)))
	}
	body.Add(
		NewMeshNode("band-left", Box(0.025, 0.16, 0.32, ColorIron), off(-0.19, 0.075, 0)),
		NewMeshNode("band-right", Box(0.025, 0.16, 0.32, ColorIron), off(0.19, 0.075, 0)),
	)

	for i := 0; i < 3; i++ {
		for j := 0; j < 5; j++ {
			x := -0.15 + float32(j)*0.075
			y := 0.02 + float32(i)*0.055
			for _, z := range []float32{0.16, -0.16} {
				r := NewMeshNode("rivet", Cylinder(0.008, 0.008, 0.01, ColorRivet), off(x, y, z))
				r.Rotation = mgl32.Vec3{math32.Pi / 2, 0, 0}
				body.Add(r)
			}
		}
	}

	body.Add(NewMeshNode("lock", Box(0.06, 0.04, 0.02, ColorIron), off(0, 0.075, 0.16)))
	keyhole := NewMeshNode("keyhole", Cylinder(0.008, 0.008, 0.005, ColorKeyhole), off(0, 0.075, 0.17))
	keyhole.Rotation = mgl32.Vec3{math32.Pi / 2, 0, 0}
	body.Add(keyhole)
	return body
}

// buildLid returns the lid pivot placed on the back top edge; geometry is shifted forward so it covers the body
func buildLid() *Node {
	lid := NewGroup("lid")
	lid.Position = mgl32.Vec3{0, 0.15, -0.15}

	const fwd = 0.15
	dome := NewMeshNode("lid-dome", Cylinder(0.2, 0.22, 0.08, ColorWood), mgl32.Vec3{0, 0.04, fwd})
	dome.Rotation = mgl32.Vec3{0, 0, math32.Pi}
	band := NewMeshNode("lid-band", Cylinder(0.21, 0.23, 0.02, ColorIron), mgl32.Vec3{0, 0.05, fwd})
	band.Rotation = mgl32.Vec3{0, 0, math32.Pi}

	front := NewMeshNode("lid-edge-front", Torus(0.2, 0.01, ColorIron), mgl32.Vec3{0, 0.08, fwd + 0.05})
	front.Rotation = mgl32.Vec3{math32.Pi / 2, 0, 0}
	back := NewMeshNode("lid-edge-back", Torus(0.2, 0.01, ColorIron), mgl32.Vec3{0, 0.08, fwd - 0.05})
	back.Rotation = mgl32.Vec3{math32.Pi / 2, math32.Pi, 0}

	left := NewMeshNode("handle-left", Torus(0.03, 0.008, ColorRivet), mgl32.Vec3{-0.18, 0.04, fwd})
	left.Rotation = mgl32.Vec3{0, 0, math32.Pi / 2}
	right := NewMeshNode("handle-right", Torus(0.03, 0.008, ColorRivet), mgl32.Vec3{0.18, 0.04, fwd})
	right.Rotation = mgl32.Vec3{0, 0, math32.Pi / 2}

	for i := 0; i < 7; i++ {
		a := float32(i)/6*math32.Pi - math32.Pi/2
		lid.Add(NewMeshNode("lid-rivet", Cylinder(0.008, 0.008, 0.01, ColorRivet),
			mgl32.Vec3{math32.Cos(a) * 0.18, 0.06, fwd + math32.Sin(a)*0.18}))
	}
	lid.Add(dome, band, front, back, left, right)
	return lid
}

// buildTreasure lays out coin stacks, loose coins and gold bars; the group starts hidden
func buildTreasure(rng *particle.FastRand) (*Node, []*Node, []*Node) {
	treasure := NewGroup("treasure")
	treasure.Visible = false

	coin := func() *Mesh { return Cylinder(0.025, 0.025, 0.003, ColorGold) }
	var coins, bars []*Node

	const stacks = 8
	for s := 0; s < stacks; s++ {
		height := 3 + int(rng.Float32()*5)
		angle := float32(s) / stacks * 2 * math32.Pi
		radius := 0.08 + rng.Float32()*0.06
		sx, sz := math32.Cos(angle)*radius, math32.Sin(angle)*radius

		for c := 0; c < height; c++ {
			n := NewMeshNode("coin", coin(), mgl32.Vec3{
				sx + rng.Signed(0.005),
				0.16 + float32(c)*0.0035,
				sz + rng.Signed(0.005),
			})
			n.Rotation = mgl32.Vec3{0, rng.Float32() * 2 * math32.Pi, 0}
			if rng.Float32() > 0.7 {
				n.Add(NewMeshNode("emboss", Cylinder(0.015, 0.015, 0.001, ColorEmboss), mgl32.Vec3{0, 0.0025, 0}))
			}
			treasure.Add(n)
			coins = append(coins, n)
		}
	}

	for i := 0; i < 12; i++ {
		n := NewMeshNode("coin-loose", coin(), mgl32.Vec3{
			rng.Signed(0.125),
			0.16 + rng.Float32()*0.02,
			rng.Signed(0.09),
		})
		n.Rotation = mgl32.Vec3{rng.Float32() * math32.Pi, rng.Float32() * math32.Pi, rng.Float32() * math32.Pi}
		treasure.Add(n)
		coins = append(coins, n)
	}

	for i := 0; i < 3; i++ {
		n := NewMeshNode("bar", Box(0.04, 0.015, 0.02, ColorGold), mgl32.Vec3{rng.Signed(0.05), 0.167, rng.Signed(0.05)})
		n.Rotation = mgl32.Vec3{0, rng.Float32() * math32.Pi, 0}
		treasure.Add(n)
		bars = append(bars, n)
	}
	return treasure, coins, bars
}
