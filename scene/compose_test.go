package scene

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/ar-hunt/config"
	"github.com/lixenwraith/ar-hunt/particle"
)

var (
	clueCfg     = config.MarkerConfig{ID: 2, Kind: config.KindClue, FinalAngle: 3.14159}
	treasureCfg = config.MarkerConfig{ID: 10, Kind: config.KindTreasure, Points: 100, Reward: "Gold coins"}
)

func treasureOpts() TreasureOptions {
	return TreasureOptions{ParticleCount: 30, Particles: particle.DefaultSettings(), Rand: particle.NewFastRand(11)}
}

func TestBuildClueVisual(t *testing.T) {
	v, err := BuildClueVisual(clueCfg)
	require.NoError(t, err)

	assert.Same(t, v.Root, v.Spinnable.Parent())
	require.NotNil(t, v.Spinnable.Find("shaft"))
	head := v.Spinnable.Find("head")
	require.NotNil(t, head)
	assert.Equal(t, ShapeCone, head.Mesh.Shape)
	assert.Equal(t, ColorArrow, head.Mesh.Color)

	_, err = BuildClueVisual(treasureCfg)
	assert.True(t, errors.Is(err, ErrWrongKind))
}

func TestBuildTreasureVisual_Procedural(t *testing.T) {
	v, err := BuildTreasureVisual(treasureCfg, treasureOpts())
	require.NoError(t, err)

	assert.NotNil(t, v.Root.Find("body"))
	assert.Equal(t, "lid", v.Lid.Name)
	assert.Equal(t, mgl32.Vec3{0, 0.15, -0.15}, v.Lid.Position)

	assert.False(t, v.Treasure.Visible, "treasure hidden until reveal")
	assert.Len(t, v.Bars, 3)
	// 8 stacks of 3-7 coins plus 12 loose coins
	assert.GreaterOrEqual(t, len(v.Coins), 8*3+12)
	assert.LessOrEqual(t, len(v.Coins), 8*7+12)

	require.Equal(t, 30, v.Particles.Len())
	require.Len(t, v.ParticleNodes, 30)
	for _, n := range v.ParticleNodes {
		assert.False(t, n.Visible)
	}

	_, err = BuildTreasureVisual(clueCfg, treasureOpts())
	assert.ErrorIs(t, err, ErrWrongKind)
}

func TestBuildTreasureVisual_SyncParticles(t *testing.T) {
	v, err := BuildTreasureVisual(treasureCfg, treasureOpts())
	require.NoError(t, err)

	v.Particles.Activate()
	v.Particles.Step(0.016)
	v.SyncParticles()

	for i, n := range v.ParticleNodes {
		p := v.Particles.Particles()[i]
		assert.Equal(t, p.Position, n.Position)
		assert.Equal(t, p.Opacity, n.Mesh.Opacity)
	}

	v.Particles.Deactivate()
	v.SyncParticles()
	for _, n := range v.ParticleNodes {
		assert.False(t, n.Visible)
	}
}

func TestBuildTreasureVisual_ModelWithLid(t *testing.T) {
	model := NewGroup("Chest")
	lid := NewMeshNode("Lid", Box(0.4, 0.08, 0.3, ColorWood), mgl32.Vec3{0, 0.19, 0})
	model.Add(NewMeshNode("Body", Box(0.4, 0.15, 0.3, ColorWood), mgl32.Vec3{0, 0.075, 0}), lid)

	opts := treasureOpts()
	opts.Model = model
	opts.ModelScale = 0.5

	v, err := BuildTreasureVisual(treasureCfg, opts)
	require.NoError(t, err)

	assert.Equal(t, "lid-pivot", v.Lid.Name)
	assert.Same(t, v.Lid, lid.Parent())
	assert.Equal(t, mgl32.Vec3{0, 0.19, 0}, v.Lid.Position)
	assert.Equal(t, mgl32.Vec3{}, lid.Position)
	assert.Nil(t, v.Root.Find("body"), "procedural chest replaced")
}

func TestBuildTreasureVisual_ModelWithoutLid(t *testing.T) {
	opts := treasureOpts()
	opts.Model = NewMeshNode("Crate", Box(1, 1, 1, 0), mgl32.Vec3{})

	v, err := BuildTreasureVisual(treasureCfg, opts)
	require.NoError(t, err)
	assert.Equal(t, "model", v.Lid.Name)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, v.Lid.Scale, "non-positive scale means unscaled")
}

func TestFallback(t *testing.T) {
	n := Fallback(treasureCfg)
	cube := n.Find("cube")
	require.NotNil(t, cube)
	assert.Equal(t, ShapeBox, cube.Mesh.Shape)
}
