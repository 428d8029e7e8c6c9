package model

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"

	"github.com/lixenwraith/ar-hunt/scene"
)

var (
	// ErrEmptyModel is returned for documents without a renderable scene
	ErrEmptyModel = errors.New("model has no scene nodes")
	// ErrMalformedModel is returned when the document references a null entry
	ErrMalformedModel = errors.New("malformed model")
)

const defaultModelColor scene.Color = 0xb8860b

// Load opens a glTF/GLB file and converts its default scene to a scene subtree
func Load(path string) (*scene.Node, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return Convert(doc, path)
}

// Convert builds a scene subtree from an already decoded document
// Each mesh primitive becomes a box spanning its POSITION accessor bounds
func Convert(doc *gltf.Document, name string) (*scene.Node, error) {
	if len(doc.Scenes) == 0 {
		return nil, ErrEmptyModel
	}
	sceneIdx := 0
	if doc.Scene != nil {
		sceneIdx = *doc.Scene
	}
	if sceneIdx < 0 || sceneIdx >= len(doc.Scenes) {
		return nil, fmt.Errorf("default scene %d out of range", sceneIdx)
	}
	sc := doc.Scenes[sceneIdx]
	if sc == nil {
		return nil, fmt.Errorf("scene %d: %w", sceneIdx, ErrMalformedModel)
	}
	roots := sc.Nodes
	if len(roots) == 0 {
		return nil, ErrEmptyModel
	}

	c := converter{doc: doc, visiting: make(map[int]bool)}
	if len(roots) == 1 {
		return c.node(roots[0])
	}
	root := scene.NewGroup(name)
	for _, idx := range roots {
		n, err := c.node(idx)
		if err != nil {
			return nil, err
		}
		root.Add(n)
	}
	return root, nil
}

type converter struct {
	doc      *gltf.Document
	visiting map[int]bool
}

func (c *converter) node(idx int) (*scene.Node, error) {
	if idx < 0 || idx >= len(c.doc.Nodes) {
		return nil, fmt.Errorf("node index %d out of range", idx)
	}
	if c.visiting[idx] {
		return nil, fmt.Errorf("node %d: cyclic hierarchy", idx)
	}
	c.visiting[idx] = true
	defer delete(c.visiting, idx)

	src := c.doc.Nodes[idx]
	if src == nil {
		return nil, fmt.Errorf("node %d: %w", idx, ErrMalformedModel)
	}
	name := src.Name
	if name == "" {
		name = fmt.Sprintf("node-%d", idx)
	}
	n := scene.NewGroup(name)

	t := src.TranslationOrDefault()
	n.Position = mgl32.Vec3{float32(t[0]), float32(t[1]), float32(t[2])}
	s := src.ScaleOrDefault()
	n.Scale = mgl32.Vec3{float32(s[0]), float32(s[1]), float32(s[2])}
	r := src.RotationOrDefault()
	q := mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}
	if q != mgl32.QuatIdent() {
		n.Orientation = &q
	}

	if src.Mesh != nil {
		if err := c.attachMesh(n, *src.Mesh); err != nil {
			return nil, fmt.Errorf("node %q: %w", name, err)
		}
	}

	for _, child := range src.Children {
		cn, err := c.node(child)
		if err != nil {
			return nil, err
		}
		n.Add(cn)
	}
	return n, nil
}

// attachMesh adds one box child per primitive; a single primitive is set directly on n
func (c *converter) attachMesh(n *scene.Node, meshIdx int) error {
	if meshIdx < 0 || meshIdx >= len(c.doc.Meshes) {
		return fmt.Errorf("mesh index %d out of range", meshIdx)
	}
	mesh := c.doc.Meshes[meshIdx]
	if mesh == nil {
		return fmt.Errorf("mesh %d: %w", meshIdx, ErrMalformedModel)
	}
	prims := mesh.Primitives
	for i, p := range prims {
		if p == nil {
			return fmt.Errorf("primitive %d: %w", i, ErrMalformedModel)
		}
		posIdx, ok := p.Attributes["POSITION"]
		if !ok || posIdx < 0 || posIdx >= len(c.doc.Accessors) {
			continue
		}
		acc := c.doc.Accessors[posIdx]
		if acc == nil {
			return fmt.Errorf("accessor %d: %w", posIdx, ErrMalformedModel)
		}
		if len(acc.Min) < 3 || len(acc.Max) < 3 {
			return fmt.Errorf("primitive %d: POSITION accessor lacks bounds", i)
		}
		lo := mgl32.Vec3{float32(acc.Min[0]), float32(acc.Min[1]), float32(acc.Min[2])}
		hi := mgl32.Vec3{float32(acc.Max[0]), float32(acc.Max[1]), float32(acc.Max[2])}
		size := hi.Sub(lo)
		center := lo.Add(hi).Mul(0.5)

		box := scene.Box(size.X(), size.Y(), size.Z(), c.color(p))
		if len(prims) == 1 && center == (mgl32.Vec3{}) {
			n.Mesh = box
			continue
		}
		n.Add(scene.NewMeshNode(fmt.Sprintf("%s-prim-%d", n.Name, i), box, center))
	}
	return nil
}

func (c *converter) color(p *gltf.Primitive) scene.Color {
	if p.Material == nil || *p.Material < 0 || *p.Material >= len(c.doc.Materials) {
		return defaultModelColor
	}
	m := c.doc.Materials[*p.Material]
	if m == nil || m.PBRMetallicRoughness == nil {
		return defaultModelColor
	}
	f := m.PBRMetallicRoughness.BaseColorFactorOrDefault()
	to8 := func(v float64) uint32 {
		if v <= 0 {
			return 0
		}
		if v >= 1 {
			return 255
		}
		return uint32(v * 255)
	}
	return scene.Color(to8(f[0])<<16 | to8(f[1])<<8 | to8(f[2]))
}
