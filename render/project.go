package render

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/lixenwraith/ar-hunt/parameter"
	"github.com/lixenwraith/ar-hunt/scene"
)

// Primitive is a mesh projected into screen cells
type Primitive struct {
	Node   *scene.Node
	X0, Y0 int // top-left cell, inclusive
	X1, Y1 int // bottom-right cell, inclusive
	Depth  float32
	Color  RGB
	Alpha  float32
}

// Center returns the rectangle center cell
func (p Primitive) Center() (int, int) {
	return (p.X0 + p.X1) / 2, (p.Y0 + p.Y1) / 2
}

// Project maps every visible mesh of s to a w×h cell grid and returns primitives sorted far to near
// Meshes are drawn as their projected bounding rectangles; anything crossing the near plane is dropped
func Project(s *scene.Scene, cam Camera, w, h int) []Primitive {
	if w <= 0 || h <= 0 || s == nil || s.Root == nil {
		return nil
	}
	aspect := float32(w) * parameter.CellAspect / float32(h)
	vp := cam.ViewProjection(aspect)
	view := cam.View()

	var out []Primitive
	s.Root.Walk(func(n *scene.Node, world mgl32.Mat4) bool {
		if n.Mesh == nil {
			return true
		}
		p, ok := projectMesh(n, world, vp, view, w, h)
		if !ok {
			return true
		}
		center := world.Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3()
		light := s.Illumination(center)
		p.Color = FromScene(n.Mesh.Color).Scale((0.35 + light) * (1 + n.Mesh.Emissive))
		p.Alpha = n.Mesh.Opacity
		if n.Mesh.Shape == scene.ShapePoint && p.Alpha <= 0 {
			return true
		}
		out = append(out, p)
		return true
	})

	// Painter's algorithm: far first
	sort.SliceStable(out, func(i, j int) bool { return out[i].Depth > out[j].Depth })
	return out
}

func projectMesh(n *scene.Node, world, vp, view mgl32.Mat4, w, h int) (Primitive, bool) {
	lo, hi := n.Mesh.Bounds()
	mvp := vp.Mul4(world)

	minX, minY := float32(1e9), float32(1e9)
	maxX, maxY := float32(-1e9), float32(-1e9)
	for i := 0; i < 8; i++ {
		corner := mgl32.Vec4{lo.X(), lo.Y(), lo.Z(), 1}
		if i&1 != 0 {
			corner[0] = hi.X()
		}
		if i&2 != 0 {
			corner[1] = hi.Y()
		}
		if i&4 != 0 {
			corner[2] = hi.Z()
		}
		clip := mvp.Mul4x1(corner)
		if clip.W() <= 0 {
			return Primitive{}, false
		}
		sx := (clip.X()/clip.W() + 1) / 2 * float32(w)
		sy := (1 - clip.Y()/clip.W()) / 2 * float32(h)
		minX, maxX = min(minX, sx), max(maxX, sx)
		minY, maxY = min(minY, sy), max(maxY, sy)
	}

	p := Primitive{Node: n, X0: int(minX), Y0: int(minY), X1: int(maxX), Y1: int(maxY)}
	if p.X1 < 0 || p.Y1 < 0 || p.X0 >= w || p.Y0 >= h {
		return Primitive{}, false
	}
	if n.Mesh.Shape == scene.ShapePoint {
		cx, cy := p.Center()
		p.X0, p.X1, p.Y0, p.Y1 = cx, cx, cy, cy
	}
	p.X0, p.Y0 = max(p.X0, 0), max(p.Y0, 0)
	p.X1, p.Y1 = min(p.X1, w-1), min(p.Y1, h-1)

	eye := view.Mul4(world).Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	p.Depth = -eye.Z()
	return p, true
}
