package scene

import "github.com/go-gl/mathgl/mgl32"

// Shape is the primitive a mesh stands for
type Shape uint8

const (
	ShapeBox Shape = iota
	ShapeCylinder
	ShapeCone
	ShapeSphere
	ShapeTorus
	ShapePoint
)

var shapeNames = [...]string{"box", "cylinder", "cone", "sphere", "torus", "point"}

func (s Shape) String() string {
	if int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return "unknown"
}

// Color is a packed 0xRRGGBB value
type Color uint32

// RGB unpacks the channels
func (c Color) RGB() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// Mesh is a primitive with a flat material
// Size meaning depends on Shape:
//   - box: width, height, depth
//   - cylinder/cone: radius, height, bottom radius
//   - sphere: radius in X
//   - torus: ring radius, tube radius
//   - point: radius in X
type Mesh struct {
	Shape    Shape
	Size     mgl32.Vec3
	Color    Color
	Emissive float32 // extra brightness in [0,1]
	Opacity  float32
}

// Box creates a box mesh
func Box(w, h, d float32, color Color) *Mesh {
	return &Mesh{Shape: ShapeBox, Size: mgl32.Vec3{w, h, d}, Color: color, Opacity: 1}
}

// Cylinder creates an upright cylinder mesh with distinct top and bottom radii
func Cylinder(top, bottom, h float32, color Color) *Mesh {
	return &Mesh{Shape: ShapeCylinder, Size: mgl32.Vec3{top, h, bottom}, Color: color, Opacity: 1}
}

// Cone creates an upright cone mesh
func Cone(radius, h float32, color Color) *Mesh {
	return &Mesh{Shape: ShapeCone, Size: mgl32.Vec3{0, h, radius}, Color: color, Opacity: 1}
}

// Sphere creates a sphere mesh
func Sphere(radius float32, color Color) *Mesh {
	return &Mesh{Shape: ShapeSphere, Size: mgl32.Vec3{radius, radius, radius}, Color: color, Opacity: 1}
}

// Torus creates a torus mesh lying in the XY plane
func Torus(radius, tube float32, color Color) *Mesh {
	return &Mesh{Shape: ShapeTorus, Size: mgl32.Vec3{radius, tube, 0}, Color: color, Opacity: 1}
}

// Point creates a single-cell point mesh, used for particles
func Point(radius float32, color Color) *Mesh {
	return &Mesh{Shape: ShapePoint, Size: mgl32.Vec3{radius, radius, radius}, Color: color}
}

// Bounds returns the local-space axis-aligned bounding box
func (m *Mesh) Bounds() (min, max mgl32.Vec3) {
	var half mgl32.Vec3
	switch m.Shape {
	case ShapeBox:
		half = m.Size.Mul(0.5)
	case ShapeCylinder, ShapeCone:
		r := m.Size.X()
		if m.Size.Z() > r {
			r = m.Size.Z()
		}
		half = mgl32.Vec3{r, m.Size.Y() / 2, r}
	case ShapeTorus:
		r := m.Size.X() + m.Size.Y()
		half = mgl32.Vec3{r, r, m.Size.Y()}
	default:
		r := m.Size.X()
		half = mgl32.Vec3{r, r, r}
	}
	return half.Mul(-1), half
}
