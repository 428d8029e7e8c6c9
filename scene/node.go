package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Node is a transform in the scene graph, optionally carrying a mesh
// Rotation is Euler XYZ in radians; Orientation, when set, replaces it (loaded models)
type Node struct {
	Name        string
	Position    mgl32.Vec3
	Rotation    mgl32.Vec3
	Orientation *mgl32.Quat
	Scale       mgl32.Vec3
	Visible     bool
	Mesh        *Mesh
	Children    []*Node

	parent *Node
}

// NewGroup creates an empty visible transform node
func NewGroup(name string) *Node {
	return &Node{
		Name:    name,
		Scale:   mgl32.Vec3{1, 1, 1},
		Visible: true,
	}
}

// NewMeshNode creates a visible node drawing mesh at pos
func NewMeshNode(name string, mesh *Mesh, pos mgl32.Vec3) *Node {
	n := NewGroup(name)
	n.Mesh = mesh
	n.Position = pos
	return n
}

// Add attaches children, detaching them from any previous parent
func (n *Node) Add(children ...*Node) *Node {
	for _, c := range children {
		if c == nil {
			continue
		}
		if c.parent != nil {
			c.parent.Remove(c)
		}
		c.parent = n
		n.Children = append(n.Children, c)
	}
	return n
}

// Remove detaches child, returns false if it was not a direct child
func (n *Node) Remove(child *Node) bool {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.parent = nil
			return true
		}
	}
	return false
}

// Parent returns the attachment parent, nil for roots
func (n *Node) Parent() *Node { return n.parent }

// Detach removes n from its parent
func (n *Node) Detach() {
	if n.parent != nil {
		n.parent.Remove(n)
	}
}

// LocalMatrix composes translation, rotation and scale
func (n *Node) LocalMatrix() mgl32.Mat4 {
	t := mgl32.Translate3D(n.Position.X(), n.Position.Y(), n.Position.Z())
	var r mgl32.Mat4
	if n.Orientation != nil {
		r = n.Orientation.Mat4()
	} else {
		r = mgl32.AnglesToQuat(n.Rotation.X(), n.Rotation.Y(), n.Rotation.Z(), mgl32.XYZ).Mat4()
	}
	s := mgl32.Scale3D(n.Scale.X(), n.Scale.Y(), n.Scale.Z())
	return t.Mul4(r).Mul4(s)
}

// WorldMatrix composes local matrices up to the root
func (n *Node) WorldMatrix() mgl32.Mat4 {
	m := n.LocalMatrix()
	for p := n.parent; p != nil; p = p.parent {
		m = p.LocalMatrix().Mul4(m)
	}
	return m
}

// WorldVisible reports whether n and all its ancestors are visible
func (n *Node) WorldVisible() bool {
	for c := n; c != nil; c = c.parent {
		if !c.Visible {
			return false
		}
	}
	return true
}

// Walk visits visible nodes depth-first with their world matrix
// Returning false from fn skips the node's subtree
func (n *Node) Walk(fn func(node *Node, world mgl32.Mat4) bool) {
	var base mgl32.Mat4
	if n.parent != nil {
		base = n.parent.WorldMatrix()
	} else {
		base = mgl32.Ident4()
	}
	n.walk(base, fn)
}

func (n *Node) walk(parent mgl32.Mat4, fn func(*Node, mgl32.Mat4) bool) {
	if !n.Visible {
		return
	}
	world := parent.Mul4(n.LocalMatrix())
	if !fn(n, world) {
		return
	}
	for _, c := range n.Children {
		c.walk(world, fn)
	}
}

// Find returns the first descendant (or n itself) with the given name
func (n *Node) Find(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, c := range n.Children {
		if f := c.Find(name); f != nil {
			return f
		}
	}
	return nil
}

// Count returns the number of nodes in the subtree, including n
func (n *Node) Count() int {
	total := 1
	for _, c := range n.Children {
		total += c.Count()
	}
	return total
}

// Clone deep-copies the subtree; the copy is detached
// Meshes are copied so per-instance material changes do not leak between clones
func (n *Node) Clone() *Node {
	c := &Node{
		Name:     n.Name,
		Position: n.Position,
		Rotation: n.Rotation,
		Scale:    n.Scale,
		Visible:  n.Visible,
	}
	if n.Orientation != nil {
		q := *n.Orientation
		c.Orientation = &q
	}
	if n.Mesh != nil {
		m := *n.Mesh
		c.Mesh = &m
	}
	for _, child := range n.Children {
		c.Add(child.Clone())
	}
	return c
}
