package tracking

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/lixenwraith/ar-hunt/parameter"
	"github.com/lixenwraith/ar-hunt/scene"
)

// Pose is the anchor transform relative to the camera
type Pose struct {
	Position mgl32.Vec3
	Rotation mgl32.Vec3
}

// Anchor is the handle bound to one reference image
// Composed visuals are attached to Group; the tracker owns visibility and pose
type Anchor struct {
	ID    int
	Group *scene.Node

	// Hooks run on the loop goroutine during Poll
	OnFound func()
	OnLost  func()

	pose    Pose
	visible bool
}

func newAnchor(id int) *Anchor {
	g := scene.NewGroup(fmt.Sprintf("anchor-%d", id))
	g.Visible = false
	g.Scale = mgl32.Vec3{parameter.AnchorScale, parameter.AnchorScale, parameter.AnchorScale}
	return &Anchor{ID: id, Group: g}
}

// Visible reports whether the reference image is currently tracked
func (a *Anchor) Visible() bool { return a.visible }

// Pose returns the last tracked pose
func (a *Anchor) Pose() Pose { return a.pose }

// setPose moves the anchor group
func (a *Anchor) setPose(p Pose) {
	a.pose = p
	a.Group.Position = p.Position
	a.Group.Rotation = p.Rotation
}

// setVisible updates the flag and fires found/lost hooks on transitions only
func (a *Anchor) setVisible(v bool) bool {
	if a.visible == v {
		return false
	}
	a.visible = v
	a.Group.Visible = v
	if v {
		if a.OnFound != nil {
			a.OnFound()
		}
	} else if a.OnLost != nil {
		a.OnLost()
	}
	return true
}

// Attach adds a composed visual under the anchor
func (a *Anchor) Attach(n *scene.Node) { a.Group.Add(n) }

// DetachAll removes every attached visual
func (a *Anchor) DetachAll() {
	for len(a.Group.Children) > 0 {
		a.Group.Remove(a.Group.Children[0])
	}
}
