package render

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/lixenwraith/ar-hunt/parameter"
)

// Camera is a perspective camera; FOV is vertical, in degrees
type Camera struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3
	FOV      float32
	Near     float32
	Far      float32
}

// DefaultCamera sits at the origin looking down -Z at the marker board
func DefaultCamera() Camera {
	return Camera{
		Position: mgl32.Vec3{0, 0, 0},
		Target:   mgl32.Vec3{0, 0, -1},
		Up:       mgl32.Vec3{0, 1, 0},
		FOV:      parameter.CameraFOV,
		Near:     parameter.CameraNear,
		Far:      parameter.CameraFar,
	}
}

// View returns the world-to-camera matrix
func (c Camera) View() mgl32.Mat4 {
	up := c.Up
	if up.Len() == 0 {
		up = mgl32.Vec3{0, 1, 0}
	}
	return mgl32.LookAtV(c.Position, c.Target, up)
}

// ViewProjection combines view and perspective for the given width/height aspect
func (c Camera) ViewProjection(aspect float32) mgl32.Mat4 {
	if aspect <= 0 || math32.IsNaN(aspect) {
		aspect = 1
	}
	proj := mgl32.Perspective(mgl32.DegToRad(c.FOV), aspect, c.Near, c.Far)
	return proj.Mul4(c.View())
}
