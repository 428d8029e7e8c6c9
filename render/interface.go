package render

import "github.com/lixenwraith/ar-hunt/scene"

// Renderer draws a scene from a camera once per frame, on the frame loop goroutine
type Renderer interface {
	Render(s *scene.Scene, cam Camera) error
}
