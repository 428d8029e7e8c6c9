package render

import (
	"sync"

	"github.com/lixenwraith/ar-hunt/scene"
)

// Frame is one recorded render call
type Frame struct {
	Primitives []Primitive
	Camera     Camera
}

// Recorder is a headless renderer that projects each frame and keeps the result
type Recorder struct {
	Width, Height int
	// Err, when set, is returned from every Render call
	Err error

	mu     sync.Mutex
	frames []Frame
	limit  int
}

// NewRecorder creates a recorder keeping at most limit frames (0 keeps all)
func NewRecorder(w, h, limit int) *Recorder {
	return &Recorder{Width: w, Height: h, limit: limit}
}

func (r *Recorder) Render(s *scene.Scene, cam Camera) error {
	prims := Project(s, cam, r.Width, r.Height)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, Frame{Primitives: prims, Camera: cam})
	if r.limit > 0 && len(r.frames) > r.limit {
		r.frames = r.frames[len(r.frames)-r.limit:]
	}
	return r.Err
}

// Count returns the number of retained frames
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

// Last returns the most recent frame
func (r *Recorder) Last() (Frame, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.frames) == 0 {
		return Frame{}, false
	}
	return r.frames[len(r.frames)-1], true
}
