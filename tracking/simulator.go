package tracking

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/ar-hunt/config"
	"github.com/lixenwraith/ar-hunt/parameter"
	"github.com/lixenwraith/ar-hunt/scene"
)

type visibilityEvent struct {
	id      int
	visible bool
	toggle  bool
}

// Simulator is a tracking service driven by keyboard input or a timed script
// It validates the target bundle and opens the camera like a real tracker
type Simulator struct {
	bundle string
	camera Camera
	logger zerolog.Logger

	root    *scene.Node
	anchors map[int]*Anchor
	order   []int

	events chan visibilityEvent

	script    []config.ScriptStep
	scriptPos int
	startedAt time.Time

	running atomic.Bool
	mu      sync.Mutex // serializes Start/Stop
}

// NewSimulator creates a simulator for bundle; camera may be nil for a NullCamera
func NewSimulator(bundle string, camera Camera, script []config.ScriptStep, logger zerolog.Logger) *Simulator {
	if camera == nil {
		camera = NullCamera{}
	}
	steps := append([]config.ScriptStep(nil), script...)
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].At < steps[j].At })

	return &Simulator{
		bundle:  bundle,
		camera:  camera,
		logger:  logger.With().Str("component", "tracking").Logger(),
		root:    scene.NewGroup("anchors"),
		anchors: make(map[int]*Anchor),
		events:  make(chan visibilityEvent, parameter.PostQueueSize),
		script:  steps,
	}
}

// Root returns the node every anchor group hangs from
func (s *Simulator) Root() *scene.Node { return s.root }

// Camera returns the capture device used by Start
func (s *Simulator) Camera() Camera { return s.camera }

// AddAnchor registers a reference image index, placing it on the simulated marker board
func (s *Simulator) AddAnchor(id int) (*Anchor, error) {
	if s.running.Load() {
		return nil, ErrRunning
	}
	if _, ok := s.anchors[id]; ok {
		return nil, fmt.Errorf("anchor %d: %w", id, ErrDuplicateAnchor)
	}
	a := newAnchor(id)
	s.anchors[id] = a
	s.order = append(s.order, id)
	s.root.Add(a.Group)
	s.layout()
	return a, nil
}

// layout places anchors on a centered grid in front of the camera
func (s *Simulator) layout() {
	n := len(s.order)
	rows := (n + parameter.AnchorColumns - 1) / parameter.AnchorColumns
	cols := parameter.AnchorColumns
	if n < cols {
		cols = n
	}
	for i, id := range s.order {
		col, row := i%parameter.AnchorColumns, i/parameter.AnchorColumns
		x := (float32(col) - float32(cols-1)/2) * parameter.AnchorSpacingX
		y := (float32(rows-1)/2 - float32(row)) * parameter.AnchorSpacingY
		s.anchors[id].setPose(Pose{Position: mgl32.Vec3{x, y, -parameter.CameraDistance}})
	}
}

// Anchor returns the anchor for id
func (s *Simulator) Anchor(id int) (*Anchor, bool) {
	a, ok := s.anchors[id]
	return a, ok
}

// Anchors returns anchors in registration order
func (s *Simulator) Anchors() []*Anchor {
	out := make([]*Anchor, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.anchors[id])
	}
	return out
}

// Start validates the bundle and script, then opens the camera; failures leave the simulator stopped
func (s *Simulator) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running.Load() {
		return nil
	}

	info, err := os.Stat(s.bundle)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrBundleMissing, s.bundle, err)
	}
	if info.IsDir() || info.Size() == 0 {
		return fmt.Errorf("%w: %s is empty", ErrBundleMissing, s.bundle)
	}

	for i, step := range s.script {
		if _, ok := s.anchors[step.Marker]; !ok {
			return fmt.Errorf("script step %d: marker %d: %w", i, step.Marker, ErrUnknownAnchor)
		}
	}

	if err := s.camera.Open(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrCameraUnavailable, err)
	}

	s.scriptPos = 0
	s.startedAt = time.Time{}
	s.running.Store(true)
	s.logger.Info().Str("bundle", s.bundle).Str("camera", s.camera.Name()).Int("anchors", len(s.order)).Msg("tracking started")
	return nil
}

// Stop halts tracking; anchors keep their last state and no further hooks fire
// The camera is released separately by the owner after Stop returns
func (s *Simulator) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	for {
		select {
		case <-s.events:
		default:
			s.logger.Info().Msg("tracking stopped")
			return nil
		}
	}
}

// Running reports whether Start succeeded and Stop has not been called
func (s *Simulator) Running() bool { return s.running.Load() }

// Set queues a visibility change; safe from any goroutine
// Returns false if the queue is full or the tracker is stopped
func (s *Simulator) Set(id int, visible bool) bool {
	return s.push(visibilityEvent{id: id, visible: visible})
}

// Toggle queues a visibility flip; safe from any goroutine
func (s *Simulator) Toggle(id int) bool {
	return s.push(visibilityEvent{id: id, toggle: true})
}

func (s *Simulator) push(ev visibilityEvent) bool {
	if !s.running.Load() {
		return false
	}
	select {
	case s.events <- ev:
		return true
	default:
		s.logger.Warn().Int("marker", ev.id).Msg("visibility queue full, event dropped")
		return false
	}
}

// Poll applies due script steps then queued events, in that order
func (s *Simulator) Poll(now time.Time) {
	if !s.running.Load() {
		return
	}
	if s.startedAt.IsZero() {
		s.startedAt = now
	}

	elapsed := now.Sub(s.startedAt)
	for s.scriptPos < len(s.script) && s.script[s.scriptPos].At <= elapsed {
		step := s.script[s.scriptPos]
		s.scriptPos++
		s.apply(visibilityEvent{id: step.Marker, visible: step.Visible})
	}

	for {
		select {
		case ev := <-s.events:
			s.apply(ev)
		default:
			return
		}
	}
}

func (s *Simulator) apply(ev visibilityEvent) {
	a, ok := s.anchors[ev.id]
	if !ok {
		s.logger.Debug().Int("marker", ev.id).Msg("visibility for unknown anchor ignored")
		return
	}
	v := ev.visible
	if ev.toggle {
		v = !a.visible
	}
	if a.setVisible(v) {
		s.logger.Debug().Int("marker", ev.id).Bool("visible", v).Msg("anchor visibility changed")
	}
}
