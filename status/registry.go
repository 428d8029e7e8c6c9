package status

import (
	"fmt"
	"sync/atomic"
)

// Metric keys written by the engine and read by the HUD
const (
	KeyFrames          = "engine.frames"
	KeyFrameDeltaMs    = "engine.delta_ms"
	KeyFPS             = "engine.fps"
	KeyVisibleMarkers  = "markers.visible"
	KeyRevealsStarted  = "reveals.started"
	KeyRevealsDone     = "reveals.completed"
	KeyActiveAnims     = "anim.active"
	KeyActiveParticles = "particles.active"
	KeyVisualFallbacks = "visual.fallbacks"
	KeyModelsPending   = "models.pending"
	KeyScore           = "hunt.score"
	KeyTrackingRunning = "tracking.running"
	KeyCamera          = "tracking.camera"
	KeySession         = "session.id"
)

// Registry groups typed metric maps
// Writers cache the pointer once and update atomics on the frame loop; readers may run anywhere
type Registry struct {
	Bools   *MetricMap[atomic.Bool]
	Ints    *MetricMap[atomic.Int64]
	Floats  *MetricMap[AtomicFloat]
	Strings *MetricMap[AtomicString]
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		Bools:   NewMetricMap[atomic.Bool](),
		Ints:    NewMetricMap[atomic.Int64](),
		Floats:  NewMetricMap[AtomicFloat](),
		Strings: NewMetricMap[AtomicString](),
	}
}

// TotalCount returns the number of registered metrics of every type
func (r *Registry) TotalCount() int {
	return r.Bools.Count() + r.Ints.Count() + r.Floats.Count() + r.Strings.Count()
}

// Entry is one formatted metric
type Entry struct {
	Key   string
	Value string
}

// Snapshot formats every metric, grouped by type and sorted by key within a type
func (r *Registry) Snapshot() []Entry {
	out := make([]Entry, 0, r.TotalCount())
	r.Bools.Range(func(k string, v *atomic.Bool) {
		out = append(out, Entry{k, fmt.Sprintf("%t", v.Load())})
	})
	r.Ints.Range(func(k string, v *atomic.Int64) {
		out = append(out, Entry{k, fmt.Sprintf("%d", v.Load())})
	})
	r.Floats.Range(func(k string, v *AtomicFloat) {
		out = append(out, Entry{k, fmt.Sprintf("%.1f", v.Get())})
	})
	r.Strings.Range(func(k string, v *AtomicString) {
		out = append(out, Entry{k, v.Load()})
	})
	return out
}
