package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/ar-hunt/parameter"
)

// Loop drives one frame callback per interval on a single goroutine
// Other goroutines hand work to the loop through Post; nothing else touches frame state
type Loop struct {
	interval time.Duration
	clock    Clock
	frame    func(now time.Time)

	tasks chan func()

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	running  atomic.Bool
	frames   atomic.Uint64
}

// NewLoop creates a stopped loop
func NewLoop(interval time.Duration, clock Clock, frame func(now time.Time)) *Loop {
	if interval <= 0 {
		interval = parameter.FrameInterval
	}
	if clock == nil {
		clock = NewTimeProvider()
	}
	return &Loop{
		interval: interval,
		clock:    clock,
		frame:    frame,
		tasks:    make(chan func(), parameter.PostQueueSize),
		stopChan: make(chan struct{}),
	}
}

// Start launches the loop goroutine; later calls are no-ops
func (l *Loop) Start() {
	if l.running.CompareAndSwap(false, true) {
		l.wg.Add(1)
		Go(l.run)
	}
}

// Stop halts the loop and waits for the in-progress frame to finish
// After Stop returns no frame callback or posted task runs
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		close(l.stopChan)
		if l.running.Load() {
			l.wg.Wait()
		}
		l.running.Store(false)
	})
}

// Running reports whether the loop goroutine is active
func (l *Loop) Running() bool { return l.running.Load() }

// Frames returns the number of frames executed
func (l *Loop) Frames() uint64 { return l.frames.Load() }

// Post queues fn for the next frame; returns false if the loop stopped or the queue is full
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.stopChan:
		return false
	default:
	}
	select {
	case l.tasks <- fn:
		return true
	default:
		return false
	}
}

// Step runs pending tasks and one frame on the caller's goroutine
// Used for headless runs and tests; must not be mixed with Start
func (l *Loop) Step() {
	l.runFrame()
}

func (l *Loop) run() {
	defer l.wg.Done()

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopChan:
			return
		case <-ticker.C:
			// Stop may have been requested while waiting on the ticker
			select {
			case <-l.stopChan:
				return
			default:
			}
			l.runFrame()
		}
	}
}

func (l *Loop) runFrame() {
drain:
	for {
		select {
		case fn := <-l.tasks:
			fn()
		default:
			break drain
		}
	}
	if l.frame != nil {
		l.frame(l.clock.Now())
	}
	l.frames.Add(1)
}
