package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/ar-hunt/anim"
	"github.com/lixenwraith/ar-hunt/audio"
	"github.com/lixenwraith/ar-hunt/config"
	"github.com/lixenwraith/ar-hunt/hunt"
	"github.com/lixenwraith/ar-hunt/lifecycle"
	"github.com/lixenwraith/ar-hunt/model"
	"github.com/lixenwraith/ar-hunt/parameter"
	"github.com/lixenwraith/ar-hunt/particle"
	"github.com/lixenwraith/ar-hunt/render"
	"github.com/lixenwraith/ar-hunt/scene"
	"github.com/lixenwraith/ar-hunt/status"
	"github.com/lixenwraith/ar-hunt/tracking"
)

var (
	// ErrClosed is returned when starting a session that was already torn down
	ErrClosed = errors.New("session closed")
	// ErrNoTracker is returned when a session is created without a tracking service
	ErrNoTracker = errors.New("tracking service required")
)

// Options wires a session to its external services
// Only Config and Tracker are required
type Options struct {
	Config   *config.Config
	Tracker  tracking.Service
	Camera   tracking.Camera // released on Close after tracking stops
	Renderer render.Renderer // nil skips rendering
	View     *render.Camera  // nil uses render.DefaultCamera
	Audio    audio.Player
	Models   *model.Cache
	Clock    Clock
	Status   *status.Registry
	Logger   zerolog.Logger
	Seed     uint64 // particle randomness; 0 derives one from the clock
	// Manual disables the loop goroutine; frames run only through Step
	Manual bool
}

// Session owns every piece of mutable per-run state: controller, visuals, animations and pools
// All of it is touched only from the loop goroutine
type Session struct {
	ID string

	cfg      *config.Config
	tracker  tracking.Service
	camera   tracking.Camera
	renderer render.Renderer
	view     render.Camera
	audio    audio.Player
	models   *model.Cache
	clock    Clock
	status   *status.Registry
	logger   zerolog.Logger
	sampled  zerolog.Logger
	manual   bool

	loop       *Loop
	frameClock *FrameClock
	scene      *scene.Scene
	controller *lifecycle.Controller
	game       *hunt.Game
	anims      *anim.Track[int]
	visuals    map[int]*markerVisual
	order      []int
	rng        *particle.FastRand
	now        time.Time

	ctx    context.Context
	cancel context.CancelFunc

	notices  chan Notice
	snapshot atomic.Pointer[Snapshot]

	// Cached metric pointers
	stats sessionStats

	started   atomic.Bool
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// NewSession registers one anchor per marker, composes visuals and requests models
// Tracking is not started until Start
func NewSession(opts Options) (*Session, error) {
	if opts.Config == nil {
		return nil, config.ErrNoMarkers
	}
	if opts.Tracker == nil {
		return nil, ErrNoTracker
	}

	id := uuid.NewString()
	logger := opts.Logger.With().Str("session", id).Logger()

	s := &Session{
		ID:         id,
		cfg:        opts.Config,
		tracker:    opts.Tracker,
		camera:     opts.Camera,
		renderer:   opts.Renderer,
		view:       render.DefaultCamera(),
		audio:      opts.Audio,
		models:     opts.Models,
		clock:      opts.Clock,
		status:     opts.Status,
		logger:     logger,
		sampled:    logger.Sample(&zerolog.BurstSampler{Burst: 1, Period: time.Second}),
		manual:     opts.Manual,
		frameClock: NewFrameClock(parameter.MaxFrameDelta),
		scene:      scene.New(),
		anims:      anim.NewTrack[int](),
		visuals:    make(map[int]*markerVisual, len(opts.Config.Markers)),
		notices:    make(chan Notice, parameter.NoticeQueueSize),
	}
	if opts.View != nil {
		s.view = *opts.View
	}
	if s.audio == nil {
		s.audio = audio.Silent{}
	}
	if s.models == nil {
		s.models = model.NewCache(nil, logger)
	}
	if s.clock == nil {
		s.clock = NewTimeProvider()
	}
	if s.status == nil {
		s.status = status.NewRegistry()
	}
	s.stats = newSessionStats(s.status)
	seed := opts.Seed
	if seed == 0 {
		seed = uint64(s.clock.Now().UnixNano())
	}
	s.rng = particle.NewFastRand(seed)
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.scene.Root.Add(s.tracker.Root())
	s.controller = lifecycle.NewController(s.cfg.Markers, lifecycle.OptionsFromConfig(s.cfg), s.hooks(), logger)
	s.game = hunt.NewGame(s.cfg.Markers, logger)

	for _, m := range s.cfg.Markers {
		a, err := s.tracker.AddAnchor(m.ID)
		if err != nil {
			s.cancel()
			return nil, fmt.Errorf("register marker %d: %w", m.ID, err)
		}
		v := &markerVisual{marker: m, anchor: a}
		s.visuals[m.ID] = v
		s.order = append(s.order, m.ID)
		s.buildVisual(s.ctx, v)
	}

	s.loop = NewLoop(parameter.FrameInterval, s.clock, s.frame)

	s.stats.session.Store(id)
	s.stats.modelsPending.Store(int64(s.pendingCount()))
	if s.camera != nil {
		s.stats.camera.Store(s.camera.Name())
	}
	s.publish(time.Time{})

	logger.Info().Int("markers", len(s.order)).Int("pending_models", s.pendingCount()).Msg("session created")
	return s, nil
}

// Start starts tracking, then the frame loop
// A tracking failure leaves the session stopped and is returned for the alert panel
func (s *Session) Start(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if !s.started.CompareAndSwap(false, true) {
		return nil
	}
	if err := s.tracker.Start(ctx); err != nil {
		s.started.Store(false)
		s.logger.Error().Err(err).Msg("tracking start failed")
		return fmt.Errorf("start tracking: %w", err)
	}
	s.stats.tracking.Store(true)
	if !s.manual {
		s.loop.Start()
	}
	s.logger.Info().Bool("manual", s.manual).Msg("session started")
	return nil
}

// Step runs one frame on the caller's goroutine; only valid for Manual sessions
func (s *Session) Step() {
	s.loop.Step()
}

// Collect asks the loop to collect a revealed treasure; false if the request could not be queued
func (s *Session) Collect(id int) bool {
	return s.loop.Post(func() {
		if err := s.controller.Collect(id, s.clock.Now()); err != nil {
			s.logger.Debug().Err(err).Int("marker", id).Msg("collect rejected")
		}
	})
}

// CollectVisible collects every revealed treasure currently in view
func (s *Session) CollectVisible() bool {
	return s.loop.Post(func() {
		now := s.clock.Now()
		for _, rt := range s.controller.Snapshot() {
			if rt.Kind == config.KindTreasure && rt.State == lifecycle.Revealed && rt.Visible {
				_ = s.controller.Collect(rt.ID, now)
			}
		}
	})
}

// Notices delivers user-facing events; slow readers miss events rather than stall the loop
func (s *Session) Notices() <-chan Notice { return s.notices }

func (s *Session) notify(n Notice) {
	select {
	case s.notices <- n:
	default:
		s.logger.Debug().Int("marker", n.MarkerID).Stringer("kind", n.Kind).Msg("notice dropped")
	}
}

// Snapshot returns the state published by the last frame; safe from any goroutine
func (s *Session) Snapshot() *Snapshot {
	return s.snapshot.Load()
}

// Status returns the metrics registry
func (s *Session) Status() *status.Registry { return s.status }

// Scene returns the scene graph; only the loop goroutine may mutate it
func (s *Session) Scene() *scene.Scene { return s.scene }

// Close tears down in order: loop, tracking, camera, audio, then pending model loads
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		var errs []error

		s.loop.Stop()

		if err := s.tracker.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop tracking: %w", err))
		}
		s.stats.tracking.Store(false)

		if s.camera != nil {
			if err := s.camera.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close camera: %w", err))
			}
		}

		if err := s.audio.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close audio: %w", err))
		}

		s.cancel()
		s.models.Wait()
		s.anims.Clear()

		s.closeErr = errors.Join(errs...)
		if s.closeErr != nil {
			s.logger.Warn().Err(s.closeErr).Msg("session closed with errors")
		} else {
			s.logger.Info().Uint64("frames", s.loop.Frames()).Msg("session closed")
		}
	})
	return s.closeErr
}

// frame is the per-tick pipeline: delta, tracking and lifecycle, animation and particles, render
func (s *Session) frame(now time.Time) {
	s.now = now
	dt := s.frameClock.Tick(now)

	s.tracker.Poll(now)
	s.attachModels(now)

	for _, id := range s.order {
		v := s.visuals[id]
		if v.pending {
			continue
		}
		if err := s.controller.Observe(id, v.anchor.Visible(), now); err != nil {
			s.sampled.Warn().Err(err).Int("marker", id).Msg("observe failed")
		}
	}
	s.controller.Tick(now)

	s.update(now, dt)

	if s.renderer != nil {
		if err := s.renderer.Render(s.scene, s.view); err != nil {
			s.sampled.Warn().Err(err).Msg("render failed")
		}
	}

	s.publishMetrics(dt)
	s.publish(now)
}

func (s *Session) publishMetrics(dt time.Duration) {
	frames := s.loop.Frames() + 1
	visible := s.controller.Visible()

	s.stats.frames.Store(int64(frames))
	s.stats.frameDelta.Set(float64(dt) / float64(time.Millisecond))
	if dt > 0 {
		s.stats.fps.Smooth(1/dt.Seconds(), 0.1)
	}
	s.stats.visible.Store(int64(len(visible)))
	s.stats.anims.Store(int64(s.anims.Len()))
	s.stats.particles.Store(int64(s.activeParticles()))

	if frames%parameter.VisibleLogEveryFrames == 0 {
		s.sampled.Debug().Ints("visible", visible).Uint64("frame", frames).Msg("visible markers")
	}
}

func (s *Session) publish(now time.Time) {
	snap := &Snapshot{
		At:      now,
		Frame:   s.loop.Frames(),
		Running: s.started.Load() && !s.closed.Load(),
		Score:   s.game.Score(),
		Clues:   s.game.Clues(),
		Rewards: s.game.Rewards(),
	}
	snap.Found, snap.Total = s.game.Progress()
	for _, rt := range s.controller.Snapshot() {
		v := s.visuals[rt.ID]
		ms := MarkerStatus{
			ID:       rt.ID,
			Name:     v.marker.Label(),
			Kind:     v.marker.Kind,
			State:    rt.State,
			Visible:  rt.Visible,
			Pending:  v.pending,
			Fallback: v.fallback != nil,
		}
		if rt.State == lifecycle.Dwelling && !now.IsZero() {
			ms.Dwell = rt.Dwell(now)
		}
		snap.Markers = append(snap.Markers, ms)
	}
	s.snapshot.Store(snap)
}
