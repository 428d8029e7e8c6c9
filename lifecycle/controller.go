package lifecycle

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/lixenwraith/ar-hunt/config"
	"github.com/lixenwraith/ar-hunt/parameter"
)

var (
	// ErrUnknownMarker is returned for ids not present in the configuration
	ErrUnknownMarker = errors.New("unknown marker")
	// ErrNotCollectible is returned when Collect targets a clue or a treasure that is not revealed
	ErrNotCollectible = errors.New("marker not collectible")
)

// ResetReason tells the session why a marker went back to Idle
type ResetReason uint8

const (
	ResetLost ResetReason = iota
	ResetCollectTimeout
)

func (r ResetReason) String() string {
	if r == ResetCollectTimeout {
		return "collect-timeout"
	}
	return "lost"
}

// Hooks receive lifecycle transitions; all run synchronously inside Observe/Tick
// Every field is optional
type Hooks struct {
	Detected func(m config.MarkerConfig, now time.Time)
	Reveal   func(m config.MarkerConfig, now time.Time)
	Lost     func(m config.MarkerConfig, now time.Time)
	Reset    func(m config.MarkerConfig, reason ResetReason, now time.Time)
	Collect  func(m config.MarkerConfig, now time.Time)
}

// Options holds the lifecycle timing and policy
type Options struct {
	Dwell          time.Duration
	CollectPolicy  config.CollectPolicy
	CollectTimeout time.Duration
}

// OptionsFromConfig extracts lifecycle options
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Dwell:          cfg.Timing.Dwell,
		CollectPolicy:  cfg.CollectPolicy,
		CollectTimeout: cfg.Timing.CollectTimeout,
	}
}

// Controller runs the per-marker state machine
// It is not safe for concurrent use; the frame loop is its only caller
type Controller struct {
	opts    Options
	hooks   Hooks
	logger  zerolog.Logger
	markers map[int]config.MarkerConfig
	state   map[int]*Runtime
}

// NewController creates one Idle runtime per marker
func NewController(markers []config.MarkerConfig, opts Options, hooks Hooks, logger zerolog.Logger) *Controller {
	if opts.Dwell <= 0 {
		opts.Dwell = parameter.DwellThreshold
	}
	if opts.CollectTimeout <= 0 {
		opts.CollectTimeout = parameter.CollectTimeout
	}
	if opts.CollectPolicy == "" {
		opts.CollectPolicy = config.CollectTimeout
	}
	c := &Controller{
		opts:    opts,
		hooks:   hooks,
		logger:  logger.With().Str("component", "lifecycle").Logger(),
		markers: make(map[int]config.MarkerConfig, len(markers)),
		state:   make(map[int]*Runtime, len(markers)),
	}
	for _, m := range markers {
		c.markers[m.ID] = m
		c.state[m.ID] = &Runtime{ID: m.ID, Kind: m.Kind}
	}
	return c
}

// Observe feeds the current visibility of one marker; call once per marker per frame
func (c *Controller) Observe(id int, visible bool, now time.Time) error {
	rt, ok := c.state[id]
	if !ok {
		return fmt.Errorf("marker %d: %w", id, ErrUnknownMarker)
	}
	m := c.markers[id]

	if rt.State == Collected {
		// Loss is ignored while collected; the flag still tracks the camera
		rt.Visible = visible
		c.expireCollected(rt, m, now)
		return nil
	}

	switch {
	case visible && !rt.Visible:
		rt.Visible = true
		rt.DetectedAt = now
		rt.State = Dwelling
		rt.nextCountdown = c.opts.Dwell - parameter.CountdownLogStep
		c.logger.Info().Int("marker", id).Str("name", m.Label()).Msg("marker detected")
		if c.hooks.Detected != nil {
			c.hooks.Detected(m, now)
		}

	case !visible && rt.Visible:
		rt.Visible = false
		wasAnimating := rt.AnimationStarted
		rt.reset()
		c.logger.Info().Int("marker", id).Bool("was_animating", wasAnimating).Msg("marker lost")
		if c.hooks.Lost != nil {
			c.hooks.Lost(m, now)
		}
		if c.hooks.Reset != nil {
			c.hooks.Reset(m, ResetLost, now)
		}
		return nil
	}

	if rt.State == Dwelling && rt.Visible {
		c.checkDwell(rt, m, now)
	}
	return nil
}

// checkDwell triggers the reveal exactly once per continuous dwell
func (c *Controller) checkDwell(rt *Runtime, m config.MarkerConfig, now time.Time) {
	if rt.AnimationStarted {
		return
	}
	dwell := rt.Dwell(now)
	remaining := c.opts.Dwell - dwell

	for remaining > 0 && rt.nextCountdown > 0 && remaining <= rt.nextCountdown {
		c.logger.Debug().Int("marker", rt.ID).Dur("remaining", rt.nextCountdown).Msg("dwell countdown")
		rt.nextCountdown -= parameter.CountdownLogStep
	}

	if dwell < c.opts.Dwell {
		return
	}
	rt.AnimationStarted = true
	rt.State = Revealing
	c.logger.Info().Int("marker", rt.ID).Dur("dwell", dwell).Str("kind", string(m.Kind)).Msg("reveal triggered")
	if c.hooks.Reveal != nil {
		c.hooks.Reveal(m, now)
	}
}

// RevealComplete moves a Revealing marker to Revealed; stale completions are ignored
func (c *Controller) RevealComplete(id int) bool {
	rt, ok := c.state[id]
	if !ok || rt.State != Revealing {
		return false
	}
	rt.State = Revealed
	rt.Opened = true
	c.logger.Info().Int("marker", id).Msg("reveal complete")
	return true
}

// Collect marks a revealed treasure as collected
func (c *Controller) Collect(id int, now time.Time) error {
	rt, ok := c.state[id]
	if !ok {
		return fmt.Errorf("marker %d: %w", id, ErrUnknownMarker)
	}
	if rt.Kind != config.KindTreasure || rt.State != Revealed {
		return fmt.Errorf("marker %d in state %s: %w", id, rt.State, ErrNotCollectible)
	}
	rt.State = Collected
	rt.CollectedAt = now
	m := c.markers[id]
	c.logger.Info().Int("marker", id).Str("policy", string(c.opts.CollectPolicy)).Msg("treasure collected")
	if c.hooks.Collect != nil {
		c.hooks.Collect(m, now)
	}
	return nil
}

// Tick expires collected markers even when no visibility is observed
func (c *Controller) Tick(now time.Time) {
	for _, id := range c.ids() {
		rt := c.state[id]
		if rt.State == Collected {
			c.expireCollected(rt, c.markers[id], now)
		}
	}
}

// expireCollected clears a collected marker under the timeout policy
// The visibility edge is re-armed so a marker still in view starts a fresh dwell next frame
func (c *Controller) expireCollected(rt *Runtime, m config.MarkerConfig, now time.Time) {
	if c.opts.CollectPolicy != config.CollectTimeout {
		return
	}
	if now.Sub(rt.CollectedAt) < c.opts.CollectTimeout {
		return
	}
	rt.reset()
	rt.Visible = false
	rt.CollectedAt = time.Time{}
	c.logger.Info().Int("marker", rt.ID).Msg("collection expired")
	if c.hooks.Reset != nil {
		c.hooks.Reset(m, ResetCollectTimeout, now)
	}
}

// State returns a copy of the runtime record for id
func (c *Controller) State(id int) (Runtime, bool) {
	rt, ok := c.state[id]
	if !ok {
		return Runtime{}, false
	}
	return *rt, true
}

// Snapshot returns copies of every runtime record sorted by id
func (c *Controller) Snapshot() []Runtime {
	out := make([]Runtime, 0, len(c.state))
	for _, id := range c.ids() {
		out = append(out, *c.state[id])
	}
	return out
}

// Visible returns ids currently visible, sorted
func (c *Controller) Visible() []int {
	var out []int
	for _, id := range c.ids() {
		if c.state[id].Visible {
			out = append(out, id)
		}
	}
	return out
}

// Marker returns the descriptor for id
func (c *Controller) Marker(id int) (config.MarkerConfig, bool) {
	m, ok := c.markers[id]
	return m, ok
}

func (c *Controller) ids() []int {
	ids := make([]int, 0, len(c.state))
	for id := range c.state {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
