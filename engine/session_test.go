package engine

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/ar-hunt/anim"
	"github.com/lixenwraith/ar-hunt/audio"
	"github.com/lixenwraith/ar-hunt/config"
	"github.com/lixenwraith/ar-hunt/lifecycle"
	"github.com/lixenwraith/ar-hunt/model"
	"github.com/lixenwraith/ar-hunt/parameter"
	"github.com/lixenwraith/ar-hunt/render"
	"github.com/lixenwraith/ar-hunt/scene"
	"github.com/lixenwraith/ar-hunt/status"
	"github.com/lixenwraith/ar-hunt/tracking"
)

var t0 = time.Unix(1_700_000_000, 0)

var (
	treasure10 = config.MarkerConfig{ID: 10, Kind: config.KindTreasure, Name: "Chest", Points: 100, Reward: "Gold coins"}
	clue3      = config.MarkerConfig{ID: 3, Kind: config.KindClue, Name: "Arrow", FinalAngle: math.Pi}
)

func testConfig(markers ...config.MarkerConfig) *config.Config {
	return &config.Config{
		CollectPolicy: config.CollectTimeout,
		AutoCollect:   true,
		Timing: config.Timing{
			Dwell:          2000 * time.Millisecond,
			LidOpen:        3000 * time.Millisecond,
			LidClose:       1500 * time.Millisecond,
			ArrowSpin:      3500 * time.Millisecond,
			SpinTurns:      6,
			RevealProgress: 0.5,
			CollectTimeout: 5 * time.Second,
		},
		Particles: config.Particles{Count: 30, Gravity: 0.008, FlickerRate: 10},
		Model:     config.Model{Scale: 1},
		Markers:   markers,
	}
}

// cueRecorder is an audio.Player that records cues and teardown
type cueRecorder struct {
	mu      sync.Mutex
	cues    []audio.Cue
	closed  bool
	onClose func()
}

func (r *cueRecorder) Play(c audio.Cue) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cues = append(r.cues, c)
}

func (r *cueRecorder) Close() error {
	r.mu.Lock()
	r.closed = true
	fn := r.onClose
	r.mu.Unlock()
	if fn != nil {
		fn()
	}
	return nil
}

func (r *cueRecorder) count(c audio.Cue) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, x := range r.cues {
		if x == c {
			n++
		}
	}
	return n
}

type harness struct {
	t     *testing.T
	s     *Session
	sim   *tracking.Simulator
	clock *MockTimeProvider
	rec   *render.Recorder
	cues  *cueRecorder
}

func writeBundle(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "targets.mind")
	require.NoError(t, os.WriteFile(path, []byte("MIND"), 0o644))
	return path
}

func newHarness(t *testing.T, cfg *config.Config, models *model.Cache) *harness {
	t.Helper()
	h := &harness{
		t:     t,
		sim:   tracking.NewSimulator(writeBundle(t), nil, nil, zerolog.Nop()),
		clock: NewMockTimeProvider(t0),
		rec:   render.NewRecorder(80, 40, 4),
		cues:  &cueRecorder{},
	}
	s, err := NewSession(Options{
		Config:   cfg,
		Tracker:  h.sim,
		Renderer: h.rec,
		Audio:    h.cues,
		Models:   models,
		Clock:    h.clock,
		Seed:     42,
		Manual:   true,
		Logger:   zerolog.Nop(),
	})
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	h.s = s
	return h
}

// at runs one frame at t0+ms
func (h *harness) at(ms int) {
	h.clock.SetTime(t0.Add(time.Duration(ms) * time.Millisecond))
	h.s.Step()
}

// run steps 16ms frames from one offset to another, inclusive of the end
func (h *harness) run(from, to int) {
	for ms := from; ms < to; ms += 16 {
		h.at(ms)
	}
	h.at(to)
}

func (h *harness) state(id int) lifecycle.State {
	rt, ok := h.s.controller.State(id)
	require.True(h.t, ok)
	return rt.State
}

func drainNotices(s *Session) []Notice {
	var out []Notice
	for {
		select {
		case n := <-s.Notices():
			out = append(out, n)
		default:
			return out
		}
	}
}

func TestSession_MetricsResolvedAtCreation(t *testing.T) {
	h := newHarness(t, testConfig(treasure10, clue3), nil)
	keys := h.s.status.TotalCount()

	h.sim.Set(10, true)
	h.run(0, 6000)

	assert.Equal(t, keys, h.s.status.TotalCount(), "frames write through cached pointers only")
	assert.Same(t, h.s.stats.frames, h.s.status.Ints.Get(status.KeyFrames))
	assert.Same(t, h.s.stats.revealsDone, h.s.status.Ints.Get(status.KeyRevealsDone))
	assert.EqualValues(t, 1, h.s.stats.revealsDone.Load())
	assert.Positive(t, h.s.stats.frames.Load())
}

func TestSession_TreasureScenario(t *testing.T) {
	cfg := testConfig(treasure10)
	cfg.AutoCollect = false
	h := newHarness(t, cfg, nil)
	tv := h.s.visuals[10].treasure
	require.NotNil(t, tv)

	require.True(t, h.sim.Set(10, true))
	h.at(0)
	assert.Equal(t, lifecycle.Dwelling, h.state(10))
	assert.Equal(t, 1, h.cues.count(audio.CueDetect))

	h.run(16, 1999)
	assert.Equal(t, lifecycle.Dwelling, h.state(10))

	h.at(2000)
	assert.Equal(t, lifecycle.Revealing, h.state(10))
	_, inFlight := h.s.anims.Get(10)
	assert.True(t, inFlight)

	h.run(2016, 3499)
	assert.False(t, tv.Treasure.Visible, "treasure hidden before half way")
	assert.False(t, tv.Particles.Active())

	h.at(3500)
	assert.True(t, tv.Treasure.Visible, "treasure shown 1500ms into the opening")
	assert.True(t, tv.Particles.Active())
	assert.Equal(t, 1, h.cues.count(audio.CueReveal))

	h.run(3516, 4999)
	assert.Equal(t, lifecycle.Revealing, h.state(10))

	h.at(5000)
	assert.Equal(t, lifecycle.Revealed, h.state(10))
	assert.Equal(t, float32(parameter.LidOpenAngle), tv.Lid.Rotation[0])
	assert.EqualValues(t, 1, h.s.status.Ints.Get(status.KeyRevealsDone).Load())

	// Still visible: no second reveal
	h.run(5016, 9000)
	assert.EqualValues(t, 1, h.s.status.Ints.Get(status.KeyRevealsStarted).Load())

	require.True(t, h.s.Collect(10))
	h.at(9016)
	assert.Equal(t, lifecycle.Collected, h.state(10))
	assert.Equal(t, 100, h.s.game.Score())

	var collected []Notice
	for _, n := range drainNotices(h.s) {
		if n.Kind == NoticeCollected {
			collected = append(collected, n)
		}
	}
	require.Len(t, collected, 1)
	assert.Equal(t, 100, collected[0].Points)
	assert.Equal(t, "Gold coins", collected[0].Text)

	snap := h.s.Snapshot()
	require.NotNil(t, snap)
	ms, ok := snap.Marker(10)
	require.True(t, ok)
	assert.Equal(t, lifecycle.Collected, ms.State)
	assert.Equal(t, 100, snap.Score)
}

func TestSession_ParticlesStayBounded(t *testing.T) {
	cfg := testConfig(treasure10)
	cfg.CollectPolicy = config.CollectPermanent
	h := newHarness(t, cfg, nil)
	tv := h.s.visuals[10].treasure

	h.sim.Set(10, true)
	h.run(0, 12000)
	require.True(t, tv.Particles.Active())
	for _, p := range tv.Particles.Particles() {
		assert.LessOrEqual(t, p.Life, p.MaxLife)
		assert.GreaterOrEqual(t, p.Opacity, float32(0))
		assert.LessOrEqual(t, p.Opacity, float32(1))
	}
	assert.Positive(t, h.s.status.Ints.Get(status.KeyActiveParticles).Load())
}

func TestSession_ClueScenario(t *testing.T) {
	h := newHarness(t, testConfig(clue3), nil)
	arrow := h.s.visuals[3].clue.Spinnable

	h.sim.Set(3, true)
	h.run(0, 2000)
	assert.Equal(t, lifecycle.Revealing, h.state(3))
	assert.Equal(t, 1, h.cues.count(audio.CueSpin))

	h.run(2016, 5499)
	assert.Equal(t, lifecycle.Revealing, h.state(3))
	assert.Greater(t, arrow.Rotation[2], float32(6*2*math.Pi), "ease-out-expo is nearly there")

	h.at(5500)
	assert.Equal(t, lifecycle.Revealed, h.state(3))
	assert.Equal(t, anim.SpinTarget(math.Pi, 6), arrow.Rotation[2])

	clues := h.s.game.Clues()
	require.Len(t, clues, 1)
	assert.Equal(t, "down", clues[0].Heading())
}

func TestSession_ShortDwellThenLost(t *testing.T) {
	h := newHarness(t, testConfig(treasure10), nil)

	h.sim.Set(10, true)
	h.run(0, 1500)
	h.sim.Set(10, false)
	h.at(1516)

	assert.Equal(t, lifecycle.Idle, h.state(10))
	h.run(1532, 4000)
	assert.Equal(t, lifecycle.Idle, h.state(10))
	assert.Zero(t, h.s.status.Ints.Get(status.KeyRevealsStarted).Load())
	assert.False(t, h.s.visuals[10].treasure.Treasure.Visible)
}

func TestSession_LossDuringRevealClosesLid(t *testing.T) {
	h := newHarness(t, testConfig(treasure10), nil)
	tv := h.s.visuals[10].treasure

	h.sim.Set(10, true)
	h.run(0, 3600)
	require.True(t, tv.Treasure.Visible)
	open := tv.Lid.Rotation[0]
	require.Less(t, open, float32(0))

	h.sim.Set(10, false)
	h.at(3616)
	assert.Equal(t, lifecycle.Idle, h.state(10))
	a, ok := h.s.anims.Get(10)
	require.True(t, ok)
	assert.Equal(t, "lid-close", a.Name)

	// Hidden at 70% of the 1500ms close
	h.run(3632, 3616+1049)
	assert.True(t, tv.Treasure.Visible)
	h.at(3616 + 1050)
	assert.False(t, tv.Treasure.Visible)
	assert.False(t, tv.Particles.Active())

	h.run(3616+1066, 3616+1500)
	assert.Zero(t, tv.Lid.Rotation[0])
	assert.Zero(t, h.s.anims.Len())
}

func TestSession_ReopenDuringCloseHidesTreasureAgain(t *testing.T) {
	cfg := testConfig(treasure10)
	cfg.AutoCollect = false
	cfg.Timing.Dwell = 500 * time.Millisecond
	cfg.Timing.LidClose = 3 * time.Second
	h := newHarness(t, cfg, nil)
	tv := h.s.visuals[10].treasure

	h.sim.Set(10, true)
	h.run(0, 3600)
	require.True(t, tv.Treasure.Visible)
	require.True(t, tv.Particles.Active())

	h.sim.Set(10, false)
	h.run(3616, 3700)
	a, ok := h.s.anims.Get(10)
	require.True(t, ok)
	require.Equal(t, "lid-close", a.Name)
	require.True(t, tv.Treasure.Visible, "close has not reached its hide point")

	h.sim.Set(10, true)
	ms := 3716
	for h.state(10) != lifecycle.Revealing {
		require.Less(t, ms, 5000, "dwell never completed")
		h.at(ms)
		ms += 16
	}
	a, ok = h.s.anims.Get(10)
	require.True(t, ok)
	assert.Equal(t, "lid-open", a.Name)
	assert.False(t, tv.Treasure.Visible, "reopening starts with the treasure hidden")
	assert.False(t, tv.Particles.Active())
	assert.Less(t, tv.Lid.Rotation[0], float32(0), "lid opens from where the close left it")
}

func TestSession_ClueLossResetsArrow(t *testing.T) {
	h := newHarness(t, testConfig(clue3), nil)
	arrow := h.s.visuals[3].clue.Spinnable

	h.sim.Set(3, true)
	h.run(0, 3000)
	require.NotZero(t, arrow.Rotation[2])

	h.sim.Set(3, false)
	h.at(3016)
	assert.Zero(t, arrow.Rotation[2])
	assert.Zero(t, h.s.anims.Len())
	assert.Empty(t, h.s.game.Clues())
}

func TestSession_TimeoutCollectionRearms(t *testing.T) {
	h := newHarness(t, testConfig(treasure10), nil)

	h.sim.Set(10, true)
	h.run(0, 5000)
	require.Equal(t, lifecycle.Collected, h.state(10), "auto collect on completion")
	require.Equal(t, 100, h.s.game.Score())

	h.run(5016, 9999)
	assert.Equal(t, lifecycle.Collected, h.state(10))

	h.at(10000)
	assert.Equal(t, lifecycle.Idle, h.state(10))

	h.at(10016)
	assert.Equal(t, lifecycle.Dwelling, h.state(10), "still in view, fresh dwell")

	h.run(10032, 15100)
	assert.Equal(t, lifecycle.Collected, h.state(10))
	assert.Equal(t, 100, h.s.game.Score(), "points awarded once")
	assert.EqualValues(t, 2, h.s.status.Ints.Get(status.KeyRevealsStarted).Load())
}

func TestSession_PermanentCollection(t *testing.T) {
	cfg := testConfig(treasure10)
	cfg.CollectPolicy = config.CollectPermanent
	h := newHarness(t, cfg, nil)

	h.sim.Set(10, true)
	h.run(0, 5000)
	require.Equal(t, lifecycle.Collected, h.state(10))

	h.sim.Set(10, false)
	h.run(5016, 6000)
	h.sim.Set(10, true)
	h.run(6016, 20000)
	assert.Equal(t, lifecycle.Collected, h.state(10))
	assert.EqualValues(t, 1, h.s.status.Ints.Get(status.KeyRevealsStarted).Load())
}

func TestSession_ModelFailureUsesFallback(t *testing.T) {
	cfg := testConfig(config.MarkerConfig{ID: 7, Kind: config.KindTreasure, Points: 50, Model: "missing.gltf"})
	models := model.NewCache(func(context.Context, string) (*scene.Node, error) {
		return nil, errors.New("boom")
	}, zerolog.Nop())
	h := newHarness(t, cfg, models)
	v := h.s.visuals[7]
	require.True(t, v.pending)

	ms := 0
	require.Eventually(t, func() bool {
		h.at(ms)
		ms += 16
		return !v.pending
	}, time.Second, time.Millisecond)

	require.NotNil(t, v.fallback)
	assert.Nil(t, v.treasure)
	assert.EqualValues(t, 1, h.s.status.Ints.Get(status.KeyVisualFallbacks).Load())

	h.sim.Set(7, true)
	start := ms
	h.run(start, start+2000+int(parameter.FallbackRevealDuration/time.Millisecond)+16)
	assert.Equal(t, lifecycle.Collected, h.state(7), "fallback still completes the reveal")
	assert.Equal(t, 50, h.s.game.Score())
}

func TestSession_MalformedModelFallsBackWithoutStoppingOthers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.gltf")
	require.NoError(t, os.WriteFile(path, []byte(`{"asset":{"version":"2.0"},"scenes":[{"nodes":[0]}],"nodes":[null]}`), 0o644))
	cfg := testConfig(treasure10, config.MarkerConfig{ID: 7, Kind: config.KindTreasure, Points: 50, Model: path})
	h := newHarness(t, cfg, nil)
	broken := h.s.visuals[7]
	require.True(t, broken.pending)

	ms := 0
	require.Eventually(t, func() bool {
		h.at(ms)
		ms += 16
		return !broken.pending
	}, 2*time.Second, time.Millisecond)
	require.NotNil(t, broken.fallback)
	assert.Nil(t, broken.treasure)

	h.sim.Set(10, true)
	h.sim.Set(7, true)
	start := ms
	h.run(start, start+2500)
	assert.Equal(t, lifecycle.Revealing, h.state(10))
	assert.Less(t, h.s.visuals[10].treasure.Lid.Rotation[0], float32(0), "healthy chest keeps opening")
	assert.NotEqual(t, lifecycle.Idle, h.state(7))
	assert.True(t, h.sim.Running())
}

func TestSession_PendingModelSkipsLifecycle(t *testing.T) {
	release := make(chan struct{})
	models := model.NewCache(func(ctx context.Context, _ string) (*scene.Node, error) {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return model.Load("../asset/models/chest.gltf")
	}, zerolog.Nop())
	cfg := testConfig(config.MarkerConfig{ID: 4, Kind: config.KindTreasure, Points: 10, Model: "chest.gltf"})
	h := newHarness(t, cfg, models)

	h.sim.Set(4, true)
	h.run(0, 3000)
	assert.Equal(t, lifecycle.Idle, h.state(4), "no reveal without a visual")
	assert.EqualValues(t, 1, h.s.status.Ints.Get(status.KeyModelsPending).Load())

	close(release)
	ms := 3016
	require.Eventually(t, func() bool {
		h.at(ms)
		ms += 16
		return !h.s.visuals[4].pending
	}, time.Second, time.Millisecond)

	v := h.s.visuals[4]
	require.NotNil(t, v.treasure)
	assert.Equal(t, "lid-pivot", v.treasure.Lid.Name)
	assert.Nil(t, v.fallback)
	assert.Zero(t, h.s.status.Ints.Get(status.KeyModelsPending).Load())

	h.at(ms)
	assert.Equal(t, lifecycle.Dwelling, h.state(4))
}

func TestSession_RendersVisibleMarkers(t *testing.T) {
	h := newHarness(t, testConfig(treasure10), nil)

	h.at(0)
	f, ok := h.rec.Last()
	require.True(t, ok)
	assert.Empty(t, f.Primitives, "anchor hidden until tracked")

	h.sim.Set(10, true)
	h.at(16)
	f, _ = h.rec.Last()
	names := map[string]bool{}
	for _, p := range f.Primitives {
		names[p.Node.Name] = true
	}
	assert.True(t, names["body"])
	assert.False(t, names["bar"], "treasure still hidden")
}

func TestSession_RenderErrorDoesNotStopFrames(t *testing.T) {
	h := newHarness(t, testConfig(treasure10), nil)
	h.rec.Err = errors.New("device lost")

	h.sim.Set(10, true)
	h.run(0, 2100)
	assert.Equal(t, lifecycle.Revealing, h.state(10))
}

func TestSession_StartFailure(t *testing.T) {
	sim := tracking.NewSimulator(filepath.Join(t.TempDir(), "missing.mind"), nil, nil, zerolog.Nop())
	s, err := NewSession(Options{Config: testConfig(treasure10), Tracker: sim, Manual: true})
	require.NoError(t, err)
	defer s.Close()

	err = s.Start(context.Background())
	require.ErrorIs(t, err, tracking.ErrBundleMissing)
	assert.False(t, sim.Running())
	assert.False(t, s.status.Bools.Get(status.KeyTrackingRunning).Load())
}

func TestSession_DuplicateMarker(t *testing.T) {
	sim := tracking.NewSimulator(writeBundle(t), nil, nil, zerolog.Nop())
	_, err := NewSession(Options{Config: testConfig(treasure10, treasure10), Tracker: sim})
	require.ErrorIs(t, err, tracking.ErrDuplicateAnchor)

	_, err = NewSession(Options{Config: testConfig(treasure10)})
	require.ErrorIs(t, err, ErrNoTracker)
}

// orderedTracker records Stop and checks the loop already halted
type orderedTracker struct {
	*tracking.Simulator
	order       *[]string
	loopRunning func() bool
	sawLoop     bool
}

func (o *orderedTracker) Stop() error {
	o.sawLoop = o.loopRunning()
	*o.order = append(*o.order, "tracker")
	return o.Simulator.Stop()
}

type orderedCamera struct {
	tracking.NullCamera
	order *[]string
}

func (c orderedCamera) Close() error {
	*c.order = append(*c.order, "camera")
	return nil
}

func TestSession_TeardownOrder(t *testing.T) {
	var order []string
	tr := &orderedTracker{Simulator: tracking.NewSimulator(writeBundle(t), nil, nil, zerolog.Nop()), order: &order}
	cues := &cueRecorder{onClose: func() { order = append(order, "audio") }}

	s, err := NewSession(Options{
		Config:  testConfig(treasure10),
		Tracker: tr,
		Camera:  orderedCamera{order: &order},
		Audio:   cues,
		Logger:  zerolog.Nop(),
	})
	require.NoError(t, err)
	tr.loopRunning = s.loop.Running

	require.NoError(t, s.Start(context.Background()))
	require.Eventually(t, func() bool { return s.loop.Frames() > 2 }, time.Second, time.Millisecond)

	require.NoError(t, s.Close())
	assert.Equal(t, []string{"tracker", "camera", "audio"}, order)
	assert.False(t, tr.sawLoop, "loop stopped before tracking")
	assert.False(t, tr.Running())

	require.NoError(t, s.Close(), "idempotent")
	assert.Len(t, order, 3)
	assert.ErrorIs(t, s.Start(context.Background()), ErrClosed)
}

func TestSession_ShimmerOnlyWhileShown(t *testing.T) {
	cfg := testConfig(treasure10)
	cfg.AutoCollect = false
	h := newHarness(t, cfg, nil)
	tv := h.s.visuals[10].treasure
	require.Greater(t, len(tv.Coins), 1)
	require.NotEmpty(t, tv.Bars)
	coin, next, bar := tv.Coins[0].Rotation[1], tv.Coins[1].Rotation[1], tv.Bars[0].Rotation[1]

	require.True(t, h.sim.Set(10, true))
	h.run(0, 3499)
	assert.Equal(t, coin, tv.Coins[0].Rotation[1], "hidden treasure does not spin")
	assert.Equal(t, bar, tv.Bars[0].Rotation[1])

	h.run(3500, 4500)
	assert.Greater(t, tv.Coins[0].Rotation[1], coin)
	assert.Greater(t, tv.Bars[0].Rotation[1], bar)
	assert.Greater(t, tv.Coins[1].Rotation[1]-next, tv.Coins[0].Rotation[1]-coin, "later coins spin faster")
	emissive := tv.Coins[0].Mesh.Emissive
	assert.InDelta(t, parameter.CoinEmissive, emissive, parameter.CoinEmissiveSwing+1e-6)
}
