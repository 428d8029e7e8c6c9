package lifecycle

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/ar-hunt/config"
)

var t0 = time.Unix(1_700_000_000, 0)

func ms(n int) time.Time { return t0.Add(time.Duration(n) * time.Millisecond) }

var testMarkers = []config.MarkerConfig{
	{ID: 2, Kind: config.KindClue, FinalAngle: 3.14159},
	{ID: 10, Kind: config.KindTreasure, Points: 100, Reward: "Gold coins"},
	{ID: 11, Kind: config.KindTreasure, Points: 250, Reward: "Ruby"},
}

type recorder struct {
	detected, reveals, lost, collects []int
	resets                            []ResetReason
}

func (r *recorder) hooks() Hooks {
	return Hooks{
		Detected: func(m config.MarkerConfig, _ time.Time) { r.detected = append(r.detected, m.ID) },
		Reveal:   func(m config.MarkerConfig, _ time.Time) { r.reveals = append(r.reveals, m.ID) },
		Lost:     func(m config.MarkerConfig, _ time.Time) { r.lost = append(r.lost, m.ID) },
		Reset:    func(_ config.MarkerConfig, why ResetReason, _ time.Time) { r.resets = append(r.resets, why) },
		Collect:  func(m config.MarkerConfig, _ time.Time) { r.collects = append(r.collects, m.ID) },
	}
}

func newController(policy config.CollectPolicy) (*Controller, *recorder) {
	rec := &recorder{}
	c := NewController(testMarkers, Options{
		Dwell:          2 * time.Second,
		CollectPolicy:  policy,
		CollectTimeout: 5 * time.Second,
	}, rec.hooks(), zerolog.Nop())
	return c, rec
}

// observeFor feeds visible=v every 16ms from start to end inclusive
func observeFor(t *testing.T, c *Controller, id int, v bool, start, end int) {
	t.Helper()
	for n := start; n <= end; n += 16 {
		require.NoError(t, c.Observe(id, v, ms(n)))
	}
}

func TestController_InitialState(t *testing.T) {
	c, _ := newController(config.CollectTimeout)
	snap := c.Snapshot()
	require.Len(t, snap, 3)
	for _, rt := range snap {
		assert.Equal(t, Idle, rt.State)
		assert.False(t, rt.Visible)
		assert.True(t, rt.DetectedAt.IsZero())
	}
	assert.Equal(t, []int{2, 10, 11}, []int{snap[0].ID, snap[1].ID, snap[2].ID})
}

func TestController_SingleDwellTimer(t *testing.T) {
	c, rec := newController(config.CollectTimeout)

	require.NoError(t, c.Observe(10, true, ms(0)))
	require.NoError(t, c.Observe(10, true, ms(500)))
	require.NoError(t, c.Observe(10, true, ms(900)))

	rt, _ := c.State(10)
	assert.Equal(t, ms(0), rt.DetectedAt, "repeated visible never restarts the timer")
	assert.Equal(t, Dwelling, rt.State)
	assert.Equal(t, []int{10}, rec.detected)
}

func TestController_RevealAtThresholdOnce(t *testing.T) {
	c, rec := newController(config.CollectTimeout)

	require.NoError(t, c.Observe(10, true, ms(0)))
	require.NoError(t, c.Observe(10, true, ms(1999)))
	assert.Empty(t, rec.reveals)

	require.NoError(t, c.Observe(10, true, ms(2000)))
	assert.Equal(t, []int{10}, rec.reveals)

	observeFor(t, c, 10, true, 2016, 6000)
	assert.Equal(t, []int{10}, rec.reveals, "idempotent for one continuous dwell")

	rt, _ := c.State(10)
	assert.Equal(t, Revealing, rt.State)
	assert.True(t, rt.AnimationStarted)
}

func TestController_ShortDwellThenLost(t *testing.T) {
	c, rec := newController(config.CollectTimeout)

	observeFor(t, c, 10, true, 0, 1500)
	require.NoError(t, c.Observe(10, false, ms(1516)))

	rt, _ := c.State(10)
	assert.Equal(t, Idle, rt.State)
	assert.True(t, rt.DetectedAt.IsZero())
	assert.False(t, rt.AnimationStarted)
	assert.Empty(t, rec.reveals)
	assert.Equal(t, []int{10}, rec.lost)

	// a fresh detection starts a new full dwell
	require.NoError(t, c.Observe(10, true, ms(1600)))
	require.NoError(t, c.Observe(10, true, ms(3500)))
	assert.Empty(t, rec.reveals)
	require.NoError(t, c.Observe(10, true, ms(3600)))
	assert.Equal(t, []int{10}, rec.reveals)
}

func TestController_LossDuringRevealResets(t *testing.T) {
	c, rec := newController(config.CollectTimeout)

	observeFor(t, c, 10, true, 0, 2500)
	observeFor(t, c, 2, true, 0, 2500)
	require.NoError(t, c.Observe(10, false, ms(2516)))

	rt, _ := c.State(10)
	assert.Equal(t, Idle, rt.State)
	assert.Equal(t, []ResetReason{ResetLost}, rec.resets)

	other, _ := c.State(2)
	assert.Equal(t, Revealing, other.State, "other markers unaffected")

	// completion arriving after the reset is stale
	assert.False(t, c.RevealComplete(10))
	assert.True(t, c.RevealComplete(2))
	other, _ = c.State(2)
	assert.Equal(t, Revealed, other.State)
	assert.True(t, other.Opened)
}

func TestController_Collect(t *testing.T) {
	c, rec := newController(config.CollectPermanent)

	assert.ErrorIs(t, c.Collect(10, ms(0)), ErrNotCollectible, "idle")
	observeFor(t, c, 10, true, 0, 2000)
	assert.ErrorIs(t, c.Collect(10, ms(2000)), ErrNotCollectible, "still revealing")

	require.True(t, c.RevealComplete(10))
	require.NoError(t, c.Collect(10, ms(5000)))
	assert.Equal(t, []int{10}, rec.collects)

	observeFor(t, c, 2, true, 0, 2000)
	c.RevealComplete(2)
	assert.ErrorIs(t, c.Collect(2, ms(2100)), ErrNotCollectible, "clues are never collectible")
	assert.ErrorIs(t, c.Collect(42, ms(2100)), ErrUnknownMarker)
}

func TestController_PermanentCollectionIgnoresLoss(t *testing.T) {
	c, rec := newController(config.CollectPermanent)

	observeFor(t, c, 10, true, 0, 2000)
	c.RevealComplete(10)
	require.NoError(t, c.Collect(10, ms(3000)))

	observeFor(t, c, 10, false, 3016, 4000)
	observeFor(t, c, 10, true, 4016, 60000)
	c.Tick(ms(120000))

	rt, _ := c.State(10)
	assert.Equal(t, Collected, rt.State)
	assert.Equal(t, []int{10}, rec.reveals, "never re-triggered")
	assert.Empty(t, rec.lost)
}

func TestController_TimeoutCollectionRearms(t *testing.T) {
	c, rec := newController(config.CollectTimeout)

	observeFor(t, c, 10, true, 0, 2000)
	c.RevealComplete(10)
	require.NoError(t, c.Collect(10, ms(3000)))

	observeFor(t, c, 10, false, 3016, 4000)
	rt, _ := c.State(10)
	assert.Equal(t, Collected, rt.State, "loss ignored while collected")

	observeFor(t, c, 10, true, 4016, 7984)
	rt, _ = c.State(10)
	assert.Equal(t, Collected, rt.State)

	require.NoError(t, c.Observe(10, true, ms(8000)))
	rt, _ = c.State(10)
	assert.Equal(t, Idle, rt.State)
	assert.Equal(t, []ResetReason{ResetCollectTimeout}, rec.resets)

	// still in view: the next frame starts a fresh dwell
	require.NoError(t, c.Observe(10, true, ms(8016)))
	rt, _ = c.State(10)
	assert.Equal(t, Dwelling, rt.State)
	assert.Equal(t, ms(8016), rt.DetectedAt)

	observeFor(t, c, 10, true, 8032, 10016)
	assert.Equal(t, []int{10, 10}, rec.reveals)
}

func TestController_TickExpiresWithoutObserve(t *testing.T) {
	c, rec := newController(config.CollectTimeout)
	observeFor(t, c, 11, true, 0, 2000)
	c.RevealComplete(11)
	require.NoError(t, c.Collect(11, ms(2000)))

	c.Tick(ms(6999))
	assert.Empty(t, rec.resets)
	c.Tick(ms(7000))
	assert.Equal(t, []ResetReason{ResetCollectTimeout}, rec.resets)
}

func TestController_UnknownMarker(t *testing.T) {
	c, _ := newController(config.CollectTimeout)
	assert.ErrorIs(t, c.Observe(99, true, ms(0)), ErrUnknownMarker)
	_, ok := c.State(99)
	assert.False(t, ok)
}

func TestController_Visible(t *testing.T) {
	c, _ := newController(config.CollectTimeout)
	require.NoError(t, c.Observe(11, true, ms(0)))
	require.NoError(t, c.Observe(2, true, ms(0)))
	assert.Equal(t, []int{2, 11}, c.Visible())
}

func TestController_Defaults(t *testing.T) {
	c := NewController(testMarkers, Options{}, Hooks{}, zerolog.Nop())
	require.NoError(t, c.Observe(10, true, ms(0)))
	require.NoError(t, c.Observe(10, true, ms(2000)))
	rt, _ := c.State(10)
	assert.Equal(t, Revealing, rt.State, "zero options fall back to the 2s dwell")
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "revealing", Revealing.String())
	assert.Equal(t, "unknown", State(42).String())
	assert.Equal(t, "collect-timeout", ResetCollectTimeout.String())
}

func TestController_CountdownLogsEveryStep(t *testing.T) {
	var buf bytes.Buffer
	c := NewController(testMarkers, Options{Dwell: 2 * time.Second}, Hooks{}, zerolog.New(&buf).Level(zerolog.DebugLevel))

	observeFor(t, c, 10, true, 0, 2000)

	var remaining []string
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if strings.Contains(line, "dwell countdown") {
			remaining = append(remaining, line)
		}
	}
	require.Len(t, remaining, 3, "one line per 500ms boundary of a 2s dwell")
	assert.Contains(t, remaining[0], `"remaining":1500`)
	assert.Contains(t, remaining[2], `"remaining":500`)
}
