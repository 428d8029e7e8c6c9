package hunt

import (
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/lixenwraith/ar-hunt/config"
)

// Reward is one collected treasure
type Reward struct {
	MarkerID int
	Label    string
	Points   int
	At       time.Time
}

// Clue is one discovered arrow direction
type Clue struct {
	MarkerID int
	Name     string
	Angle    float64 // radians, normalized to [0, 2π)
	At       time.Time
}

// Heading returns the compass-style direction of the arrow
func (c Clue) Heading() string {
	deg := c.Angle * 180 / math.Pi
	names := [...]string{"up", "up-left", "left", "down-left", "down", "down-right", "right", "up-right"}
	idx := int((deg+22.5)/45) % len(names)
	return names[idx]
}

// Game tracks score, rewards and discovered clues for one session
// Points for a marker are awarded once per session even under the timeout collection policy
type Game struct {
	logger    zerolog.Logger
	treasures int
	score     int
	awarded   map[int]bool
	rewards   []Reward
	clues     map[int]Clue
}

// NewGame creates an empty game for the configured markers
func NewGame(markers []config.MarkerConfig, logger zerolog.Logger) *Game {
	g := &Game{
		logger:  logger.With().Str("component", "hunt").Logger(),
		awarded: make(map[int]bool),
		clues:   make(map[int]Clue),
	}
	for _, m := range markers {
		if m.IsTreasure() {
			g.treasures++
		}
	}
	return g
}

// Collected records a treasure collection, returning the reward and whether points were awarded
func (g *Game) Collected(m config.MarkerConfig, now time.Time) (Reward, bool) {
	if !m.IsTreasure() {
		return Reward{}, false
	}
	r := Reward{MarkerID: m.ID, Label: m.Reward, Points: m.Points, At: now}
	if g.awarded[m.ID] {
		g.logger.Debug().Int("marker", m.ID).Msg("treasure already awarded")
		return r, false
	}
	g.awarded[m.ID] = true
	g.score += m.Points
	g.rewards = append(g.rewards, r)
	g.logger.Info().Int("marker", m.ID).Str("reward", m.Reward).Int("points", m.Points).Int("score", g.score).Msg("reward collected")
	return r, true
}

// ClueRevealed records the first reveal of a clue marker
func (g *Game) ClueRevealed(m config.MarkerConfig, now time.Time) bool {
	if m.Kind != config.KindClue {
		return false
	}
	if _, ok := g.clues[m.ID]; ok {
		return false
	}
	angle := math.Mod(m.FinalAngle, 2*math.Pi)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	c := Clue{MarkerID: m.ID, Name: m.Label(), Angle: angle, At: now}
	g.clues[m.ID] = c
	g.logger.Info().Int("marker", m.ID).Str("heading", c.Heading()).Msg("clue discovered")
	return true
}

// Score returns the total awarded points
func (g *Game) Score() int { return g.score }

// Rewards returns collected rewards in collection order
func (g *Game) Rewards() []Reward {
	return append([]Reward(nil), g.rewards...)
}

// Clues returns discovered clues sorted by marker id
func (g *Game) Clues() []Clue {
	out := make([]Clue, 0, len(g.clues))
	for _, c := range g.clues {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MarkerID < out[j].MarkerID })
	return out
}

// Progress returns collected and total treasure counts
func (g *Game) Progress() (found, total int) {
	return len(g.awarded), g.treasures
}

// Complete reports whether every treasure has been collected
func (g *Game) Complete() bool {
	return g.treasures > 0 && len(g.awarded) == g.treasures
}
