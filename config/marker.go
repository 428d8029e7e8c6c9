package config

import "fmt"

// Kind selects which visual and reveal sequence a marker gets
type Kind string

const (
	KindClue     Kind = "clue"
	KindTreasure Kind = "treasure"
)

// Valid reports whether k is a known marker kind
func (k Kind) Valid() bool {
	return k == KindClue || k == KindTreasure
}

// MarkerConfig is the immutable descriptor of one printed image target
// Kind-specific fields are ignored for the other kind
type MarkerConfig struct {
	ID          int    `mapstructure:"id"`
	Kind        Kind   `mapstructure:"kind"`
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`

	// Clue: arrow rotation (radians) after the spin settles
	FinalAngle float64 `mapstructure:"final_angle"`

	// Treasure: score value, reward label and optional glTF model replacing the procedural chest
	Points int    `mapstructure:"points"`
	Reward string `mapstructure:"reward"`
	Model  string `mapstructure:"model"`
}

// IsTreasure reports whether the marker hides a collectible chest
func (m MarkerConfig) IsTreasure() bool {
	return m.Kind == KindTreasure
}

// Label returns a short human-readable marker label for logs and panels
func (m MarkerConfig) Label() string {
	if m.Name != "" {
		return m.Name
	}
	return fmt.Sprintf("Marker %d", m.ID)
}

func (m MarkerConfig) validate() error {
	if m.ID < 0 {
		return fmt.Errorf("marker %d: negative id", m.ID)
	}
	if !m.Kind.Valid() {
		return fmt.Errorf("marker %d: unknown kind %q", m.ID, m.Kind)
	}
	if m.Kind == KindTreasure && m.Points < 0 {
		return fmt.Errorf("marker %d: negative points %d", m.ID, m.Points)
	}
	return nil
}
