package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/lixenwraith/ar-hunt/asset"
	"github.com/lixenwraith/ar-hunt/parameter"
)

// CollectPolicy decides what happens to a treasure marker once game logic collects it
type CollectPolicy string

const (
	// CollectPermanent keeps the marker collected for the rest of the session
	CollectPermanent CollectPolicy = "permanent"
	// CollectTimeout clears the collected flag after Timing.CollectTimeout
	CollectTimeout CollectPolicy = "timeout"
)

// EnvPrefix is the environment variable prefix for overrides (ARHUNT_TIMING_DWELL=3s)
const EnvPrefix = "ARHUNT"

// ErrNoMarkers is returned when the configuration defines no marker descriptors
var ErrNoMarkers = errors.New("no markers configured")

// Timing holds the global animation and lifecycle constants
type Timing struct {
	Dwell          time.Duration `mapstructure:"dwell"`
	LidOpen        time.Duration `mapstructure:"lid_open"`
	LidClose       time.Duration `mapstructure:"lid_close"`
	ArrowSpin      time.Duration `mapstructure:"arrow_spin"`
	SpinTurns      int           `mapstructure:"spin_turns"`
	RevealProgress float64       `mapstructure:"reveal_progress"`
	CollectTimeout time.Duration `mapstructure:"collect_timeout"`
}

// Particles configures the per-treasure particle pool
type Particles struct {
	Count       int     `mapstructure:"count"`
	Gravity     float64 `mapstructure:"gravity"`
	FlickerRate float64 `mapstructure:"flicker_rate"`
}

// Camera selects the capture device; empty device runs the tracker without a camera stream
type Camera struct {
	Device string `mapstructure:"device"`
}

// Audio configures synthesized cues
type Audio struct {
	Enabled bool    `mapstructure:"enabled"`
	Volume  float64 `mapstructure:"volume"`
}

// Log configures the file logger used by the binary
type Log struct {
	Level string `mapstructure:"level"`
	Dir   string `mapstructure:"dir"`
}

// Model configures loaded glTF assets
type Model struct {
	Scale float64 `mapstructure:"scale"`
}

// ScriptStep toggles one marker's simulated visibility at an offset from tracker start
type ScriptStep struct {
	At      time.Duration `mapstructure:"at"`
	Marker  int           `mapstructure:"marker"`
	Visible bool          `mapstructure:"visible"`
}

// Simulation holds the optional scripted visibility timeline
type Simulation struct {
	Script []ScriptStep `mapstructure:"script"`
}

// Config is the full static configuration, loaded once at startup and never mutated
type Config struct {
	TargetBundle  string         `mapstructure:"target_bundle"`
	CollectPolicy CollectPolicy  `mapstructure:"collect_policy"`
	AutoCollect   bool           `mapstructure:"auto_collect"`
	Timing        Timing         `mapstructure:"timing"`
	Particles     Particles      `mapstructure:"particles"`
	Camera        Camera         `mapstructure:"camera"`
	Audio         Audio          `mapstructure:"audio"`
	Log           Log            `mapstructure:"log"`
	Model         Model          `mapstructure:"model"`
	Markers       []MarkerConfig `mapstructure:"markers"`
	Simulation    Simulation     `mapstructure:"simulation"`
}

// Load reads the embedded defaults, merges the file at path over them when path is not empty,
// applies ARHUNT_* environment overrides and validates the result
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")
	if err := v.ReadConfig(strings.NewReader(asset.DefaultConfig)); err != nil {
		return nil, fmt.Errorf("error reading default config: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sort.Slice(cfg.Markers, func(i, j int) bool { return cfg.Markers[i].ID < cfg.Markers[j].ID })
	return &cfg, nil
}

// setDefaults registers every scalar key so env overrides resolve even when files omit them
func setDefaults(v *viper.Viper) {
	v.SetDefault("target_bundle", "asset/targets.mind")
	v.SetDefault("collect_policy", string(CollectTimeout))
	v.SetDefault("auto_collect", true)

	v.SetDefault("timing.dwell", parameter.DwellThreshold)
	v.SetDefault("timing.lid_open", parameter.LidOpenDuration)
	v.SetDefault("timing.lid_close", parameter.LidCloseDuration)
	v.SetDefault("timing.arrow_spin", parameter.ArrowSpinDuration)
	v.SetDefault("timing.spin_turns", parameter.ArrowSpinTurns)
	v.SetDefault("timing.reveal_progress", parameter.TreasureRevealProgress)
	v.SetDefault("timing.collect_timeout", parameter.CollectTimeout)

	v.SetDefault("particles.count", parameter.ParticlePoolSize)
	v.SetDefault("particles.gravity", parameter.ParticleGravity)
	v.SetDefault("particles.flicker_rate", parameter.ParticleFlickerRate)

	v.SetDefault("camera.device", "")
	v.SetDefault("audio.enabled", true)
	v.SetDefault("audio.volume", 0.8)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.dir", "logs")
	v.SetDefault("model.scale", 0.5)
}

// Validate checks cross-field constraints
func (c *Config) Validate() error {
	if c.TargetBundle == "" {
		return fmt.Errorf("target_bundle must not be empty")
	}
	switch c.CollectPolicy {
	case CollectPermanent, CollectTimeout:
	default:
		return fmt.Errorf("unknown collect_policy %q", c.CollectPolicy)
	}

	t := c.Timing
	if t.Dwell <= 0 || t.LidOpen <= 0 || t.LidClose <= 0 || t.ArrowSpin <= 0 {
		return fmt.Errorf("timing durations must be positive")
	}
	if t.CollectTimeout <= 0 && c.CollectPolicy == CollectTimeout {
		return fmt.Errorf("timing.collect_timeout must be positive for the timeout policy")
	}
	if t.SpinTurns < 0 {
		return fmt.Errorf("timing.spin_turns must not be negative")
	}
	if t.RevealProgress <= 0 || t.RevealProgress >= 1 {
		return fmt.Errorf("timing.reveal_progress must be in (0, 1), got %v", t.RevealProgress)
	}
	if c.Particles.Count < 0 {
		return fmt.Errorf("particles.count must not be negative")
	}

	if len(c.Markers) == 0 {
		return ErrNoMarkers
	}
	seen := make(map[int]bool, len(c.Markers))
	for _, m := range c.Markers {
		if err := m.validate(); err != nil {
			return err
		}
		if seen[m.ID] {
			return fmt.Errorf("duplicate marker id %d", m.ID)
		}
		seen[m.ID] = true
	}

	for i, step := range c.Simulation.Script {
		if !seen[step.Marker] {
			return fmt.Errorf("simulation.script[%d]: unknown marker %d", i, step.Marker)
		}
		if step.At < 0 {
			return fmt.Errorf("simulation.script[%d]: negative offset", i)
		}
	}
	return nil
}

// Marker returns the descriptor for id
func (c *Config) Marker(id int) (MarkerConfig, bool) {
	for _, m := range c.Markers {
		if m.ID == id {
			return m, true
		}
	}
	return MarkerConfig{}, false
}

// ModelFiles returns the distinct model paths referenced by treasure markers
func (c *Config) ModelFiles() []string {
	var files []string
	seen := make(map[string]bool)
	for _, m := range c.Markers {
		if m.Model != "" && !seen[m.Model] {
			seen[m.Model] = true
			files = append(files, m.Model)
		}
	}
	return files
}
