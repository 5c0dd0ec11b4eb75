package simulation

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"applepicker/agent"
	"applepicker/world_model"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when a loaded config cannot describe a playable game.
var ErrInvalidConfig error = errors.New("invalid config")

// OuterConfig is the envelope of every config file: a kind selector and its definition.
type OuterConfig struct {
	Kind string      `mapstructure:"kind"`
	Def  interface{} `mapstructure:"def"`
}

// GameConfig encodes the arena physics, agent parameters, and run settings outside of code.
// Defaults are those of the classic game: an 800x600 window, 30 ticks per second for two minutes.
type GameConfig struct {
	Arena ArenaConfig `yaml:"arena"`
	Agent AgentConfig `yaml:"agent"`
	Run   RunConfig   `yaml:"run"`
}

type ArenaConfig struct {
	ScreenWidth  int `yaml:"screen_width"`
	ScreenHeight int `yaml:"screen_height"`
	AppleRadius  int `yaml:"apple_radius"`
	// AppleSpeed is how far apples fall per tick.
	AppleSpeed  int `yaml:"apple_speed"`
	LeverWidth  int `yaml:"lever_width"`
	LeverHeight int `yaml:"lever_height"`
	// MaxLeverDisplacement is added to half the lever width to get the longest legal move.
	MaxLeverDisplacement int     `yaml:"max_lever_displacement"`
	SpawnChance          float64 `yaml:"spawn_chance"`
	BadChance            float64 `yaml:"bad_chance"`
	GoodValue            int     `yaml:"good_value"`
	BadValue             int     `yaml:"bad_value"`
	DurationTicks        int     `yaml:"duration_ticks"`
}

type AgentConfig struct {
	// SectionSize of zero derives the size from the apple radius.
	SectionSize      int     `yaml:"section_size"`
	ImminentDistance int     `yaml:"imminent_distance"`
	ReadyTolerance   float64 `yaml:"ready_tolerance"`
}

type RunConfig struct {
	// Episodes is the number of games to play; zero plays until the deadline.
	Episodes int   `yaml:"episodes"`
	Seed     int64 `yaml:"seed"`
	// Deadline is a fixed duration describing when to stop, e.g. {duration: 30s}.
	Deadline map[string]string `yaml:"deadline"`
	// TraceDir, if set, receives one parquet file per game.
	TraceDir string `yaml:"trace_dir"`
}

// DefaultConfig returns the classic game settings.
func DefaultConfig() GameConfig {
	return GameConfig{
		Arena: ArenaConfig{
			ScreenWidth:          800,
			ScreenHeight:         600,
			AppleRadius:          20,
			AppleSpeed:           5,
			LeverWidth:           100,
			LeverHeight:          10,
			MaxLeverDisplacement: 20,
			SpawnChance:          0.05,
			BadChance:            0.2,
			GoodValue:            1,
			BadValue:             -3,
			DurationTicks:        120 * 30,
		},
		Agent: AgentConfig{
			ImminentDistance: 10,
			ReadyTolerance:   1,
		},
		Run: RunConfig{
			Episodes: 100,
			Seed:     1,
		},
	}
}

// FromYaml reads a config envelope with viper and decodes its definition over the defaults.
func FromYaml(path string) (*GameConfig, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	vp.AddConfigPath(filepath.Dir(path))
	var err error
	if err = vp.ReadInConfig(); err != nil {
		return nil, err
	}

	outerConfig := &OuterConfig{}
	if err = vp.Unmarshal(outerConfig); err != nil {
		return nil, err
	}

	var def []byte
	if def, err = yaml.Marshal(outerConfig.Def); err != nil {
		return nil, err
	}

	innerConfig := DefaultConfig()
	if err = yaml.Unmarshal(def, &innerConfig); err != nil {
		return nil, err
	}

	if err = innerConfig.Validate(); err != nil {
		return nil, err
	}
	return &innerConfig, nil
}

// Validate checks that the config describes a playable game.
func (cfg *GameConfig) Validate() error {
	a := cfg.Arena
	positive := map[string]int{
		"screen_width":   a.ScreenWidth,
		"screen_height":  a.ScreenHeight,
		"apple_radius":   a.AppleRadius,
		"apple_speed":    a.AppleSpeed,
		"lever_width":    a.LeverWidth,
		"duration_ticks": a.DurationTicks,
		"section_size":   cfg.SectionSize(),
	}
	for name, val := range positive {
		if val <= 0 {
			return fmt.Errorf("%s must be positive, got %d: %w", name, val, ErrInvalidConfig)
		}
	}
	if a.LeverWidth >= a.ScreenWidth {
		return fmt.Errorf("lever width %d does not fit screen width %d: %w", a.LeverWidth, a.ScreenWidth, ErrInvalidConfig)
	}
	if cfg.SectionSize() > cfg.MaxDisplacement() {
		return fmt.Errorf("section size %d exceeds max displacement %d: %w", cfg.SectionSize(), cfg.MaxDisplacement(), ErrInvalidConfig)
	}
	if a.SpawnChance < 0 || a.SpawnChance > 1 || a.BadChance < 0 || a.BadChance > 1 {
		return fmt.Errorf("chances must lie in [0,1]: %w", ErrInvalidConfig)
	}
	if cfg.Agent.ReadyTolerance < 0 || cfg.Run.Episodes < 0 {
		return fmt.Errorf("ready_tolerance and episodes must not be negative: %w", ErrInvalidConfig)
	}
	return nil
}

// SectionSize is the configured stride, or the apple diameter less one.
func (cfg *GameConfig) SectionSize() int {
	if cfg.Agent.SectionSize > 0 {
		return cfg.Agent.SectionSize
	}
	return cfg.Arena.AppleRadius*2 - 1
}

// MaxDisplacement is the longest move the arena accepts in one tick.
func (cfg *GameConfig) MaxDisplacement() int {
	return cfg.Arena.LeverWidth/2 + cfg.Arena.MaxLeverDisplacement
}

// WorldModelConfig maps the arena onto section coordinates. A section is a lever
// position, which ranges from half the lever hanging off the left edge to half off the right.
func (cfg *GameConfig) WorldModelConfig() world_model.Config {
	return world_model.Config{
		Left:        -cfg.Arena.LeverWidth / 2,
		Right:       cfg.Arena.ScreenWidth - cfg.Arena.LeverWidth/2,
		SectionSize: cfg.SectionSize(),
		FallSpeed:   cfg.Arena.AppleSpeed,
		Radius:      cfg.Arena.AppleRadius,
		Imminent:    cfg.Agent.ImminentDistance,
	}
}

// AgentConfig returns the parameters of the agent itself.
func (cfg *GameConfig) AgentConfig() agent.Config {
	return agent.Config{
		BasketWidth:     cfg.Arena.LeverWidth,
		MaxDisplacement: cfg.MaxDisplacement(),
		ReadyTolerance:  cfg.Agent.ReadyTolerance,
	}
}

// WithRunDeadline returns a context extended by the run deadline, if one is specified.
func (cfg *GameConfig) WithRunDeadline(
	ctx context.Context,
) (context.Context, context.CancelFunc, error) {
	if val, ok := cfg.Run.Deadline["duration"]; ok {
		duration, err := time.ParseDuration(val)
		if err != nil {
			return nil, nil, fmt.Errorf("run deadline: %w", err)
		}
		innerCtx, cancel := context.WithTimeout(ctx, duration)
		return innerCtx, cancel, nil
	}
	defaultCtx, cancel := context.WithCancel(ctx)
	return defaultCtx, cancel, nil
}
