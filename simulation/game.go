package simulation

import (
	"context"

	"applepicker/agent"
	"applepicker/models"
	"applepicker/world_model"
)

// Game wires one agent, with its own world model, into one arena.
// A Game is single-threaded; run several Games for concurrency, never share one.
type Game struct {
	cfg   GameConfig
	Arena *Arena
	Agent *agent.Agent
}

// NewGame builds the world model, agent, and arena for a game with the given seed.
func NewGame(cfg GameConfig, seed int64) (*Game, error) {
	wm, err := world_model.New(cfg.WorldModelConfig())
	if err != nil {
		return nil, err
	}

	return &Game{
		cfg:   cfg,
		Arena: NewArena(cfg, seed),
		Agent: agent.New(wm, cfg.AgentConfig()),
	}, nil
}

// Play runs the game to completion and returns its episode and counters.
func (g *Game) Play(
	ctx context.Context,
	observe func(context.Context, models.Step),
) (models.Episode, Result, error) {
	episode, err := g.Arena.Play(ctx, g.Agent, observe)
	return episode, g.Arena.Result(), err
}

// Snapshot is a copy of what the agent believes and where it is, for views.
type Snapshot struct {
	Tick        int
	Lever       int
	Score       int
	Mode        string
	Direction   string
	Path        []int
	Sections    []int
	Occupancy   map[int]models.Occupancy
	LeverWidth  int
	ScreenWidth int
}

// Snapshot returns the current state of the game.
func (g *Game) Snapshot() Snapshot {
	result := g.Arena.Result()
	wm := g.Agent.WorldModel()
	return Snapshot{
		Tick:        result.Ticks,
		Lever:       g.Arena.Lever(),
		Score:       result.Score,
		Mode:        string(g.Agent.Mode()),
		Direction:   g.Agent.Direction().String(),
		Path:        g.Agent.Path(),
		Sections:    wm.Sections().Sections(),
		Occupancy:   wm.Snapshot(),
		LeverWidth:  g.cfg.Arena.LeverWidth,
		ScreenWidth: g.cfg.Arena.ScreenWidth,
	}
}
