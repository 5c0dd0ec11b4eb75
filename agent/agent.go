// agent decides where the lever goes next from a single laser reading per tick and
// the world model it maintains from those readings.
package agent

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"applepicker/models"
	"applepicker/world_model"
)

// ErrDisplacementExceeded means the agent produced a move longer than the arena allows.
// Planning only ever moves to adjacent sections, so this indicates a configuration
// where the section size exceeds the max displacement.
var ErrDisplacementExceeded error = errors.New("max lever displacement exceeded")

// Mode names the rule that produced a decision.
type Mode string

const (
	Follow    Mode = "follow"    // continuing a previously planned path
	Intercept Mode = "intercept" // started a new path toward a good apple
	Sweep     Mode = "sweep"     // nothing to catch, patrolling
	Hold      Mode = "hold"      // the move was cancelled by danger
	Escape    Mode = "escape"    // moving out of a danger zone
)

// Config holds the agent's own parameters; the physics it plans with come from the world model.
type Config struct {
	// BasketWidth is the lever width; a section's footprint is its position plus or minus half of it.
	BasketWidth int
	// MaxDisplacement is the furthest the lever may move in one decision.
	MaxDisplacement int
	// ReadyTolerance is how many ticks apart arrival and landing may be for an apple to be worth chasing.
	ReadyTolerance float64
}

// Agent owns its active path and sweep direction. It holds, but does not own, the world model.
type Agent struct {
	wm        *world_model.WorldModel
	cfg       Config
	path      []int
	direction models.Direction
	mode      Mode
	score     int
	logger    *slog.Logger
}

// New returns an agent sweeping rightward with no plan.
func New(wm *world_model.WorldModel, cfg Config) *Agent {
	return &Agent{
		wm:        wm,
		cfg:       cfg,
		direction: models.Right,
		logger:    slog.Default().With("component", "agent"),
	}
}

// WithLogger replaces the agent's logger.
func (a *Agent) WithLogger(logger *slog.Logger) *Agent {
	a.logger = logger
	return a
}

// Path returns a copy of the remaining planned sections.
func (a *Agent) Path() []int {
	return append([]int(nil), a.path...)
}

// Direction returns the current sweep direction.
func (a *Agent) Direction() models.Direction {
	return a.direction
}

// Mode returns the rule that produced the last decision.
func (a *Agent) Mode() Mode {
	return a.mode
}

// WorldModel returns the model the agent plans with.
func (a *Agent) WorldModel() *world_model.WorldModel {
	return a.wm
}

// Decide ingests the laser @reading taken at @current and returns the section the
// lever should move to. The score is only recorded for observability.
//
// Per tick: record the reading, then follow the active path, else start a path toward
// a good apple that is ready to pick, else sweep. The danger pass may then cancel or
// reroute the move. Finally the world model is advanced one tick.
func (a *Agent) Decide(current int, reading *models.Occupancy, score int) (desired int, err error) {
	a.score = score
	if err = a.wm.SetOccupancy(current, reading); err != nil {
		return current, err
	}

	var mode Mode
	if desired, mode, err = a.plan(current); err != nil {
		return current, err
	}
	if desired, mode, err = a.avoidDanger(current, desired, mode); err != nil {
		return current, err
	}
	a.mode = mode

	a.wm.AdvanceOccupancy()

	if a.cfg.MaxDisplacement > 0 && abs(desired-current) > a.cfg.MaxDisplacement {
		return current, fmt.Errorf("%d to %d (%s): %w", current, desired, mode, ErrDisplacementExceeded)
	}

	a.logger.Debug("decision",
		"section", current,
		"reading", reading.String(),
		"desired", desired,
		"mode", string(mode),
		"direction", a.direction.String(),
		"score", score)
	return desired, nil
}

// plan chooses the next section before danger is considered.
func (a *Agent) plan(current int) (int, Mode, error) {
	if len(a.path) > 0 {
		return a.pop(), Follow, nil
	}

	if target, ok := a.wm.ClosestGoodTarget(); ok && a.ReadyToPick(target, current) {
		path, err := a.wm.ShortestPath(current, target)
		if err != nil {
			return current, "", fmt.Errorf("intercept %d: %w", target, err)
		}
		if len(path) > 0 {
			a.path = path
			return a.pop(), Intercept, nil
		}
	}

	desired, err := a.sweep(current)
	return desired, Sweep, err
}

// ReadyToPick reports whether moving toward @target now, one section per tick, gets the
// lever there within the tolerance of when the apple lands.
func (a *Agent) ReadyToPick(target, current int) bool {
	info := a.wm.Occupancy(target)
	if info == nil {
		return false
	}
	physics := a.wm.Config()
	fallTicks := float64(info.Distance) / float64(physics.FallSpeed)
	reachTicks := math.Abs(float64(target-current)) / float64(physics.SectionSize)
	return math.Abs(fallTicks-reachTicks) <= a.cfg.ReadyTolerance
}

func (a *Agent) pop() (head int) {
	head, a.path = a.path[0], a.path[1:]
	return
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
