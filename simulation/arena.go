package simulation

import (
	"context"
	"log/slog"
	"math/rand"

	"applepicker/models"
)

// Decider chooses the next lever position from what the laser sees at the current one.
// The arena never shows a Decider anything but that reading and the score.
type Decider interface {
	Decide(current int, reading *models.Occupancy, score int) (int, error)
}

// Apple is a falling apple in screen coordinates; X,Y is its center, Y grows downward.
type Apple struct {
	X, Y  int
	Color models.Color
}

// Result counts what happened in one game.
type Result struct {
	Seed        int64
	Ticks       int
	Score       int
	GoodSpawned int
	BadSpawned  int
	GoodCaught  int
	BadCaught   int
	Rejected    int
}

// Arena owns the full game state: every apple, the lever, the score. It plays the part
// of the game loop around a Decider: scanning, enforcing the move limit, spawning,
// falling, and scoring.
type Arena struct {
	cfg     ArenaConfig
	maxMove int
	rng     *rand.Rand
	apples  []Apple
	lever   int
	scanned *Apple
	result  Result
	logger  *slog.Logger
}

// NewArena returns an empty arena with the lever half off the left edge.
func NewArena(cfg GameConfig, seed int64) *Arena {
	return &Arena{
		cfg:     cfg.Arena,
		maxMove: cfg.MaxDisplacement(),
		rng:     rand.New(rand.NewSource(seed)),
		lever:   -cfg.Arena.LeverWidth / 2,
		result:  Result{Seed: seed},
		logger:  slog.Default().With("component", "arena", "seed", seed),
	}
}

// Lever returns the lever position, its left edge.
func (ar *Arena) Lever() int {
	return ar.lever
}

// Apples returns a copy of the apples in flight.
func (ar *Arena) Apples() []Apple {
	return append([]Apple(nil), ar.apples...)
}

// Result returns the counters so far.
func (ar *Arena) Result() Result {
	return ar.result
}

// Reading converts the apple found by the last laser scan into a sensor reading.
// Distance is the gap between the bottom of the apple and the top of the lever.
func (ar *Arena) Reading() *models.Occupancy {
	if ar.scanned == nil {
		return nil
	}
	return &models.Occupancy{
		Color:    ar.scanned.Color,
		Distance: ar.catchLine() - ar.scanned.Y - ar.cfg.AppleRadius,
	}
}

func (ar *Arena) catchLine() int {
	return ar.cfg.ScreenHeight - ar.cfg.LeverHeight
}

// Tick runs one turn: the decider moves the lever, the laser scans, apples spawn,
// fall, and are caught.
func (ar *Arena) Tick(decider Decider) (models.Step, error) {
	step := models.Step{
		Tick:    ar.result.Ticks,
		Section: ar.lever,
		Reading: ar.Reading(),
	}

	desired, err := decider.Decide(ar.lever, step.Reading, ar.result.Score)
	if err != nil {
		return step, err
	}
	step.Desired = desired

	if abs(desired-ar.lever) > ar.maxMove {
		ar.logger.Warn("max lever displacement exceeded", "lever", ar.lever, "desired", desired)
		ar.result.Rejected++
	} else {
		ar.lever = desired
		step.Accepted = true
	}

	ar.scanned = ar.laserScan()
	ar.spawn()
	step.Reward = ar.fall()

	ar.result.Score += step.Reward
	ar.result.Ticks++
	step.Score = ar.result.Score
	return step, nil
}

// laserScan finds the apple closest to the ground among those within a radius of the lever center.
func (ar *Arena) laserScan() (closest *Apple) {
	center := ar.lever + ar.cfg.LeverWidth/2
	for i := range ar.apples {
		apple := &ar.apples[i]
		if abs(apple.X-center) >= ar.cfg.AppleRadius {
			continue
		}
		if closest == nil || apple.Y > closest.Y {
			found := *apple
			closest = &found
		}
	}
	return
}

func (ar *Arena) spawn() {
	if ar.rng.Float64() >= ar.cfg.SpawnChance {
		return
	}
	r := ar.cfg.AppleRadius
	apple := Apple{
		X:     r + ar.rng.Intn(ar.cfg.ScreenWidth-2*r+1),
		Color: models.Good,
	}
	if ar.rng.Float64() < ar.cfg.BadChance {
		apple.Color = models.Bad
		ar.result.BadSpawned++
	} else {
		ar.result.GoodSpawned++
	}
	ar.apples = append(ar.apples, apple)
}

// fall drops every apple one tick, removing those caught or off screen, and returns the score change.
// Collision is tested at the apple's position before it falls.
func (ar *Arena) fall() (reward int) {
	remaining := ar.apples[:0]
	for _, apple := range ar.apples {
		if ar.collides(apple) {
			if apple.Color == models.Good {
				reward += ar.cfg.GoodValue
				ar.result.GoodCaught++
			} else {
				reward += ar.cfg.BadValue
				ar.result.BadCaught++
			}
			continue
		}
		apple.Y += ar.cfg.AppleSpeed
		if apple.Y >= ar.cfg.ScreenHeight {
			continue
		}
		remaining = append(remaining, apple)
	}
	ar.apples = remaining
	return
}

func (ar *Arena) collides(apple Apple) bool {
	return apple.Y+ar.cfg.AppleRadius >= ar.catchLine() &&
		apple.X >= ar.lever &&
		apple.X <= ar.lever+ar.cfg.LeverWidth
}

// Play runs ticks until the configured duration elapses or @ctx is cancelled,
// calling @observe after each tick if it is non-nil.
func (ar *Arena) Play(
	ctx context.Context,
	decider Decider,
	observe func(context.Context, models.Step),
) (episode models.Episode, err error) {
	episode = make(models.Episode, 0, ar.cfg.DurationTicks)
	for ar.result.Ticks < ar.cfg.DurationTicks {
		select {
		case <-ctx.Done():
			return episode, ctx.Err()
		default:
		}

		var step models.Step
		if step, err = ar.Tick(decider); err != nil {
			return episode, err
		}
		episode = append(episode, step)
		if observe != nil {
			observe(ctx, step)
		}
	}
	return episode, nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
