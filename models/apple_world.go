package models

import "fmt"

// Color classifies a falling apple. Good apples are worth catching, bad ones cost points.
type Color int

const (
	Good Color = iota
	Bad
)

func (c Color) String() string {
	switch c {
	case Good:
		return "good"
	case Bad:
		return "bad"
	}
	return fmt.Sprintf("color(%d)", int(c))
}

// Occupancy is what the laser scan reports for a section: the class of the nearest
// apple above the lever and its vertical gap to the catch line. A nil *Occupancy
// means nothing was detected.
type Occupancy struct {
	Color    Color
	Distance int
}

func (o *Occupancy) String() string {
	if o == nil {
		return "-"
	}
	return fmt.Sprintf("%s@%d", o.Color, o.Distance)
}

// Direction is the sweep heading of the agent when it has nothing better to do.
type Direction int

const (
	Right Direction = iota
	Left
)

func (d Direction) String() string {
	if d == Left {
		return "left"
	}
	return "right"
}

// Reverse returns the opposite heading.
func (d Direction) Reverse() Direction {
	if d == Left {
		return Right
	}
	return Left
}

// Interval is a closed horizontal range [Lo, Hi] in section coordinates.
type Interval struct {
	Lo, Hi int
}

// Around returns the interval of half-width @radius centered at @center.
func Around(center, radius int) Interval {
	return Interval{Lo: center - radius, Hi: center + radius}
}

// Overlaps reports whether the two closed intervals share at least one point.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Lo <= other.Hi && other.Lo <= iv.Hi
}

// OverlapsAny reports whether @iv overlaps any of @others.
func (iv Interval) OverlapsAny(others []Interval) bool {
	for _, other := range others {
		if iv.Overlaps(other) {
			return true
		}
	}
	return false
}

// Step is a single tick of a game: the lever at Section read Reading, asked to move
// to Desired, and the arena either accepted or rejected the move. Reward is the
// score change caused by collisions during the tick.
type Step struct {
	Tick     int
	Section  int
	Reading  *Occupancy
	Desired  int
	Accepted bool
	Reward   int
	Score    int
}

// Episode is the sequence of Steps of one game.
type Episode []Step

// Score returns the final score of the episode, zero if empty.
func (ep Episode) Score() int {
	if len(ep) == 0 {
		return 0
	}
	return ep[len(ep)-1].Score
}
