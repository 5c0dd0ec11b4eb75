package agent

import (
	"fmt"

	"applepicker/models"
)

// footprint is the horizontal range the basket covers when the lever is at @section.
func (a *Agent) footprint(section int) models.Interval {
	return models.Around(section, a.cfg.BasketWidth/2)
}

// avoidDanger overrides the planned move when a bad apple is about to land.
// Standing in danger replaces the plan with the shortest path to the nearest safe
// section; otherwise a move into danger is cancelled and the plan dropped.
func (a *Agent) avoidDanger(current, desired int, mode Mode) (int, Mode, error) {
	danger := a.wm.DangerSections()
	if len(danger) == 0 {
		return desired, mode, nil
	}

	if a.footprint(current).OverlapsAny(danger) {
		safe, ok := a.nearestSafe(current, danger)
		if !ok {
			a.path = nil
			return current, Hold, nil
		}
		path, err := a.wm.ShortestPath(current, safe)
		if err != nil {
			return current, "", fmt.Errorf("escape to %d: %w", safe, err)
		}
		a.path = path
		return a.pop(), Escape, nil
	}

	if a.footprint(desired).OverlapsAny(danger) {
		a.path = nil
		return current, Hold, nil
	}

	return desired, mode, nil
}

// nearestSafe scans outward from @current for the closest section whose footprint
// clears every danger interval. Ties go left.
func (a *Agent) nearestSafe(current int, danger []models.Interval) (int, bool) {
	grid := a.wm.Sections()
	i, err := grid.Index(current)
	if err != nil {
		return 0, false
	}

	left, foundLeft := 0, false
	for j := i - 1; j >= 0; j-- {
		if s := grid.At(j); !a.footprint(s).OverlapsAny(danger) {
			left, foundLeft = s, true
			break
		}
	}

	right, foundRight := 0, false
	for j := i + 1; j < grid.Len(); j++ {
		if s := grid.At(j); !a.footprint(s).OverlapsAny(danger) {
			right, foundRight = s, true
			break
		}
	}

	switch {
	case foundLeft && foundRight:
		if current-left <= right-current {
			return left, true
		}
		return right, true
	case foundLeft:
		return left, true
	case foundRight:
		return right, true
	}
	return 0, false
}
