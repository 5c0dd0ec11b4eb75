package agent

import (
	"fmt"

	"applepicker/world_model"
)

// sweep moves one section in the sweep direction, turning around at either end of the grid.
func (a *Agent) sweep(current int) (int, error) {
	grid := a.wm.Sections()
	if !grid.Has(current) {
		return current, fmt.Errorf("sweep from %d: %w", current, world_model.ErrUnknownSection)
	}

	if next, ok := grid.Neighbor(current, a.direction); ok {
		return next, nil
	}
	a.direction = a.direction.Reverse()
	if next, ok := grid.Neighbor(current, a.direction); ok {
		return next, nil
	}
	// A one-section grid has nowhere to go.
	return current, nil
}
