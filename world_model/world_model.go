package world_model

import (
	"fmt"
	"io"

	"applepicker/models"
	"applepicker/section_graph"
)

// Errors surfaced by the world model are those of the section grid.
var (
	ErrEmptyGrid      = section_graph.ErrEmptyGrid
	ErrUnknownSection = section_graph.ErrUnknownSection
	ErrNoPathFound    = section_graph.ErrNoPathFound
)

// Config holds the fixed physical parameters the world model predicts with.
type Config struct {
	// Left and Right bound the playable range of lever positions, [Left, Right).
	Left, Right int
	SectionSize int
	// FallSpeed is the distance an apple falls per tick.
	FallSpeed int
	// Radius is the apple radius. Records are cleared once an apple is a radius past the catch line.
	Radius int
	// Imminent is the distance at or below which a bad apple is considered dangerous.
	Imminent int
}

// WorldModel is the agent's picture of the arena: the section grid plus the last
// known occupancy of every section. Occupancy is kept apart from the graph's edges;
// a nil record means nothing is known to be falling there.
type WorldModel struct {
	cfg       Config
	sections  *section_graph.SectionGraph
	occupancy map[int]*models.Occupancy
}

// New builds the section grid once and returns an empty world model over it.
func New(cfg Config) (*WorldModel, error) {
	sections, err := section_graph.Build(cfg.Left, cfg.Right, cfg.SectionSize)
	if err != nil {
		return nil, err
	}

	return &WorldModel{
		cfg:       cfg,
		sections:  sections,
		occupancy: make(map[int]*models.Occupancy, sections.Len()),
	}, nil
}

// Config returns the parameters the model was built with.
func (wm *WorldModel) Config() Config {
	return wm.cfg
}

// Sections returns the underlying section grid.
func (wm *WorldModel) Sections() *section_graph.SectionGraph {
	return wm.sections
}

// SetOccupancy overwrites the record of @section with a copy of @info; nil clears it.
func (wm *WorldModel) SetOccupancy(section int, info *models.Occupancy) error {
	if !wm.sections.Has(section) {
		return fmt.Errorf("set occupancy at %d: %w", section, ErrUnknownSection)
	}
	if info == nil {
		delete(wm.occupancy, section)
		return nil
	}
	record := *info
	wm.occupancy[section] = &record
	return nil
}

// Occupancy returns a copy of the record of @section, or nil.
func (wm *WorldModel) Occupancy(section int) *models.Occupancy {
	if info, ok := wm.occupancy[section]; ok {
		record := *info
		return &record
	}
	return nil
}

// AdvanceOccupancy moves every tracked apple one tick closer to the catch line,
// dropping records whose apple has fallen a radius past it.
// This must be called once per tick, after the tick's decision.
func (wm *WorldModel) AdvanceOccupancy() {
	for section, info := range wm.occupancy {
		info.Distance -= wm.cfg.FallSpeed
		if info.Distance <= -wm.cfg.Radius {
			delete(wm.occupancy, section)
		}
	}
}

// ClosestGoodTarget returns the section whose good apple is nearest the catch line.
// Ties go to the leftmost section.
func (wm *WorldModel) ClosestGoodTarget() (target int, found bool) {
	minDistance := 0
	for _, section := range wm.sections.Sections() {
		info, ok := wm.occupancy[section]
		if !ok || info.Color != models.Good {
			continue
		}
		if !found || info.Distance < minDistance {
			target, minDistance, found = section, info.Distance, true
		}
	}
	return
}

// DangerSections returns the catch-width footprint of every bad apple about to land,
// in ascending section order.
func (wm *WorldModel) DangerSections() (danger []models.Interval) {
	for _, section := range wm.sections.Sections() {
		info, ok := wm.occupancy[section]
		if !ok || info.Color != models.Bad || info.Distance > wm.cfg.Imminent {
			continue
		}
		danger = append(danger, models.Around(section, wm.cfg.Radius-1))
	}
	return
}

// ShortestPath returns the sections strictly after @source up to and including @target.
func (wm *WorldModel) ShortestPath(source, target int) ([]int, error) {
	return wm.sections.ShortestPath(source, target)
}

// Snapshot returns a copy of every live record, keyed by section.
func (wm *WorldModel) Snapshot() map[int]models.Occupancy {
	snap := make(map[int]models.Occupancy, len(wm.occupancy))
	for section, info := range wm.occupancy {
		snap[section] = *info
	}
	return snap
}

// ShowOccupancy prints each section and its record on one line, for visual reference.
func (wm *WorldModel) ShowOccupancy(w io.Writer) {
	for _, section := range wm.sections.Sections() {
		fmt.Fprintf(w, "%d:%s ", section, wm.Occupancy(section))
	}
	fmt.Fprintln(w)
}
