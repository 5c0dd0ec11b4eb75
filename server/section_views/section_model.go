// section_views contains views derived from the Strip view-model: the agent's
// section grid as it currently believes it to be.
package section_views

import (
	"strconv"

	"applepicker/models"
	"applepicker/simulation"
)

// Section is one cell of the strip. As a rule of thumb, Section fields should be
// immediately usable as view parameters.
type Section struct {
	Index    int
	Position int
	X, Width int
	Fill     string
	Stroke   string
	Label    string
}

// Strip is the view-model of a game snapshot. Pixel coordinates are shifted right
// by half a lever so that the leftmost lever position is drawn at zero.
type Strip struct {
	Sections   []Section
	LeverX     int
	LeverWidth int
	Width      int
	Tick       string
	Score      string
	Mode       string
	Direction  string
	Occupied   string
}

// Convert transforms a game snapshot into a Strip.
func Convert(snap simulation.Snapshot) Strip {
	shift := snap.LeverWidth / 2
	width := snap.LeverWidth
	if len(snap.Sections) > 1 {
		width = snap.Sections[1] - snap.Sections[0]
	}

	onPath := map[int]bool{}
	for _, section := range snap.Path {
		onPath[section] = true
	}

	strip := Strip{
		Sections:   make([]Section, 0, len(snap.Sections)),
		LeverX:     snap.Lever + shift,
		LeverWidth: snap.LeverWidth,
		Width:      snap.ScreenWidth + snap.LeverWidth,
		Tick:       strconv.Itoa(snap.Tick),
		Score:      strconv.Itoa(snap.Score),
		Mode:       snap.Mode,
		Direction:  snap.Direction,
		Occupied:   strconv.Itoa(len(snap.Occupancy)),
	}
	for i, pos := range snap.Sections {
		section := Section{
			Index:    i,
			Position: pos,
			// centered under the lever center at this position
			X:      pos + snap.LeverWidth/2 + shift - width/2,
			Width:  width,
			Fill:   "lightgray",
			Stroke: "black",
		}
		if occ, ok := snap.Occupancy[pos]; ok {
			section.Fill = getFill(occ.Color)
			section.Label = strconv.Itoa(occ.Distance)
		}
		if onPath[pos] {
			section.Stroke = "blue"
		}
		if pos == snap.Lever {
			section.Stroke = "saddlebrown"
		}
		strip.Sections = append(strip.Sections, section)
	}
	return strip
}

func getFill(color models.Color) (fill string) {
	switch color {
	case models.Good:
		fill = "lightgreen"
	case models.Bad:
		fill = "salmon"
	}
	return
}
