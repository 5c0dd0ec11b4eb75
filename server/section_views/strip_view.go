package section_views

import (
	"fmt"
	"html/template"

	"applepicker/server/fastview"

	channerics "github.com/niceyeti/channerics/channels"
)

// StripView draws the section grid as a row of cells colored by occupancy,
// with the planned path outlined and the lever beneath.
type StripView struct {
	id      string
	updates <-chan []fastview.EleUpdate
}

func NewStripView(
	done <-chan struct{},
	strips <-chan Strip,
) *StripView {
	sv := &StripView{id: "sectionstrip"}
	sv.updates = channerics.Convert(done, strips, sv.onUpdate)
	return sv
}

func (sv *StripView) Updates() <-chan []fastview.EleUpdate {
	return sv.updates
}

func sectionRectId(i int) string  { return fmt.Sprintf("section-%d-rect", i) }
func sectionLabelId(i int) string { return fmt.Sprintf("section-%d-label", i) }

// onUpdate returns the set of view updates needed for the view to reflect the strip.
func (sv *StripView) onUpdate(strip Strip) (ops []fastview.EleUpdate) {
	for _, section := range strip.Sections {
		ops = append(ops,
			fastview.EleUpdate{
				EleId: sectionRectId(section.Index),
				Ops: []fastview.Op{
					{Key: "fill", Value: section.Fill},
					{Key: "stroke", Value: section.Stroke},
				},
			},
			fastview.EleUpdate{
				EleId: sectionLabelId(section.Index),
				Ops: []fastview.Op{
					{Key: "textContent", Value: section.Label},
				},
			})
	}

	ops = append(ops, fastview.EleUpdate{
		EleId: sv.id + "-lever",
		Ops: []fastview.Op{
			{Key: "x", Value: fmt.Sprintf("%d", strip.LeverX)},
		},
	})
	return
}

// Parse defines the strip's svg; its data is the initial Strip.
func (sv *StripView) Parse(
	t *template.Template,
) (name string, err error) {
	name = sv.id
	_, err = t.Parse(
		`{{ define "` + name + `" }}
		<div style="padding:20px;">
			<svg id="` + sv.id + `" xmlns='http://www.w3.org/2000/svg'
				width="{{ .Width }}px"
				height="110px"
				style="shape-rendering: crispEdges;">
				{{ range $s := .Sections }}
					<rect id="section-{{ $s.Index }}-rect"
						x="{{ $s.X }}" y="10"
						width="{{ $s.Width }}" height="60"
						fill="{{ $s.Fill }}" stroke="{{ $s.Stroke }}" stroke-width="2"/>
					<text id="section-{{ $s.Index }}-label"
						x="{{ add $s.X (div $s.Width 2) }}" y="45"
						dominant-baseline="central" text-anchor="middle"
						>{{ $s.Label }}</text>
				{{ end }}
				<rect id="` + sv.id + `-lever"
					x="{{ .LeverX }}" y="85"
					width="{{ .LeverWidth }}" height="10"
					fill="saddlebrown"/>
			</svg>
		</div>
		{{ end }}`)
	return
}
