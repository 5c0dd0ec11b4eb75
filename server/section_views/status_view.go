package section_views

import (
	"html/template"

	"applepicker/server/fastview"

	channerics "github.com/niceyeti/channerics/channels"
)

// StatusView shows the tick, score, and agent mode as text.
type StatusView struct {
	id      string
	updates <-chan []fastview.EleUpdate
}

func NewStatusView(
	done <-chan struct{},
	strips <-chan Strip,
) *StatusView {
	sv := &StatusView{id: "gamestatus"}
	sv.updates = channerics.Convert(done, strips, sv.onUpdate)
	return sv
}

func (sv *StatusView) Updates() <-chan []fastview.EleUpdate {
	return sv.updates
}

func (sv *StatusView) onUpdate(strip Strip) []fastview.EleUpdate {
	text := func(field, value string) fastview.EleUpdate {
		return fastview.EleUpdate{
			EleId: sv.id + "-" + field,
			Ops:   []fastview.Op{{Key: "textContent", Value: value}},
		}
	}
	return []fastview.EleUpdate{
		text("tick", strip.Tick),
		text("score", strip.Score),
		text("mode", strip.Mode),
		text("direction", strip.Direction),
		text("occupied", strip.Occupied),
	}
}

func (sv *StatusView) Parse(
	t *template.Template,
) (name string, err error) {
	name = sv.id
	_, err = t.Parse(
		`{{ define "` + name + `" }}
		<div id="` + sv.id + `" style="padding:20px; font-family:monospace;">
			tick <span id="` + sv.id + `-tick">{{ .Tick }}</span>
			score <span id="` + sv.id + `-score">{{ .Score }}</span>
			mode <span id="` + sv.id + `-mode">{{ .Mode }}</span>
			direction <span id="` + sv.id + `-direction">{{ .Direction }}</span>
			tracked <span id="` + sv.id + `-occupied">{{ .Occupied }}</span>
		</div>
		{{ end }}`)
	return
}
