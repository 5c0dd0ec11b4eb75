package root_view

import (
	"context"
	"html/template"
	"strings"
	"testing"
	"time"

	"applepicker/models"
	"applepicker/server/fastview"
	"applepicker/server/section_views"
	"applepicker/simulation"

	. "github.com/smartystreets/goconvey/convey"
)

func TestBatchify(t *testing.T) {
	Convey("Given a batching channel", t, func() {
		done := make(chan struct{})
		defer close(done)
		source := make(chan []fastview.EleUpdate)
		batches := batchify(done, source, time.Millisecond*10)

		Convey("Updates for the same element are collapsed to the latest", func() {
			source <- []fastview.EleUpdate{{EleId: "a", Ops: []fastview.Op{{Key: "x", Value: "1"}}}}
			source <- []fastview.EleUpdate{{EleId: "a", Ops: []fastview.Op{{Key: "x", Value: "2"}}}}
			time.Sleep(time.Millisecond * 20)

			go func() {
				source <- []fastview.EleUpdate{{EleId: "b", Ops: []fastview.Op{{Key: "y", Value: "3"}}}}
			}()
			batch := <-batches
			So(len(batch), ShouldEqual, 2)

			values := map[string]string{}
			for _, update := range batch {
				values[update.EleId] = update.Ops[0].Value
			}
			So(values, ShouldResemble, map[string]string{"a": "2", "b": "3"})
		})
	})

	Convey("The output closes when done is closed", t, func() {
		done := make(chan struct{})
		batches := batchify(done, make(chan []fastview.EleUpdate), time.Millisecond)
		close(done)
		_, ok := <-batches
		So(ok, ShouldBeFalse)
	})
}

func TestRootView(t *testing.T) {
	Convey("Given a root view fed by snapshots", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		snapshots := make(chan simulation.Snapshot)
		rv, err := NewRootView(ctx, snapshots)
		So(err, ShouldBeNil)

		snap := simulation.Snapshot{
			Tick:        1,
			Lever:       -50,
			Mode:        "sweep",
			Direction:   "right",
			Sections:    []int{-50, -11},
			Occupancy:   map[int]models.Occupancy{-11: {Color: models.Bad, Distance: 9}},
			LeverWidth:  100,
			ScreenWidth: 100,
		}

		Convey("The page renders every view", func() {
			tmpl := template.New("index.html")
			name, err := rv.Parse(tmpl)
			So(err, ShouldBeNil)
			So(name, ShouldEqual, "mainpage")

			var sb strings.Builder
			So(tmpl.ExecuteTemplate(&sb, name, section_views.Convert(snap)), ShouldBeNil)
			So(sb.String(), ShouldContainSubstring, `id="sectionstrip"`)
			So(sb.String(), ShouldContainSubstring, `id="gamestatus-mode">sweep<`)
		})

		Convey("Snapshots become element updates", func() {
			go func() {
				// the first update may land inside the batching window
				for i := 0; i < 3; i++ {
					select {
					case snapshots <- snap:
					case <-ctx.Done():
						return
					}
					time.Sleep(time.Millisecond * 30)
				}
			}()

			updates := <-rv.Updates()
			So(updates, ShouldNotBeEmpty)
		})
	})
}
