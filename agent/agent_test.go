package agent

import (
	"errors"
	"testing"

	"applepicker/models"
	"applepicker/world_model"

	. "github.com/smartystreets/goconvey/convey"
)

func newTestAgent() *Agent {
	wm, err := world_model.New(world_model.Config{
		Left:        0,
		Right:       100,
		SectionSize: 10,
		FallSpeed:   5,
		Radius:      20,
		Imminent:    10,
	})
	So(err, ShouldBeNil)
	return New(wm, Config{
		BasketWidth:     20,
		MaxDisplacement: 10,
		ReadyTolerance:  1,
	})
}

func TestSweep(t *testing.T) {
	Convey("Given an agent with nothing in view", t, func() {
		agent := newTestAgent()

		Convey("It zig-zags across the grid without leaving it", func() {
			expected := []int{
				10, 20, 30, 40, 50, 60, 70, 80, 90,
				80, 70, 60, 50, 40, 30, 20, 10, 0,
				10, 20,
			}
			current := 0
			for _, want := range expected {
				desired, err := agent.Decide(current, nil, 0)
				So(err, ShouldBeNil)
				So(desired, ShouldEqual, want)
				So(agent.Mode(), ShouldEqual, Sweep)
				current = desired
			}
			So(agent.Direction(), ShouldEqual, models.Right)
		})

		Convey("At the right boundary it turns left", func() {
			desired, err := agent.Decide(90, nil, 0)
			So(err, ShouldBeNil)
			So(desired, ShouldEqual, 80)
			So(agent.Direction(), ShouldEqual, models.Left)
		})
	})
}

func TestReadyToPick(t *testing.T) {
	Convey("Given a good apple at 50 and the lever at 30, two ticks away", t, func() {
		agent := newTestAgent()
		set := func(distance int) {
			So(agent.WorldModel().SetOccupancy(50, &models.Occupancy{Color: models.Good, Distance: distance}), ShouldBeNil)
		}

		Convey("Four ticks from landing is too early", func() {
			set(20)
			So(agent.ReadyToPick(50, 30), ShouldBeFalse)
		})
		Convey("Three, two, or one tick from landing is within the window", func() {
			set(15)
			So(agent.ReadyToPick(50, 30), ShouldBeTrue)
			set(10)
			So(agent.ReadyToPick(50, 30), ShouldBeTrue)
			set(5)
			So(agent.ReadyToPick(50, 30), ShouldBeTrue)
		})
		Convey("Landing now is too late", func() {
			set(0)
			So(agent.ReadyToPick(50, 30), ShouldBeFalse)
		})
		Convey("An empty section is never ready", func() {
			So(agent.ReadyToPick(60, 30), ShouldBeFalse)
		})
	})
}

func TestIntercept(t *testing.T) {
	Convey("Given a good apple at 50, 20 units above the catch line", t, func() {
		agent := newTestAgent()
		So(agent.WorldModel().SetOccupancy(50, &models.Occupancy{Color: models.Good, Distance: 20}), ShouldBeNil)

		Convey("The agent at 30 is not ready at first and keeps sweeping", func() {
			desired, err := agent.Decide(30, nil, 0)
			So(err, ShouldBeNil)
			So(desired, ShouldEqual, 40)
			So(agent.Mode(), ShouldEqual, Sweep)
			So(agent.Path(), ShouldBeEmpty)

			Convey("Once landing and arrival converge it heads monotonically to 50", func() {
				// The arena rejected the last move, so the lever is still at 30.
				desired, err := agent.Decide(30, nil, 0)
				So(err, ShouldBeNil)
				So(desired, ShouldEqual, 40)
				So(agent.Mode(), ShouldEqual, Intercept)
				So(agent.Path(), ShouldResemble, []int{50})

				desired, err = agent.Decide(40, nil, 0)
				So(err, ShouldBeNil)
				So(desired, ShouldEqual, 50)
				So(agent.Mode(), ShouldEqual, Follow)
				So(agent.Path(), ShouldBeEmpty)
			})
		})
	})

	Convey("Given a ready good apple to the left", t, func() {
		agent := newTestAgent()
		So(agent.WorldModel().SetOccupancy(20, &models.Occupancy{Color: models.Good, Distance: 25}), ShouldBeNil)

		Convey("The path runs leftward against the sweep direction", func() {
			path := []int{}
			current := 60
			for i := 0; i < 4; i++ {
				desired, err := agent.Decide(current, nil, 0)
				So(err, ShouldBeNil)
				path = append(path, desired)
				current = desired
			}
			So(path, ShouldResemble, []int{50, 40, 30, 20})
			So(agent.Direction(), ShouldEqual, models.Right)
		})
	})
}

func TestDangerOverride(t *testing.T) {
	Convey("Given a bad apple at 50, 8 units above the catch line", t, func() {
		agent := newTestAgent()
		So(agent.WorldModel().SetOccupancy(50, &models.Occupancy{Color: models.Bad, Distance: 8}), ShouldBeNil)
		So(agent.WorldModel().DangerSections(), ShouldResemble, []models.Interval{{Lo: 31, Hi: 69}})

		Convey("A sweep into the danger interval is cancelled", func() {
			desired, err := agent.Decide(20, nil, 0)
			So(err, ShouldBeNil)
			So(desired, ShouldEqual, 20)
			So(agent.Mode(), ShouldEqual, Hold)
		})

		Convey("A planned path into the danger interval is cancelled and dropped", func() {
			So(agent.WorldModel().SetOccupancy(40, &models.Occupancy{Color: models.Good, Distance: 10}), ShouldBeNil)
			desired, err := agent.Decide(20, nil, 0)
			So(err, ShouldBeNil)
			So(desired, ShouldEqual, 20)
			So(agent.Mode(), ShouldEqual, Hold)
			So(agent.Path(), ShouldBeEmpty)
		})

		Convey("A move away from danger is allowed", func() {
			desired, err := agent.Decide(90, nil, 0)
			So(err, ShouldBeNil)
			So(desired, ShouldEqual, 80)
			So(agent.Mode(), ShouldEqual, Sweep)
		})
	})

	Convey("Given the lever standing under an imminent bad apple", t, func() {
		agent := newTestAgent()

		Convey("It escapes to the nearest safe section and stays clear", func() {
			desired, err := agent.Decide(50, &models.Occupancy{Color: models.Bad, Distance: 8}, 0)
			So(err, ShouldBeNil)
			So(desired, ShouldEqual, 40)
			So(agent.Mode(), ShouldEqual, Escape)
			So(agent.Path(), ShouldResemble, []int{30, 20})

			current := desired
			for _, want := range []int{30, 20} {
				desired, err = agent.Decide(current, nil, 0)
				So(err, ShouldBeNil)
				So(desired, ShouldEqual, want)
				So(agent.Mode(), ShouldEqual, Escape)
				current = desired
			}

			danger := agent.WorldModel().DangerSections()
			So(danger, ShouldNotBeEmpty)
			So(agent.footprint(current).OverlapsAny(danger), ShouldBeFalse)

			// Sweeping back right would re-enter danger, so it holds.
			desired, err = agent.Decide(current, nil, 0)
			So(err, ShouldBeNil)
			So(desired, ShouldEqual, current)
			So(agent.Mode(), ShouldEqual, Hold)
		})
	})
}

func TestDecideErrors(t *testing.T) {
	Convey("Given an agent", t, func() {
		agent := newTestAgent()

		Convey("A position off the grid is reported", func() {
			_, err := agent.Decide(35, nil, 0)
			So(errors.Is(err, world_model.ErrUnknownSection), ShouldBeTrue)
		})

		Convey("A move beyond the max displacement fails loudly", func() {
			agent.cfg.MaxDisplacement = 5
			desired, err := agent.Decide(0, nil, 0)
			So(errors.Is(err, ErrDisplacementExceeded), ShouldBeTrue)
			So(desired, ShouldEqual, 0)
		})
	})
}
