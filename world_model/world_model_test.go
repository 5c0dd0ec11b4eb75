package world_model

import (
	"bytes"
	"errors"
	"testing"

	"applepicker/models"

	. "github.com/smartystreets/goconvey/convey"
)

func testConfig() Config {
	return Config{
		Left:        0,
		Right:       100,
		SectionSize: 10,
		FallSpeed:   5,
		Radius:      20,
		Imminent:    10,
	}
}

func TestNew(t *testing.T) {
	Convey("When the world model is built", t, func() {
		Convey("Over a valid range it has one section per stride", func() {
			wm, err := New(testConfig())
			So(err, ShouldBeNil)
			So(wm.Sections().Len(), ShouldEqual, 10)
			So(wm.Snapshot(), ShouldBeEmpty)
		})

		Convey("Over an empty range it fails", func() {
			cfg := testConfig()
			cfg.Right = cfg.Left
			_, err := New(cfg)
			So(errors.Is(err, ErrEmptyGrid), ShouldBeTrue)
		})
	})
}

func TestSetOccupancy(t *testing.T) {
	Convey("Given a world model", t, func() {
		wm, _ := New(testConfig())

		Convey("Records are overwritten, not accumulated", func() {
			So(wm.SetOccupancy(30, &models.Occupancy{Color: models.Good, Distance: 100}), ShouldBeNil)
			So(wm.SetOccupancy(30, &models.Occupancy{Color: models.Bad, Distance: 40}), ShouldBeNil)
			So(wm.Occupancy(30), ShouldResemble, &models.Occupancy{Color: models.Bad, Distance: 40})
			So(len(wm.Snapshot()), ShouldEqual, 1)
		})

		Convey("A nil reading clears the record", func() {
			So(wm.SetOccupancy(30, &models.Occupancy{Color: models.Good, Distance: 100}), ShouldBeNil)
			So(wm.SetOccupancy(30, nil), ShouldBeNil)
			So(wm.Occupancy(30), ShouldBeNil)
		})

		Convey("The stored record is a copy of the caller's", func() {
			reading := &models.Occupancy{Color: models.Good, Distance: 100}
			So(wm.SetOccupancy(30, reading), ShouldBeNil)
			reading.Distance = 1
			So(wm.Occupancy(30).Distance, ShouldEqual, 100)
		})

		Convey("Positions outside the grid are reported", func() {
			err := wm.SetOccupancy(35, &models.Occupancy{})
			So(errors.Is(err, ErrUnknownSection), ShouldBeTrue)
			So(wm.Snapshot(), ShouldBeEmpty)
		})
	})
}

func TestAdvanceOccupancy(t *testing.T) {
	Convey("Given a tracked apple", t, func() {
		wm, _ := New(testConfig())
		So(wm.SetOccupancy(50, &models.Occupancy{Color: models.Good, Distance: 12}), ShouldBeNil)

		Convey("Each advance lowers its distance by the fall speed until it is cleared", func() {
			expected := []int{7, 2, -3, -8, -13, -18}
			for _, want := range expected {
				wm.AdvanceOccupancy()
				So(wm.Occupancy(50), ShouldNotBeNil)
				So(wm.Occupancy(50).Distance, ShouldEqual, want)
			}
			// -23 is past -radius
			wm.AdvanceOccupancy()
			So(wm.Occupancy(50), ShouldBeNil)

			Convey("Further advances are no-ops", func() {
				wm.AdvanceOccupancy()
				So(wm.Occupancy(50), ShouldBeNil)
				So(wm.Snapshot(), ShouldBeEmpty)
			})
		})

		Convey("A record landing exactly on the threshold is cleared", func() {
			So(wm.SetOccupancy(60, &models.Occupancy{Color: models.Bad, Distance: -15}), ShouldBeNil)
			wm.AdvanceOccupancy()
			So(wm.Occupancy(60), ShouldBeNil)
		})
	})
}

func TestClosestGoodTarget(t *testing.T) {
	Convey("Given a world model", t, func() {
		wm, _ := New(testConfig())

		Convey("With no records there is no target", func() {
			_, ok := wm.ClosestGoodTarget()
			So(ok, ShouldBeFalse)
		})

		Convey("With only bad records there is no target", func() {
			So(wm.SetOccupancy(20, &models.Occupancy{Color: models.Bad, Distance: 5}), ShouldBeNil)
			_, ok := wm.ClosestGoodTarget()
			So(ok, ShouldBeFalse)
		})

		Convey("The good apple nearest the catch line wins", func() {
			So(wm.SetOccupancy(20, &models.Occupancy{Color: models.Good, Distance: 80}), ShouldBeNil)
			So(wm.SetOccupancy(70, &models.Occupancy{Color: models.Good, Distance: 30}), ShouldBeNil)
			So(wm.SetOccupancy(40, &models.Occupancy{Color: models.Bad, Distance: 5}), ShouldBeNil)
			So(wm.SetOccupancy(90, &models.Occupancy{Color: models.Good, Distance: 45}), ShouldBeNil)
			target, ok := wm.ClosestGoodTarget()
			So(ok, ShouldBeTrue)
			So(target, ShouldEqual, 70)
		})

		Convey("Ties go to the leftmost section", func() {
			So(wm.SetOccupancy(80, &models.Occupancy{Color: models.Good, Distance: 30}), ShouldBeNil)
			So(wm.SetOccupancy(10, &models.Occupancy{Color: models.Good, Distance: 30}), ShouldBeNil)
			target, ok := wm.ClosestGoodTarget()
			So(ok, ShouldBeTrue)
			So(target, ShouldEqual, 10)
		})
	})
}

func TestDangerSections(t *testing.T) {
	Convey("Given a world model", t, func() {
		wm, _ := New(testConfig())

		Convey("A bad apple within the imminent threshold yields its footprint", func() {
			So(wm.SetOccupancy(50, &models.Occupancy{Color: models.Bad, Distance: 8}), ShouldBeNil)
			So(wm.DangerSections(), ShouldResemble, []models.Interval{{Lo: 31, Hi: 69}})
		})

		Convey("Distant bad apples and good apples are not dangerous", func() {
			So(wm.SetOccupancy(50, &models.Occupancy{Color: models.Bad, Distance: 11}), ShouldBeNil)
			So(wm.SetOccupancy(60, &models.Occupancy{Color: models.Good, Distance: 0}), ShouldBeNil)
			So(wm.DangerSections(), ShouldBeEmpty)
		})

		Convey("Intervals are ordered by section", func() {
			So(wm.SetOccupancy(90, &models.Occupancy{Color: models.Bad, Distance: 10}), ShouldBeNil)
			So(wm.SetOccupancy(0, &models.Occupancy{Color: models.Bad, Distance: -4}), ShouldBeNil)
			So(wm.DangerSections(), ShouldResemble, []models.Interval{{Lo: -19, Hi: 19}, {Lo: 71, Hi: 109}})
		})
	})
}

func TestShowOccupancy(t *testing.T) {
	Convey("The console dump lists every section", t, func() {
		wm, _ := New(testConfig())
		So(wm.SetOccupancy(10, &models.Occupancy{Color: models.Good, Distance: 30}), ShouldBeNil)
		var buf bytes.Buffer
		wm.ShowOccupancy(&buf)
		So(buf.String(), ShouldStartWith, "0:- 10:good@30 20:- ")
	})
}
