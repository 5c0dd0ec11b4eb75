package atomic_float

import (
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestAtomicAdd(t *testing.T) {
	Convey("When AtomicAdd is called", t, func() {
		Convey("When multiple writers add to the float value concurrently", func() {
			af := NewAtomicFloat64(0.0)
			numOps := 3000
			numWriters := 200

			start := make(chan struct{})
			wg := sync.WaitGroup{}
			wg.Add(numWriters)
			adder := func() {
				<-start
				for i := 0; i < numOps; i++ {
					for succeeded := false; !succeeded; _, succeeded = af.AtomicAdd(1.0) {
					}
				}
				wg.Done()
			}

			for i := 0; i < numWriters; i++ {
				go adder()
			}

			// Wait for goroutines to begin
			time.Sleep(time.Millisecond * 10)
			close(start)
			wg.Wait()
			So(af.AtomicRead(), ShouldEqual, float64(numOps*numWriters))
		})

		Convey("When multiple writers increment and decrement the float value concurrently", func() {
			af := NewAtomicFloat64(0.0)
			numOps := 3000
			numWriters := 200

			start := make(chan struct{})
			wg := sync.WaitGroup{}
			wg.Add(numWriters * 2)
			adjust := func(addend float64) {
				<-start
				for i := 0; i < numOps; i++ {
					for succeeded := false; !succeeded; _, succeeded = af.AtomicAdd(addend) {
					}
				}
				wg.Done()
			}

			for i := 0; i < numWriters; i++ {
				go adjust(1.0)
				go adjust(-1.0)
			}

			time.Sleep(time.Millisecond * 10)
			close(start)
			wg.Wait()
			So(af.AtomicRead(), ShouldEqual, 0.0)
		})
	})
}

func TestAtomicMax(t *testing.T) {
	Convey("When many writers race to raise the maximum", t, func() {
		af := NewAtomicFloat64(-1.0)
		wg := sync.WaitGroup{}
		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func(v float64) {
				defer wg.Done()
				af.AtomicMax(v)
			}(float64(i))
		}
		wg.Wait()
		So(af.AtomicRead(), ShouldEqual, 99.0)

		Convey("A smaller candidate leaves the value alone", func() {
			So(af.AtomicMax(3.0), ShouldEqual, 99.0)
			af.AtomicSet(2.5)
			So(af.AtomicRead(), ShouldEqual, 2.5)
		})
	})
}
