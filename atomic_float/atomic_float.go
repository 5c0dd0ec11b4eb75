// atomic_float provides a float64 that can be shared between the game workers that
// write run statistics and the server routines that read them, without a lock.
package atomic_float

import (
	"math"
	"sync/atomic"
)

// AtomicFloat64 encapsulates a float64 for non-locking atomic operations.
// The value is stored as its IEEE-754 bits in an atomic.Uint64, so no unsafe
// pointer conversions are needed.
type AtomicFloat64 struct {
	bits atomic.Uint64
}

// NewAtomicFloat64 encapsulates a float64 for atomic operations.
func NewAtomicFloat64(val float64) *AtomicFloat64 {
	af := &AtomicFloat64{}
	af.bits.Store(math.Float64bits(val))
	return af
}

// AtomicRead reads the float64.
func (af *AtomicFloat64) AtomicRead() float64 {
	return math.Float64frombits(af.bits.Load())
}

// AtomicAdd adds to the float64 with a single compare-and-swap.
// If the value changed between the read and the swap the add is not applied and
// succeeded is false; the caller decides whether to retry or drop the update.
func (af *AtomicFloat64) AtomicAdd(addend float64) (newVal float64, succeeded bool) {
	old := af.bits.Load()
	newVal = math.Float64frombits(old) + addend
	succeeded = af.bits.CompareAndSwap(old, math.Float64bits(newVal))
	return
}

// AtomicSet unconditionally sets the float64.
func (af *AtomicFloat64) AtomicSet(newVal float64) {
	af.bits.Store(math.Float64bits(newVal))
}

// AtomicMax raises the float64 to @candidate if it is larger, retrying on contention.
// Returns the value held afterward.
func (af *AtomicFloat64) AtomicMax(candidate float64) float64 {
	for {
		old := af.bits.Load()
		cur := math.Float64frombits(old)
		if candidate <= cur {
			return cur
		}
		if af.bits.CompareAndSwap(old, math.Float64bits(candidate)) {
			return candidate
		}
	}
}
