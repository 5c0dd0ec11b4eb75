package simulation

import (
	"math"
	"sync/atomic"

	"applepicker/atomic_float"
)

// Stats aggregates results across games. A single goroutine adds results while
// any number of readers (e.g. the stats endpoint) may read concurrently.
type Stats struct {
	games      atomic.Int64
	goodCaught atomic.Int64
	badCaught  atomic.Int64
	rejected   atomic.Int64
	totalScore *atomic_float.AtomicFloat64
	bestScore  *atomic_float.AtomicFloat64
}

// StatsView is a point-in-time copy of Stats, suitable for serialization.
type StatsView struct {
	Games      int64   `json:"games"`
	MeanScore  float64 `json:"meanScore"`
	BestScore  float64 `json:"bestScore"`
	GoodCaught int64   `json:"goodCaught"`
	BadCaught  int64   `json:"badCaught"`
	Rejected   int64   `json:"rejected"`
}

func NewStats() *Stats {
	return &Stats{
		totalScore: atomic_float.NewAtomicFloat64(0),
		bestScore:  atomic_float.NewAtomicFloat64(-math.MaxFloat64),
	}
}

// Add folds one game's result into the totals.
func (st *Stats) Add(result Result) {
	for succeeded := false; !succeeded; _, succeeded = st.totalScore.AtomicAdd(float64(result.Score)) {
	}
	st.bestScore.AtomicMax(float64(result.Score))
	st.goodCaught.Add(int64(result.GoodCaught))
	st.badCaught.Add(int64(result.BadCaught))
	st.rejected.Add(int64(result.Rejected))
	st.games.Add(1)
}

// View returns the current totals. Mean and best are zero before any game finishes.
func (st *Stats) View() StatsView {
	view := StatsView{
		Games:      st.games.Load(),
		GoodCaught: st.goodCaught.Load(),
		BadCaught:  st.badCaught.Load(),
		Rejected:   st.rejected.Load(),
	}
	if view.Games > 0 {
		view.MeanScore = st.totalScore.AtomicRead() / float64(view.Games)
		view.BestScore = st.bestScore.AtomicRead()
	}
	return view
}
