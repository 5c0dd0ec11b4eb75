package simulation

import (
	"context"
	"errors"
	"log/slog"

	"applepicker/models"
	"applepicker/trace"

	channerics "github.com/niceyeti/channerics/channels"
)

// ProgressFunc is a callback by which the runner reports each finished game.
// It is synchronous and should complete quickly.
type ProgressFunc func(context.Context, Result)

type outcome struct {
	result  Result
	episode models.Episode
	err     error
}

/*
Run plays games on a fixed number of workers and folds their results into @stats.
Coordination is simple:
  - a generator hands out one seed per game until the episode count is reached or ctx is done
  - each worker owns the games it plays; no world model is shared between goroutines
  - a single aggregator (this goroutine) merges results, writes traces, and reports progress

Games interrupted by cancellation are discarded. Run returns the first game error, if any;
reaching the deadline is not an error.
*/
func Run(
	ctx context.Context,
	cfg GameConfig,
	nworkers int,
	stats *Stats,
	progressFn ProgressFunc,
) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	seeds := make(chan int64)
	go func() {
		defer close(seeds)
		for i := 0; cfg.Run.Episodes == 0 || i < cfg.Run.Episodes; i++ {
			select {
			case seeds <- cfg.Run.Seed + int64(i):
			case <-runCtx.Done():
				return
			}
		}
	}()

	// deploy workers to play games
	worker := func(done <-chan struct{}) <-chan outcome {
		outcomes := make(chan outcome)
		go func() {
			defer close(outcomes)
			for seed := range seeds {
				out := play(runCtx, cfg, seed)
				select {
				case outcomes <- out:
				case <-done:
					return
				}
			}
		}()
		return outcomes
	}

	workers := []<-chan outcome{}
	for i := 0; i < max(nworkers, 1); i++ {
		workers = append(workers, worker(runCtx.Done()))
	}

	var firstErr error
	for out := range channerics.Merge(runCtx.Done(), workers...) {
		if out.err != nil {
			if errors.Is(out.err, context.Canceled) || errors.Is(out.err, context.DeadlineExceeded) {
				continue
			}
			if firstErr == nil {
				firstErr = out.err
				cancel()
			}
			continue
		}

		stats.Add(out.result)
		if cfg.Run.TraceDir != "" {
			if _, err := trace.WriteEpisode(cfg.Run.TraceDir, out.result.Seed, out.episode); err != nil {
				slog.Error("trace write failed", "seed", out.result.Seed, "err", err)
			}
		}
		if progressFn != nil {
			progressFn(runCtx, out.result)
		}
	}
	return firstErr
}

func play(ctx context.Context, cfg GameConfig, seed int64) outcome {
	game, err := NewGame(cfg, seed)
	if err != nil {
		return outcome{err: err}
	}
	episode, result, err := game.Play(ctx, nil)
	return outcome{result: result, episode: episode, err: err}
}
