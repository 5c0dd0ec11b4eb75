/*
Apple picker plays the falling-apple game headlessly with a sensing agent: the lever's laser
reports only the apple above it, and the agent keeps a world model of sections along the lever
track to sweep, intercept good apples, and dodge bad ones. Many games are played concurrently as
a benchmark, each optionally traced to parquet, while one showcase game can be watched live in
the browser along with the running totals.
*/

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"time"

	"applepicker/models"
	"applepicker/server"
	"applepicker/simulation"

	channerics "github.com/niceyeti/channerics/channels"
	"golang.org/x/sync/errgroup"
)

// The showcase game runs at 30 frames per second so it can be followed by eye.
const frameInterval = time.Second / 30

var (
	configPath = flag.String("config", "./config.yaml", "path to the game config")
	dbg        = flag.Bool("debug", false, "debug logging")
	nworkers   = flag.Int("nworkers", runtime.NumCPU(), "number of concurrent games")
	host       = flag.String("host", "", "The host ip")
	port       = flag.String("port", "8080", "The host port")
	serve      = flag.Bool("serve", false, "serve a live view of a showcase game")
)

func setupLogging() {
	level := slog.LevelInfo
	if *dbg {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func runApp() (err error) {
	var cfg *simulation.GameConfig
	if cfg, err = simulation.FromYaml(*configPath); err != nil {
		return
	}

	appCtx, appCancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer appCancel()

	runCtx, runCancel, err := cfg.WithRunDeadline(appCtx)
	if err != nil {
		return
	}
	defer runCancel()

	stats := simulation.NewStats()
	group, groupCtx := errgroup.WithContext(appCtx)

	if *serve {
		var game *simulation.Game
		if game, err = simulation.NewGame(*cfg, cfg.Run.Seed); err != nil {
			return
		}

		snapshots := make(chan simulation.Snapshot)
		var srv *server.Server
		if srv, err = server.NewServer(
			groupCtx,
			*host+":"+*port,
			game.Snapshot(),
			snapshots,
			stats,
		); err != nil {
			return
		}

		group.Go(func() error {
			return srv.Serve(groupCtx)
		})
		group.Go(func() error {
			return showcase(groupCtx, cfg, game, snapshots)
		})
	}

	group.Go(func() error {
		start := time.Now()
		runErr := simulation.Run(runCtx, *cfg, *nworkers, stats, logProgress)
		view := stats.View()
		slog.Info("run complete",
			"games", view.Games,
			"meanScore", view.MeanScore,
			"bestScore", view.BestScore,
			"goodCaught", view.GoodCaught,
			"badCaught", view.BadCaught,
			"rejected", view.Rejected,
			"elapsed", time.Since(start))
		return runErr
	})

	err = group.Wait()
	return
}

func logProgress(_ context.Context, result simulation.Result) {
	slog.Info("game finished",
		"seed", result.Seed,
		"score", result.Score,
		"goodCaught", result.GoodCaught,
		"badCaught", result.BadCaught,
		"rejected", result.Rejected)
}

// showcase plays games back to back at frame rate, offering each tick's snapshot to the
// live view. Snapshots are dropped when no client is reading.
func showcase(
	ctx context.Context,
	cfg *simulation.GameConfig,
	game *simulation.Game,
	snapshots chan<- simulation.Snapshot,
) error {
	frames := channerics.NewTicker(ctx.Done(), frameInterval)
	observe := func(ctx context.Context, step models.Step) {
		select {
		case snapshots <- game.Snapshot():
		default:
		}
		if *dbg && step.Tick%100 == 0 {
			game.Agent.WorldModel().ShowOccupancy(os.Stderr)
			fmt.Fprintln(os.Stderr)
		}
		<-frames
	}

	for seed := cfg.Run.Seed; ; seed++ {
		_, result, err := game.Play(ctx, observe)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return err
		}
		slog.Info("showcase game finished", "seed", seed, "score", result.Score)

		if game, err = simulation.NewGame(*cfg, seed+1); err != nil {
			return err
		}
	}
}

func main() {
	flag.Parse()
	setupLogging()
	if err := runApp(); err != nil {
		slog.Error("apple picker failed", "err", err)
		os.Exit(1)
	}
}
