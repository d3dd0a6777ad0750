// plychess - play chess against a small search engine from the terminal
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"strconv"
	"strings"
	"time"

	"github.com/hailam/plychess/internal/board"
	"github.com/hailam/plychess/internal/console"
	"github.com/hailam/plychess/internal/engine"
	"github.com/hailam/plychess/internal/game"
	"github.com/hailam/plychess/internal/logx"
	"github.com/hailam/plychess/internal/storage"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	depthFlag  = flag.Int("depth", 0, "search depth in plies (default from preferences)")
	dbDir      = flag.String("db", "", "database directory (default: platform data dir)")
	noDB       = flag.Bool("no-db", false, "run without saved games and preferences")
	logLevel   = flag.String("log-level", "", "log level: debug, info, warn, error")
	humanFlag  = flag.String("human", "", "side the human plays: white or black")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "plychess:", err)
		os.Exit(1)
	}
}

func run() error {
	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	prefs := storage.DefaultPreferences()
	if store != nil {
		defer store.Close()
		if prefs, err = store.LoadPreferences(); err != nil {
			return fmt.Errorf("load preferences: %w", err)
		}
	}

	level := firstNonEmpty(*logLevel, os.Getenv("PLYCHESS_LOG_LEVEL"), prefs.LogLevel)
	logger, err := logx.NewLogger(nil, level)
	if err != nil {
		return err
	}
	if profilePath != "" {
		logger.Info().Str("path", profilePath).Msg("CPU profiling enabled")
	}

	depth := prefs.Depth
	if env := os.Getenv("PLYCHESS_DEPTH"); env != "" {
		if depth, err = strconv.Atoi(env); err != nil {
			return fmt.Errorf("PLYCHESS_DEPTH: %w", err)
		}
	}
	if *depthFlag > 0 {
		depth = *depthFlag
	}

	human, err := board.ParseSide(firstNonEmpty(*humanFlag, prefs.HumanSide, "white"))
	if err != nil {
		return err
	}

	eng := engine.NewEngine(depth, logger)
	eng.OnInfo = func(info engine.SearchInfo) {
		logger.Debug().
			Int("depth", info.Depth).
			Str("score", engine.ScoreToString(info.Score)).
			Uint64("nodes", info.Nodes).
			Dur("time", info.Time).
			Msg("iteration")
	}
	runner := engine.NewRunner(eng, logger)

	c := console.New(game.New(runner, logger), eng, store, logger)
	c.SetHuman(human)

	if store != nil {
		prefs.Depth = eng.Depth()
		prefs.HumanSide = strings.ToLower(human.String())
		prefs.LogLevel = level
		if err := store.SavePreferences(prefs); err != nil {
			logger.Warn().Err(err).Msg("failed to save preferences")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info().Int("depth", eng.Depth()).Stringer("human", human).Msg("plychess ready, type help")
	err = c.Run(ctx, os.Stdin, os.Stdout)

	closeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if cerr := runner.Close(closeCtx); cerr != nil {
		logger.Warn().Err(cerr).Msg("search did not finish")
	}
	return err
}

func openStore() (*storage.Storage, error) {
	if *noDB {
		return nil, nil
	}
	dir := firstNonEmpty(*dbDir, os.Getenv("PLYCHESS_DB"))
	if dir == "" {
		return storage.OpenDefault()
	}
	return storage.Open(dir)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
