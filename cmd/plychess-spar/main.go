// plychess-spar checks plychess against an external UCI engine: it either
// compares move choices along an opening line or plays a short match.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"

	"github.com/hailam/plychess/internal/engine"
	"github.com/hailam/plychess/internal/logx"
	"github.com/hailam/plychess/internal/spar"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	enginePath = flag.String("engine", "", "path to a UCI engine (default $PLYCHESS_UCI_ENGINE)")
	depth      = flag.Int("depth", 4, "search depth for both engines")
	plies      = flag.Int("plies", 40, "half-moves to play in match mode")
	opening    = flag.String("opening", "", "SAN line to compare along, e.g. \"e4 e5 Nf3\"")
	logLevel   = flag.String("log-level", "info", "log level: debug, info, warn, error")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "plychess-spar:", err)
		os.Exit(1)
	}
}

func run() error {
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

	logger, err := logx.NewLogger(nil, *logLevel)
	if err != nil {
		return err
	}

	path := *enginePath
	if path == "" {
		path = os.Getenv("PLYCHESS_UCI_ENGINE")
	}
	if path == "" {
		return fmt.Errorf("no engine: pass -engine or set PLYCHESS_UCI_ENGINE")
	}

	ref, err := spar.NewReferee(path, *depth, logger)
	if err != nil {
		return err
	}
	defer ref.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *opening != "" {
		return compareLine(ctx, ref, strings.Fields(*opening))
	}

	res, err := ref.Match(ctx, *plies)
	if res != nil {
		fmt.Println(strings.Join(res.SANs, " "))
		fmt.Printf("%v after %d plies, %s\n", res.Status, len(res.Moves), res.FEN)
		if res.Winner != 0 {
			fmt.Printf("%v wins\n", res.Winner)
		}
	}
	return err
}

// compareLine compares both engines at every position along sans.
func compareLine(ctx context.Context, ref *spar.Referee, sans []string) error {
	total := 0
	for i := 0; i <= len(sans); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		b, side, err := spar.ReplaySAN(sans[:i])
		if err != nil {
			return err
		}
		c, err := ref.Compare(b, side)
		if err != nil {
			return fmt.Errorf("after %q: %w", strings.Join(sans[:i], " "), err)
		}

		total += c.Loss()
		fmt.Printf("%2d %-6v ours %-6v %s  theirs %-6v %s  loss %d\n",
			i, side, c.Ours, engine.ScoreToString(c.OursScore),
			c.Theirs, engine.ScoreToString(c.TheirsScore), c.Loss())
	}
	fmt.Printf("average loss %d cp over %d positions\n", total/(len(sans)+1), len(sans)+1)
	return nil
}
