// Package console implements a line oriented text interface for playing
// against the engine.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hailam/plychess/internal/board"
	"github.com/hailam/plychess/internal/diagram"
	"github.com/hailam/plychess/internal/engine"
	"github.com/hailam/plychess/internal/game"
	"github.com/hailam/plychess/internal/storage"
)

// ErrNoStorage is returned by commands that need a database when the
// console runs without one.
var ErrNoStorage = errors.New("no database configured")

const maxPerftDepth = 6

// Console reads commands and drives one game session.
type Console struct {
	game  *game.Game
	eng   *engine.Engine
	store *storage.Storage
	human board.Side

	out io.Writer
	log zerolog.Logger

	recorded bool
}

// New creates a console for g. eng must be the engine behind g's runner.
// store may be nil, in which case save, load and games are unavailable.
func New(g *game.Game, eng *engine.Engine, store *storage.Storage, logger zerolog.Logger) *Console {
	return &Console{
		game:  g,
		eng:   eng,
		store: store,
		human: board.White,
		log:   logger.With().Str("component", "console").Logger(),
	}
}

// SetHuman sets the side the human plays. It orients diagrams and scores
// finished games.
func (c *Console) SetHuman(side board.Side) {
	if side.Valid() {
		c.human = side
	}
}

// Run processes commands from in until "quit", end of input or ctx is
// cancelled. A running search is waited for before returning.
func (c *Console) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	c.out = out
	defer c.finish(ctx)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		var err error
		switch cmd {
		case "new":
			err = c.handleNew()
		case "d":
			err = c.handleDisplay()
		case "moves":
			err = c.handleMoves()
		case "move", "m":
			err = c.handleMove(args)
		case "undo":
			err = c.handleUndo()
		case "go":
			err = c.handleGo(args)
		case "poll":
			err = c.handlePoll()
		case "wait":
			err = c.handleWait(ctx)
		case "play":
			err = c.handlePlay(ctx)
		case "status":
			c.handleStatus()
		case "eval":
			err = c.handleEval()
		case "perft":
			err = c.handlePerft(args)
		case "fen":
			err = c.handleFEN()
		case "setfen":
			err = c.handleSetFEN(args)
		case "history":
			c.println(formatHistory(c.game.SANs(), c.game.StartFEN()))
		case "depth":
			err = c.handleDepth(args)
		case "select":
			err = c.handleSelect(args)
		case "save":
			err = c.handleSave(args)
		case "load":
			err = c.handleLoad(args)
		case "games":
			err = c.handleGames()
		case "svg":
			err = c.handleDiagram(args, false)
		case "png":
			err = c.handleDiagram(args, true)
		case "help":
			c.println(helpText)
		case "quit", "exit":
			return nil
		default:
			err = fmt.Errorf("unknown command %q", cmd)
		}

		if err != nil {
			c.printf("error: %v\n", err)
			c.log.Debug().Err(err).Str("command", cmd).Msg("command failed")
		}
	}

	return scanner.Err()
}

func (c *Console) finish(ctx context.Context) {
	if !c.game.Thinking() {
		return
	}
	if err := c.game.WaitAI(ctx); err != nil {
		c.log.Warn().Err(err).Msg("search still running at exit")
	}
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.out, s)
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// busy guards commands that read the board while the engine owns it.
func (c *Console) busy() error {
	if c.game.Thinking() {
		return engine.ErrBusy
	}
	return nil
}

func (c *Console) handleNew() error {
	if err := c.game.Reset(); err != nil {
		return err
	}
	c.recorded = false
	c.println("new game")
	return nil
}

func (c *Console) handleDisplay() error {
	if err := c.busy(); err != nil {
		return err
	}
	c.printf("%s\n%s\n", c.game.Board().String(), c.game.TurnText())
	if status := c.game.AIStatus(); status != "" {
		c.println(status)
	}
	return nil
}

func (c *Console) handleMoves() error {
	moves, err := c.game.LegalMoves()
	if err != nil {
		return err
	}
	b := c.game.Board()
	parts := make([]string, len(moves))
	for i, m := range moves {
		parts[i] = m.String() + "(" + b.SAN(m) + ")"
	}
	c.printf("%d moves: %s\n", len(moves), strings.Join(parts, " "))
	return nil
}

// parseMove accepts coordinate notation or SAN.
func (c *Console) parseMove(s string) (board.Move, error) {
	b := c.game.Board()
	if m, err := b.ParseMove(s); err == nil {
		return m, nil
	}
	return b.ParseSAN(s, c.game.Turn())
}

func (c *Console) handleMove(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: move <e2e4|Nf3>")
	}
	if err := c.busy(); err != nil {
		return err
	}
	m, err := c.parseMove(args[0])
	if err != nil {
		return err
	}
	if err := c.game.PerformMove(m); err != nil {
		return err
	}
	return c.afterMove()
}

// afterMove prints the move just played and reports a finished game.
func (c *Console) afterMove() error {
	history := c.game.History()
	last := history[len(history)-1]
	c.printf("played %s (%s)\n", last.SAN, last.Move)

	status, err := c.game.Status()
	if err != nil {
		return err
	}
	result, err := c.game.Result()
	if err != nil || result == "" {
		return err
	}
	c.println(result)
	c.recordResult(status)
	return nil
}

func (c *Console) recordResult(status board.GameStatus) {
	if c.store == nil || c.recorded {
		return
	}

	r := storage.ResultDraw
	if status == board.Checkmate {
		r = storage.ResultLoss
		if c.game.Turn() != c.human {
			r = storage.ResultWin
		}
	}
	if err := c.store.RecordGame(r); err != nil {
		c.log.Error().Err(err).Msg("failed to record game")
		return
	}
	c.recorded = true
}

func (c *Console) handleUndo() error {
	ok, err := c.game.Rewind()
	if err != nil {
		return err
	}
	if !ok {
		c.println("nothing to undo")
		return nil
	}
	c.recorded = false
	c.println("move taken back")
	return nil
}

func (c *Console) handleGo(args []string) error {
	side := c.game.Turn()
	if len(args) > 0 {
		var err error
		side, err = board.ParseSide(args[0])
		if err != nil {
			return err
		}
	}
	if err := c.game.StartAI(side); err != nil {
		return err
	}
	c.printf("thinking for %v at depth %d\n", side, c.eng.Depth())
	return nil
}

func (c *Console) handlePoll() error {
	done, err := c.game.PollAI()
	if err != nil {
		return err
	}
	if !done {
		c.println(c.game.AIStatus())
		return nil
	}
	c.printSuggestion()
	return nil
}

func (c *Console) handleWait(ctx context.Context) error {
	if err := c.game.WaitAI(ctx); err != nil {
		return err
	}
	c.printSuggestion()
	return nil
}

func (c *Console) printSuggestion() {
	m, ok := c.game.Suggestion()
	if !ok {
		c.println("no move")
		return
	}
	c.printf("bestmove %s (%s)\n", m, c.game.Board().SAN(m))
}

// handlePlay plays the engine's move for the side to move, searching
// first when no suggestion is waiting.
func (c *Console) handlePlay(ctx context.Context) error {
	if _, ok := c.game.Suggestion(); !ok {
		if !c.game.Pending() {
			if err := c.game.StartAI(c.game.Turn()); err != nil {
				return err
			}
		}
		if err := c.game.WaitAI(ctx); err != nil {
			return err
		}
	}
	if _, ok := c.game.Suggestion(); !ok {
		c.println("no move")
		return nil
	}
	if err := c.game.ExecuteSuggestion(); err != nil {
		return err
	}
	return c.afterMove()
}

func (c *Console) handleStatus() {
	c.println(c.game.TurnText())
	status, err := c.game.Status()
	if err != nil {
		c.println(c.game.AIStatus())
		return
	}
	c.printf("status: %v\n", status)
	if result, _ := c.game.Result(); result != "" {
		c.println(result)
	}
	if status := c.game.AIStatus(); status != "" {
		c.println(status)
	}
}

func (c *Console) handleFEN() error {
	if err := c.busy(); err != nil {
		return err
	}
	fen, err := c.game.FEN()
	if err != nil {
		return err
	}
	c.println(fen)
	return nil
}

func (c *Console) handleEval() error {
	if err := c.busy(); err != nil {
		return err
	}
	c.printf("eval %s\n", engine.ScoreToString(c.eng.Evaluate(c.game.Board())))
	return nil
}

func (c *Console) handlePerft(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: perft <depth>")
	}
	depth, err := strconv.Atoi(args[0])
	if err != nil || depth < 1 || depth > maxPerftDepth {
		return fmt.Errorf("perft depth must be 1..%d", maxPerftDepth)
	}
	if err := c.busy(); err != nil {
		return err
	}

	nodes, err := c.eng.Perft(c.game.Board().Clone(), c.game.Turn(), depth)
	if err != nil {
		return err
	}
	c.printf("perft %d: %d\n", depth, nodes)
	return nil
}

func (c *Console) handleSetFEN(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: setfen <fen>")
	}
	if err := c.game.SetPosition(strings.Join(args, " ")); err != nil {
		return err
	}
	c.recorded = false
	c.println(c.game.TurnText())
	return nil
}

func (c *Console) handleDepth(args []string) error {
	if len(args) == 0 {
		c.printf("depth %d\n", c.eng.Depth())
		return nil
	}
	depth, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid depth %q", args[0])
	}
	if err := c.busy(); err != nil {
		return err
	}
	c.eng.SetDepth(depth)
	c.printf("depth %d\n", c.eng.Depth())

	if c.store != nil {
		prefs, err := c.store.LoadPreferences()
		if err != nil {
			return err
		}
		prefs.Depth = c.eng.Depth()
		return c.store.SavePreferences(prefs)
	}
	return nil
}

func (c *Console) handleSelect(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: select <square>")
	}
	pos, err := board.ParsePosition(args[0])
	if err != nil {
		return err
	}
	ok, err := c.game.Select(pos)
	if err != nil {
		return err
	}
	if !ok {
		c.printf("%v is empty\n", pos)
		return nil
	}
	c.printf("selected %v\n", pos)
	return nil
}

func (c *Console) handleSave(args []string) error {
	if c.store == nil {
		return ErrNoStorage
	}
	if len(args) != 1 {
		return errors.New("usage: save <name>")
	}
	err := c.store.SaveGame(args[0], storage.SavedGame{
		StartFEN:  c.game.StartFEN(),
		Moves:     c.game.Moves(),
		HumanSide: strings.ToLower(c.human.String()),
		Depth:     c.eng.Depth(),
	})
	if err != nil {
		return err
	}
	c.log.Info().Str("name", args[0]).Int("plies", len(c.game.Moves())).Msg("game saved")
	c.printf("saved %s\n", args[0])
	return nil
}

func (c *Console) handleLoad(args []string) error {
	if c.store == nil {
		return ErrNoStorage
	}
	if len(args) != 1 {
		return errors.New("usage: load <name>")
	}
	if err := c.busy(); err != nil {
		return err
	}
	saved, err := c.store.LoadGame(args[0])
	if err != nil {
		return err
	}
	if err := c.game.Replay(saved.StartFEN, saved.Moves); err != nil {
		return err
	}
	if side, err := board.ParseSide(saved.HumanSide); err == nil {
		c.human = side
	}
	if saved.Depth > 0 {
		c.eng.SetDepth(saved.Depth)
	}
	result, err := c.game.Result()
	if err != nil {
		return err
	}
	c.recorded = result != ""

	c.log.Info().Str("name", saved.Name).Int("plies", len(saved.Moves)).Msg("game loaded")
	c.printf("loaded %s, %s\n", saved.Name, c.game.TurnText())
	return nil
}

func (c *Console) handleGames() error {
	if c.store == nil {
		return ErrNoStorage
	}
	games, err := c.store.ListGames()
	if err != nil {
		return err
	}
	if len(games) == 0 {
		c.println("no saved games")
		return nil
	}
	for _, g := range games {
		c.printf("%-16s %3d plies  %s\n", g.Name, len(g.Moves), g.SavedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func (c *Console) handleDiagram(args []string, asPNG bool) error {
	if len(args) != 1 {
		return errors.New("usage: svg|png <file>")
	}
	if err := c.busy(); err != nil {
		return err
	}

	opts := diagram.Options{
		Flip:        c.human == board.Black,
		Coordinates: true,
	}
	if pos, ok := c.game.Selected(); ok {
		opts.Highlights = append(opts.Highlights, pos)
	}
	if m, ok := c.game.Suggestion(); ok {
		opts.Highlights = append(opts.Highlights, m.Src, m.Dst)
	}

	f, err := os.Create(args[0])
	if err != nil {
		return err
	}
	if asPNG {
		err = diagram.WritePNG(f, c.game.Board(), opts)
	} else {
		err = diagram.WriteSVG(f, c.game.Board(), opts)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	c.printf("wrote %s\n", args[0])
	return nil
}

// formatHistory numbers SAN moves in pairs, starting with "1..." when
// black moved first.
func formatHistory(sans []string, startFEN string) string {
	if len(sans) == 0 {
		return "(no moves)"
	}

	var sb strings.Builder
	num := 1
	i := 0
	if fields := strings.Fields(startFEN); len(fields) > 1 && fields[1] == "b" {
		sb.WriteString("1... " + sans[0])
		num, i = 2, 1
	}
	for ; i < len(sans); i += 2 {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%d. %s", num, sans[i])
		if i+1 < len(sans) {
			sb.WriteString(" " + sans[i+1])
		}
		num++
	}
	return sb.String()
}

const helpText = `commands:
  new                 start a new game
  d                   show the board
  moves               list legal moves
  move <e2e4|Nf3>     play a move
  undo                take back the last move
  go [white|black]    start the engine in the background
  poll                check on the engine
  wait                wait for the engine
  play                play the engine's move
  status              side to move and game state
  eval                static evaluation
  perft <n>           count leaf nodes
  fen                 print the position
  setfen <fen>        set up a position
  history             list the moves played
  depth [n]           show or set search depth
  select <square>     highlight a square in diagrams
  save <name>         save the game
  load <name>         load a saved game
  games               list saved games
  svg <file>          write an SVG diagram
  png <file>          write a PNG diagram
  quit                leave`
