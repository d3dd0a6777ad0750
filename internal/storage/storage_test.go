package storage

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/hailam/plychess/internal/testutil"
)

func openMemory(t *testing.T) *Storage {
	t.Helper()
	s, err := Open("")
	testutil.AssertNoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPreferences(t *testing.T) {
	t.Run("DefaultPreferences", func(t *testing.T) {
		prefs := DefaultPreferences()
		if prefs.Username != "Player" {
			t.Errorf("Expected username 'Player', got '%s'", prefs.Username)
		}
		if prefs.HumanSide != "white" {
			t.Errorf("Expected human side white, got %q", prefs.HumanSide)
		}
		if prefs.Depth != 5 {
			t.Errorf("Expected depth 5, got %d", prefs.Depth)
		}
	})

	t.Run("MissingReturnsDefaults", func(t *testing.T) {
		s := openMemory(t)
		prefs, err := s.LoadPreferences()
		testutil.AssertNoError(t, err)
		testutil.AssertEqual(t, prefs.Depth, 5)
		testutil.AssertEqual(t, prefs.LogLevel, "info")
	})

	t.Run("SaveAndLoad", func(t *testing.T) {
		s := openMemory(t)
		prefs := DefaultPreferences()
		prefs.Depth = 3
		prefs.HumanSide = "black"
		testutil.AssertNoError(t, s.SavePreferences(prefs))

		got, err := s.LoadPreferences()
		testutil.AssertNoError(t, err)
		testutil.AssertEqual(t, got.Depth, 3)
		testutil.AssertEqual(t, got.HumanSide, "black")
	})
}

func TestSavedGames(t *testing.T) {
	s := openMemory(t)

	first := SavedGame{
		StartFEN:  "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		Moves:     []string{"e2e4", "e7e5", "g1f3"},
		HumanSide: "white",
		Depth:     4,
		SavedAt:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	second := SavedGame{
		StartFEN:  first.StartFEN,
		Moves:     []string{"d2d4"},
		HumanSide: "black",
		Depth:     2,
		SavedAt:   first.SavedAt.Add(time.Hour),
	}

	testutil.AssertNoError(t, s.SaveGame("italian", first))
	testutil.AssertNoError(t, s.SaveGame("queens", second))

	got, err := s.LoadGame("italian")
	testutil.AssertNoError(t, err)
	first.Name = "italian"
	testutil.AssertEqual(t, *got, first)

	games, err := s.ListGames()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(games), 2)
	testutil.AssertEqual(t, games[0].Name, "queens")
	testutil.AssertEqual(t, games[1].Name, "italian")

	testutil.AssertNoError(t, s.DeleteGame("italian"))
	_, err = s.LoadGame("italian")
	testutil.AssertErrorIs(t, err, ErrNotFound)

	err = s.DeleteGame("italian")
	testutil.AssertErrorIs(t, err, ErrNotFound)

	games, err = s.ListGames()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(games), 1)
}

func TestSaveGameOverwrites(t *testing.T) {
	s := openMemory(t)

	testutil.AssertNoError(t, s.SaveGame("g", SavedGame{Moves: []string{"e2e4"}}))
	testutil.AssertNoError(t, s.SaveGame("g", SavedGame{Moves: []string{"d2d4", "d7d5"}}))

	got, err := s.LoadGame("g")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, got.Moves, []string{"d2d4", "d7d5"})
	testutil.AssertFalse(t, got.SavedAt.IsZero(), "SavedAt filled in")
}

func TestSaveGameEmptyName(t *testing.T) {
	s := openMemory(t)
	err := s.SaveGame("  ", SavedGame{})
	if !errors.Is(err, ErrInvalidName) {
		t.Fatalf("Expected ErrInvalidName, got %v", err)
	}
}

func TestStats(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		stats := &GameStats{}
		if stats.GetWinRate() != 0 {
			t.Errorf("Expected 0 win rate")
		}
	})

	t.Run("WinRate", func(t *testing.T) {
		stats := &GameStats{
			GamesPlayed: 10,
			Wins:        5,
			Losses:      3,
			Draws:       2,
		}
		rate := stats.GetWinRate()
		if rate != 50 {
			t.Errorf("Expected 50%% win rate, got %.2f%%", rate)
		}
	})

	t.Run("RecordGame", func(t *testing.T) {
		s := openMemory(t)
		for _, r := range []GameResult{ResultWin, ResultWin, ResultDraw, ResultWin, ResultLoss} {
			testutil.AssertNoError(t, s.RecordGame(r))
		}

		stats, err := s.LoadStats()
		testutil.AssertNoError(t, err)
		testutil.AssertEqual(t, *stats, GameStats{
			GamesPlayed:    5,
			Wins:           3,
			Losses:         1,
			Draws:          1,
			LongestWinStrk: 2,
			CurrentStreak:  0,
		})
	})
}

func TestOnDisk(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	testutil.AssertNoError(t, err)
	testutil.AssertNoError(t, s.SaveGame("persisted", SavedGame{Moves: []string{"e2e4"}}))
	testutil.AssertNoError(t, s.Close())

	s, err = Open(dir)
	testutil.AssertNoError(t, err)
	defer s.Close()

	got, err := s.LoadGame("persisted")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, got.Moves, []string{"e2e4"})
}

func TestDefaultDir(t *testing.T) {
	if runtime.GOOS == "darwin" || runtime.GOOS == "windows" {
		t.Skip("XDG_DATA_HOME only applies on Unix")
	}
	home := t.TempDir()
	t.Setenv("XDG_DATA_HOME", home)

	dir, err := DefaultDir()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, dir, filepath.Join(home, "plychess", "db"))

	s, err := OpenDefault()
	testutil.AssertNoError(t, err)
	testutil.AssertNoError(t, s.SaveStats(&GameStats{GamesPlayed: 1}))
	testutil.AssertNoError(t, s.Close())

	if _, err := os.Stat(dir); err != nil {
		t.Errorf("database directory was not created: %v", err)
	}
}
