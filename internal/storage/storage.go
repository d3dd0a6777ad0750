// Package storage persists saved games, preferences and game statistics in
// an embedded BadgerDB database.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/klauspost/compress/zstd"
)

const appName = "plychess"

// Storage keys
const (
	keyPreferences = "preferences"
	keyStats       = "stats"
	prefixGame     = "game/"
)

// ErrNotFound is returned when a saved game does not exist.
var ErrNotFound = errors.New("storage: not found")

// ErrInvalidName is returned for an empty saved game name.
var ErrInvalidName = errors.New("storage: invalid name")

// Preferences stores the settings applied at startup.
type Preferences struct {
	Username   string    `json:"username"`
	HumanSide  string    `json:"human_side"`
	Depth      int       `json:"depth"`
	LogLevel   string    `json:"log_level"`
	LastPlayed time.Time `json:"last_played"`
}

// DefaultPreferences returns default preferences.
func DefaultPreferences() *Preferences {
	return &Preferences{
		Username:   "Player",
		HumanSide:  "white",
		Depth:      5,
		LogLevel:   "info",
		LastPlayed: time.Now(),
	}
}

// SavedGame is a game that can be restored by replaying its moves from
// StartFEN.
type SavedGame struct {
	Name      string    `json:"name"`
	StartFEN  string    `json:"start_fen"`
	Moves     []string  `json:"moves"`
	HumanSide string    `json:"human_side"`
	Depth     int       `json:"depth"`
	SavedAt   time.Time `json:"saved_at"`
}

// GameStats stores game statistics
type GameStats struct {
	GamesPlayed    int `json:"games_played"`
	Wins           int `json:"wins"`
	Losses         int `json:"losses"`
	Draws          int `json:"draws"`
	LongestWinStrk int `json:"longest_win_streak"`
	CurrentStreak  int `json:"current_streak"`
}

// GameResult is the outcome of a finished game from the human's view.
type GameResult int

const (
	ResultLoss GameResult = iota
	ResultDraw
	ResultWin
)

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db      *badger.DB
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// Open opens the database in dir. An empty dir opens an in-memory
// database that is discarded on Close.
func Open(dir string) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		db.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &Storage{db: db, encoder: encoder, decoder: decoder}, nil
}

// DefaultDir returns the database directory inside the user's data
// directory: $XDG_DATA_HOME or ~/.local/share on Unix, Application Support
// on macOS and %AppData% on Windows.
func DefaultDir() (string, error) {
	var base string
	switch runtime.GOOS {
	case "darwin", "windows":
		dir, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		base = dir
	default:
		base = os.Getenv("XDG_DATA_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			base = filepath.Join(home, ".local", "share")
		}
	}
	return filepath.Join(base, appName, "db"), nil
}

// OpenDefault opens the database in DefaultDir, creating it if needed.
func OpenDefault() (*Storage, error) {
	dir, err := DefaultDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	return Open(dir)
}

// Close closes the database
func (s *Storage) Close() error {
	if s.decoder != nil {
		s.decoder.Close()
	}
	if s.encoder != nil {
		s.encoder.Close()
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Storage) putJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// getJSON decodes the value at key into v. A missing key leaves v as is.
func (s *Storage) getJSON(key string, v any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
}

// SavePreferences saves preferences
func (s *Storage) SavePreferences(prefs *Preferences) error {
	prefs.LastPlayed = time.Now()
	return s.putJSON(keyPreferences, prefs)
}

// LoadPreferences loads preferences, returns defaults if not found
func (s *Storage) LoadPreferences() (*Preferences, error) {
	prefs := DefaultPreferences()
	err := s.getJSON(keyPreferences, prefs)
	return prefs, err
}

// SaveGame stores g under name, replacing any game of the same name.
func (s *Storage) SaveGame(name string, g SavedGame) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidName
	}
	g.Name = name
	if g.SavedAt.IsZero() {
		g.SavedAt = time.Now()
	}

	data, err := json.Marshal(g)
	if err != nil {
		return err
	}
	compressed := s.encoder.EncodeAll(data, nil)

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(prefixGame+name), compressed)
	})
}

// LoadGame returns the game saved under name.
func (s *Storage) LoadGame(name string) (*SavedGame, error) {
	var g SavedGame
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefixGame + name))
		if err == badger.ErrKeyNotFound {
			return fmt.Errorf("game %q: %w", name, ErrNotFound)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return s.decodeGame(val, &g)
		})
	})
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *Storage) decodeGame(val []byte, g *SavedGame) error {
	data, err := s.decoder.DecodeAll(val, nil)
	if err != nil {
		return fmt.Errorf("decompress game: %w", err)
	}
	return json.Unmarshal(data, g)
}

// ListGames returns all saved games, most recent first.
func (s *Storage) ListGames() ([]SavedGame, error) {
	var games []SavedGame
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixGame)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var g SavedGame
			err := it.Item().Value(func(val []byte) error {
				return s.decodeGame(val, &g)
			})
			if err != nil {
				return err
			}
			games = append(games, g)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(games, func(a, b SavedGame) int {
		return b.SavedAt.Compare(a.SavedAt)
	})
	return games, nil
}

// DeleteGame removes the game saved under name.
func (s *Storage) DeleteGame(name string) error {
	key := []byte(prefixGame + name)
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == badger.ErrKeyNotFound {
			return fmt.Errorf("game %q: %w", name, ErrNotFound)
		} else if err != nil {
			return err
		}
		return txn.Delete(key)
	})
}

// SaveStats saves game statistics
func (s *Storage) SaveStats(stats *GameStats) error {
	return s.putJSON(keyStats, stats)
}

// LoadStats loads game statistics, returns empty stats if not found
func (s *Storage) LoadStats() (*GameStats, error) {
	stats := &GameStats{}
	err := s.getJSON(keyStats, stats)
	return stats, err
}

// RecordGame records a completed game and updates statistics
func (s *Storage) RecordGame(result GameResult) error {
	stats, err := s.LoadStats()
	if err != nil {
		return err
	}

	stats.GamesPlayed++
	switch result {
	case ResultDraw:
		stats.Draws++
		stats.CurrentStreak = 0
	case ResultWin:
		stats.Wins++
		stats.CurrentStreak++
		if stats.CurrentStreak > stats.LongestWinStrk {
			stats.LongestWinStrk = stats.CurrentStreak
		}
	default:
		stats.Losses++
		stats.CurrentStreak = 0
	}

	return s.SaveStats(stats)
}

// GetWinRate returns the win rate as a percentage (0-100)
func (s *GameStats) GetWinRate() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.GamesPlayed) * 100
}
