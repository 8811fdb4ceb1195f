package highscore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/wricardo/same-game/game/engine"
)

var (
	ErrNegativeScore = errors.New("high score cannot be negative")
	ErrCorruptStore  = errors.New("high score file does not hold an integer")
)

var (
	_ engine.HighScoreStore = (*FileStore)(nil)
	_ engine.HighScoreStore = (*MemoryStore)(nil)
)

// FileStore keeps a single high score as decimal text in a file
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store backed by path. The file is created on the
// first Save; its parent directory is created now.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("high score path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create high score directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Path returns the backing file path
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the recorded score. A missing or blank file is a score of 0.
func (s *FileStore) Load() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read high score file: %w", err)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return 0, nil
	}
	// only the first line carries the score
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = strings.TrimSpace(text[:i])
	}

	score, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrCorruptStore, text)
	}
	if score < 0 {
		return 0, fmt.Errorf("%w: %d", ErrNegativeScore, score)
	}
	return score, nil
}

// Save replaces the recorded score. The new value is written to a temporary
// file and renamed over the old one, so a failed write leaves the previous
// score intact.
func (s *FileStore) Save(score int) error {
	if score < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeScore, score)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary high score file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(strconv.Itoa(score)); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write high score: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync high score: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close high score file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace high score file: %w", err)
	}
	return nil
}

// MemoryStore keeps the high score in memory; used by tests and when no data
// directory is configured
type MemoryStore struct {
	mu    sync.Mutex
	score int
}

// NewMemoryStore creates a store holding score
func NewMemoryStore(score int) *MemoryStore {
	return &MemoryStore{score: score}
}

// Load returns the stored score
func (m *MemoryStore) Load() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.score, nil
}

// Save replaces the stored score
func (m *MemoryStore) Save(score int) error {
	if score < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeScore, score)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.score = score
	return nil
}
