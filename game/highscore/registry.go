package highscore

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/same-game/game/engine"
)

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// Registry hands out one high score store per game configuration. With an
// empty directory every store lives in memory.
type Registry struct {
	dir    string
	stores map[string]engine.HighScoreStore
	mu     sync.Mutex
}

// NewRegistry creates a registry writing <dir>/<config>.txt files
func NewRegistry(dir string) (*Registry, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create high score directory: %w", err)
		}
	}
	return &Registry{
		dir:    dir,
		stores: make(map[string]engine.HighScoreStore),
	}, nil
}

// Store returns the store for a config ID, creating it on first use
func (r *Registry) Store(configID string) (engine.HighScoreStore, error) {
	key := storeKey(configID)

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.stores[key]; ok {
		return s, nil
	}

	var s engine.HighScoreStore
	if r.dir == "" {
		s = NewMemoryStore(0)
	} else {
		fs, err := NewFileStore(filepath.Join(r.dir, key+".txt"))
		if err != nil {
			return nil, err
		}
		s = fs
	}
	r.stores[key] = s
	return s, nil
}

// Scores returns the recorded score for every config with a store file or
// an in-memory store, keyed by config ID
func (r *Registry) Scores() (map[string]int, error) {
	keys := map[string]bool{}

	r.mu.Lock()
	for k := range r.stores {
		keys[k] = true
	}
	r.mu.Unlock()

	if r.dir != "" {
		entries, err := os.ReadDir(r.dir)
		if err != nil {
			return nil, fmt.Errorf("failed to read high score directory: %w", err)
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
				continue
			}
			keys[strings.TrimSuffix(e.Name(), ".txt")] = true
		}
	}

	names := make([]string, 0, len(keys))
	for k := range keys {
		names = append(names, k)
	}
	sort.Strings(names)

	scores := make(map[string]int, len(names))
	for _, name := range names {
		s, err := r.Store(name)
		if err != nil {
			return nil, err
		}
		score, err := s.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load high score for %s: %w", name, err)
		}
		scores[name] = score
	}
	return scores, nil
}

func storeKey(configID string) string {
	key := unsafeName.ReplaceAllString(strings.ToLower(configID), "_")
	if key == "" {
		return "default"
	}
	return key
}
