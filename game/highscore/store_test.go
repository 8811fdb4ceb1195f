package highscore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/same-game/game/engine"
)

func TestFileStore_MissingFile(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "scores", "top.txt"))
	require.NoError(t, err)

	score, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 0, score)
}

func TestFileStore_EmptyAndWhitespace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "top.txt")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	for _, content := range []string{"", "   ", "\n"} {
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		score, err := store.Load()
		require.NoError(t, err)
		assert.Equalf(t, 0, score, "content %q", content)
	}

	require.NoError(t, os.WriteFile(path, []byte("  314 \n"), 0644))
	score, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 314, score)
}

func TestFileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "top.txt")
	require.NoError(t, os.WriteFile(path, []byte("lots"), 0644))

	store, err := NewFileStore(path)
	require.NoError(t, err)

	_, err = store.Load()
	assert.True(t, errors.Is(err, ErrCorruptStore))
}

func TestFileStore_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "top.txt")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Save(100))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "100", string(data))

	require.NoError(t, store.Save(150))
	score, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 150, score)

	// no temporary files are left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStore_RejectsNegative(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "top.txt"))
	require.NoError(t, err)
	assert.ErrorIs(t, store.Save(-1), ErrNegativeScore)
}

func TestFileStore_SaveFailure(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "scores")
	store, err := NewFileStore(filepath.Join(dir, "top.txt"))
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(dir))
	assert.Error(t, store.Save(200))
}

func TestFileStore_TargetIsDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "top.txt")
	require.NoError(t, os.Mkdir(path, 0755))

	store, err := NewFileStore(path)
	require.NoError(t, err)

	assert.Error(t, store.Save(10))
	_, err = store.Load()
	assert.Error(t, err)

	// the failed rename cleans up after itself
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStore_WithBoard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "top.txt")
	require.NoError(t, os.WriteFile(path, []byte("100"), 0644))
	store, err := NewFileStore(path)
	require.NoError(t, err)

	board, err := engine.NewBoard(4, 4, engine.Palette{"red"}, store, engine.NewRand(1))
	require.NoError(t, err)
	require.Equal(t, 100, board.HighScore())

	_, err = board.RemoveGroup(engine.Position{X: 0, Y: 0})
	require.NoError(t, err)
	over, err := board.IsGameOver()
	require.NoError(t, err)
	require.True(t, over)

	score, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 256, score)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore(7)
	score, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 7, score)

	require.NoError(t, store.Save(9))
	score, _ = store.Load()
	assert.Equal(t, 9, score)
	assert.Error(t, store.Save(-4))
}

func TestRegistry(t *testing.T) {
	dir := t.TempDir()
	reg, err := NewRegistry(dir)
	require.NoError(t, err)

	classic, err := reg.Store("classic")
	require.NoError(t, err)
	again, err := reg.Store("Classic")
	require.NoError(t, err)
	assert.Same(t, classic, again)

	require.NoError(t, classic.Save(42))
	_, err = os.Stat(filepath.Join(dir, "classic.txt"))
	require.NoError(t, err)

	odd, err := reg.Store("../Big Board!")
	require.NoError(t, err)
	require.NoError(t, odd.Save(5))

	scores, err := reg.Scores()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"classic": 42, "_big_board_": 5}, scores)
}

func TestRegistry_InMemory(t *testing.T) {
	reg, err := NewRegistry("")
	require.NoError(t, err)

	s, err := reg.Store("")
	require.NoError(t, err)
	require.NoError(t, s.Save(3))

	scores, err := reg.Scores()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"default": 3}, scores)
}
