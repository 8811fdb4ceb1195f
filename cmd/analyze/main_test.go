package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/wricardo/same-game/game/engine"
)

func monoConfig(width, height int) *engine.GameConfig {
	return &engine.GameConfig{
		Name:    "Mono",
		Width:   width,
		Height:  height,
		Palette: engine.Palette{"red"},
	}
}

func TestPlayGame_SingleColourClears(t *testing.T) {
	for name, strategy := range strategies {
		t.Run(name, func(t *testing.T) {
			result, err := playGame(monoConfig(3, 2), 1, strategy)
			if err != nil {
				t.Fatalf("playGame failed: %v", err)
			}
			if result.Score != 36 {
				t.Errorf("Expected score 36, got %d", result.Score)
			}
			if result.Moves != 1 {
				t.Errorf("Expected 1 move, got %d", result.Moves)
			}
			if !result.Cleared() {
				t.Errorf("Expected a cleared board, %d balls left", result.BallsLeft)
			}
		})
	}
}

func TestPlayGame_NoMoves(t *testing.T) {
	result, err := playGame(monoConfig(1, 1), 1, strategies["greedy"])
	if err != nil {
		t.Fatalf("playGame failed: %v", err)
	}
	if result.Score != 0 || result.Moves != 0 || result.BallsLeft != 1 {
		t.Errorf("Expected an untouched board, got %+v", result)
	}
}

func TestPlayGame_Deterministic(t *testing.T) {
	cfg := engine.DefaultGameConfig()
	for name, strategy := range strategies {
		first, err := playGame(cfg, 42, strategy)
		if err != nil {
			t.Fatalf("%s: playGame failed: %v", name, err)
		}
		second, err := playGame(cfg, 42, strategy)
		if err != nil {
			t.Fatalf("%s: playGame failed: %v", name, err)
		}
		if first != second {
			t.Errorf("%s: same seed gave %+v and %+v", name, first, second)
		}
		if first.Moves == 0 || first.Score < 4*first.Moves {
			t.Errorf("%s: implausible result %+v", name, first)
		}
	}
}

func TestAnalyze(t *testing.T) {
	summary, err := analyze("mono", monoConfig(2, 2), 3, 7, "greedy")
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if summary.Games != 3 {
		t.Errorf("Expected 3 games, got %d", summary.Games)
	}
	if summary.MeanScore != 16 || summary.MinScore != 16 || summary.MaxScore != 16 {
		t.Errorf("Expected every game to score 16, got %+v", summary)
	}
	if summary.ClearRate != 1 {
		t.Errorf("Expected clear rate 1, got %v", summary.ClearRate)
	}
	if summary.MeanMoves != 1 {
		t.Errorf("Expected 1 move per game, got %v", summary.MeanMoves)
	}
}

func TestAnalyze_Errors(t *testing.T) {
	if _, err := analyze("mono", monoConfig(2, 2), 3, 1, "psychic"); err == nil || !strings.Contains(err.Error(), "unknown strategy") {
		t.Errorf("Expected unknown strategy error, got %v", err)
	}
	if _, err := analyze("mono", monoConfig(2, 2), 0, 1, "greedy"); err == nil {
		t.Error("Expected error for zero games")
	}
}

func TestStrategyNames(t *testing.T) {
	names := strategyNames()
	expected := []string{"greedy", "random", "smallest"}
	if strings.Join(names, ",") != strings.Join(expected, ",") {
		t.Errorf("Expected %v, got %v", expected, names)
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, monoConfig(2, 2), Summary{Config: "mono", Strategy: "greedy", Games: 2, MeanScore: 16, MinScore: 16, MaxScore: 16, MeanMoves: 1, ClearRate: 1})

	out := buf.String()
	for _, want := range []string{"=== Analyzing mono ===", "Board: 2 x 2, 1 colours", "mean 16.0, min 16, max 16", "Cleared 100% of boards"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}

	buf.Reset()
	printSummary(&buf, monoConfig(1, 1), Summary{Config: "tiny", Games: 1})
	if !strings.Contains(buf.String(), "No board was cleared") {
		t.Errorf("Expected no-clear warning, got:\n%s", buf.String())
	}
}

func TestRunCommand(t *testing.T) {
	var buf bytes.Buffer
	cmd := newCommand()
	cmd.Writer = &buf

	err := cmd.Run(context.Background(), []string{"analyze", "--config-dir", "../../configs", "--games", "2", "small"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(buf.String(), "=== Analyzing small ===") {
		t.Errorf("Unexpected output:\n%s", buf.String())
	}

	cmd = newCommand()
	cmd.Writer = &buf
	err = cmd.Run(context.Background(), []string{"analyze", "--config-dir", "../../configs", "missing"})
	if err == nil {
		t.Error("Expected error for unknown config")
	}
}
