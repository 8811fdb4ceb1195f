// Command analyze plays seeded games on each board configuration with a
// simple strategy and prints score statistics. It is a quick way to see how a
// board size and palette play before publishing a config.
//
//	analyze --games 200 --strategy greedy classic small
package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"os"
	"sort"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/same-game/game/config"
	"github.com/wricardo/same-game/game/engine"
)

// Strategy picks the ball to select next. It is only called while the board
// still has a removable group.
type Strategy func(b *engine.Board, rng *rand.Rand) engine.Position

var strategies = map[string]Strategy{
	// greedy takes the largest group
	"greedy": func(b *engine.Board, _ *rand.Rand) engine.Position {
		pos, _, _ := b.BestMove()
		return pos
	},
	// smallest takes the smallest group, saving big ones for later
	"smallest": func(b *engine.Board, _ *rand.Rand) engine.Position {
		groups := b.Groups()
		return groups[len(groups)-1][0]
	},
	"random": func(b *engine.Board, rng *rand.Rand) engine.Position {
		groups := b.Groups()
		return groups[rng.IntN(len(groups))][0]
	},
}

// GameResult is the outcome of one simulated game
type GameResult struct {
	Score     int
	Moves     int
	BallsLeft int
}

// Cleared reports whether every ball was removed
func (r GameResult) Cleared() bool {
	return r.BallsLeft == 0
}

// Summary aggregates the results of many games on one config
type Summary struct {
	Config    string
	Strategy  string
	Games     int
	MeanScore float64
	MinScore  int
	MaxScore  int
	MeanMoves float64
	ClearRate float64
}

func playGame(cfg *engine.GameConfig, seed uint64, strategy Strategy) (GameResult, error) {
	board, err := engine.NewBoardFromConfig(cfg, nil, seed)
	if err != nil {
		return GameResult{}, err
	}
	rng := engine.NewRand(seed)

	for {
		over, err := board.IsGameOver()
		if err != nil {
			return GameResult{}, err
		}
		if over {
			break
		}
		if _, err := board.RemoveGroup(strategy(board, rng)); err != nil {
			return GameResult{}, err
		}
	}

	return GameResult{
		Score:     board.Score(),
		Moves:     board.Moves(),
		BallsLeft: board.BallsLeft(),
	}, nil
}

// analyze plays games deals of cfg, seeded seed, seed+1, ...
func analyze(name string, cfg *engine.GameConfig, games int, seed uint64, strategyName string) (Summary, error) {
	strategy, ok := strategies[strategyName]
	if !ok {
		return Summary{}, fmt.Errorf("unknown strategy %q (available: %v)", strategyName, strategyNames())
	}
	if games < 1 {
		return Summary{}, fmt.Errorf("games must be at least 1, got %d", games)
	}

	s := Summary{
		Config:   name,
		Strategy: strategyName,
		Games:    games,
		MinScore: math.MaxInt,
	}
	totalScore, totalMoves, cleared := 0, 0, 0
	for i := 0; i < games; i++ {
		result, err := playGame(cfg, seed+uint64(i), strategy)
		if err != nil {
			return Summary{}, fmt.Errorf("game %d: %w", i, err)
		}
		totalScore += result.Score
		totalMoves += result.Moves
		if result.Cleared() {
			cleared++
		}
		s.MinScore = min(s.MinScore, result.Score)
		s.MaxScore = max(s.MaxScore, result.Score)
	}

	s.MeanScore = float64(totalScore) / float64(games)
	s.MeanMoves = float64(totalMoves) / float64(games)
	s.ClearRate = float64(cleared) / float64(games)
	return s, nil
}

func strategyNames() []string {
	names := make([]string, 0, len(strategies))
	for name := range strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func printSummary(w io.Writer, cfg *engine.GameConfig, s Summary) {
	palette, _ := cfg.ResolvePalette()

	fmt.Fprintf(w, "\n=== Analyzing %s ===\n", s.Config)
	fmt.Fprintf(w, "Name: %s\n", cfg.Name)
	fmt.Fprintf(w, "Board: %d x %d, %d colours\n", cfg.Width, cfg.Height, len(palette))
	fmt.Fprintf(w, "Strategy: %s over %d games\n", s.Strategy, s.Games)
	fmt.Fprintf(w, "Score: mean %.1f, min %d, max %d\n", s.MeanScore, s.MinScore, s.MaxScore)
	fmt.Fprintf(w, "Moves: mean %.1f\n", s.MeanMoves)
	if s.ClearRate > 0 {
		fmt.Fprintf(w, "✅ Cleared %.0f%% of boards\n", s.ClearRate*100)
	} else {
		fmt.Fprintf(w, "⚠️  No board was cleared\n")
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Simulate games on board configurations",
		ArgsUsage: "[config ids...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "Directory containing game configurations",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.IntFlag{
				Name:  "games",
				Value: 100,
				Usage: "Games to play per config",
			},
			&cli.IntFlag{
				Name:  "seed",
				Value: 1,
				Usage: "Seed of the first deal",
			},
			&cli.StringFlag{
				Name:  "strategy",
				Value: "greedy",
				Usage: fmt.Sprintf("Move strategy, one of %v", strategyNames()),
			},
		},
		Action: run,
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	manager, err := config.NewManager(cmd.String("config-dir"))
	if err != nil {
		return err
	}

	ids := cmd.Args().Slice()
	if len(ids) == 0 {
		infos, err := manager.ListConfigs()
		if err != nil {
			return err
		}
		for _, info := range infos {
			ids = append(ids, info.ConfigID)
		}
	}

	for _, id := range ids {
		cfg, err := manager.LoadConfig(id)
		if err != nil {
			return fmt.Errorf("config %s: %w", id, err)
		}

		summary, err := analyze(id, cfg, cmd.Int("games"), uint64(cmd.Int("seed")), cmd.String("strategy"))
		if err != nil {
			return fmt.Errorf("config %s: %w", id, err)
		}
		printSummary(cmd.Writer, cfg, summary)
	}
	return nil
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
