// Command analyze runs the cheat analysis against maze files from the
// command line. Each subcommand loads one maze (JSON, YAML or raw .txt)
// and reports on it:
//
//	analyze count --maze configs/example.json --budget 20 --min-saving 50
//	analyze histogram --maze configs/example.json
//	analyze path --maze configs/tiny.txt --budget 2
//	analyze crosscheck --maze configs/serpentine.yaml
//	analyze summary --dir configs
//
// Flags left unset fall back to the parameters stored in the maze file.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/racetrack/game/engine"
)

func main() {
	if err := newApp(os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "count and inspect racetrack cheats",
		Writer:    out,
		ErrWriter: out,
		Commands: []*cli.Command{
			{
				Name:   "count",
				Usage:  "count qualifying cheats",
				Flags:  mazeFlags(true),
				Action: countAction(out),
			},
			{
				Name:   "histogram",
				Usage:  "print qualifying cheats grouped by saving",
				Flags:  mazeFlags(false),
				Action: histogramAction(out),
			},
			{
				Name:   "path",
				Usage:  "find the fastest route when one cheat is allowed",
				Flags:  mazeFlags(false),
				Action: pathAction(out),
			},
			{
				Name:   "crosscheck",
				Usage:  "compare the enumerator against the phase-space explorer",
				Flags:  mazeFlags(false),
				Action: crossCheckAction(out),
			},
			{
				Name:  "summary",
				Usage: "summarise every maze in a directory",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "dir", Value: "configs", Usage: "directory of maze files"},
				},
				Action: summaryAction(out),
			},
		},
	}
}

func mazeFlags(withWorkers bool) []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{Name: "maze", Aliases: []string{"file", "f"}, Usage: "maze file (.json, .yaml, .yml or .txt)", Required: true},
		&cli.IntFlag{Name: "budget", Aliases: []string{"b"}, Usage: "maximum cheat length in steps"},
		&cli.IntFlag{Name: "min-saving", Aliases: []string{"s"}, Usage: "minimum saving for a cheat to count"},
	}
	if withWorkers {
		flags = append(flags, &cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Value: 1, Usage: "parallel counting workers"})
	}
	return flags
}

// loadMaze builds the engine for --maze and resolves the cheat parameters
func loadMaze(cmd *cli.Command) (*engine.MazeConfig, *engine.CheatEngine, engine.CheatParams, error) {
	config, err := engine.LoadMazeConfig(cmd.String("maze"))
	if err != nil {
		return nil, nil, engine.CheatParams{}, err
	}

	grid, err := config.Grid()
	if err != nil {
		return nil, nil, engine.CheatParams{}, err
	}
	eng, err := engine.NewEngine(grid)
	if err != nil {
		return nil, nil, engine.CheatParams{}, err
	}

	params := config.Params()
	if cmd.IsSet("budget") {
		params.MaxCheatBudget = int(cmd.Int("budget"))
	}
	if cmd.IsSet("min-saving") {
		params.MinSaving = int(cmd.Int("min-saving"))
	}
	if err := params.Validate(); err != nil {
		return nil, nil, engine.CheatParams{}, err
	}
	return config, eng, params, nil
}

func countAction(out io.Writer) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		config, eng, params, err := loadMaze(cmd)
		if err != nil {
			return err
		}

		count, err := eng.CountParallel(ctx, params, int(cmd.Int("workers")))
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Maze: %s\n", config.Name)
		fmt.Fprintf(out, "Baseline: %d steps\n", eng.Baseline())
		fmt.Fprintf(out, "Qualifying cheats: %d (budget %d, min saving %d)\n", count, params.MaxCheatBudget, params.MinSaving)
		return nil
	}
}

func histogramAction(out io.Writer) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		config, eng, params, err := loadMaze(cmd)
		if err != nil {
			return err
		}

		histogram, err := eng.Histogram(params)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Maze: %s (budget %d, min saving %d)\n", config.Name, params.MaxCheatBudget, params.MinSaving)
		if len(histogram) == 0 {
			fmt.Fprintln(out, "No qualifying cheats")
			return nil
		}
		total := 0
		for _, bucket := range engine.SortedHistogram(histogram) {
			fmt.Fprintf(out, "%4d steps: %d\n", bucket.Saving, bucket.Count)
			total += bucket.Count
		}
		fmt.Fprintf(out, "Total: %d\n", total)
		return nil
	}
}

func pathAction(out io.Writer) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		config, eng, params, err := loadMaze(cmd)
		if err != nil {
			return err
		}

		path, err := eng.ShortestPath(params.MaxCheatBudget)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Maze: %s\n", config.Name)
		fmt.Fprintf(out, "Shortest path: %d steps (saves %d)\n", path.Length, eng.Baseline()-path.Length)
		if key, ok := path.Cheat(eng.Grid()); ok {
			fmt.Fprintf(out, "Cheat: (%d,%d) -> (%d,%d)\n", key.Entry.X, key.Entry.Y, key.Exit.X, key.Exit.Y)
		} else {
			fmt.Fprintln(out, "Cheat: none")
		}
		fmt.Fprintln(out, engine.RenderPath(eng.Grid(), path))
		return nil
	}
}

func crossCheckAction(out io.Writer) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		config, eng, params, err := loadMaze(cmd)
		if err != nil {
			return err
		}

		report, err := eng.CrossValidate(params)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Maze: %s (budget %d, min saving %d)\n", config.Name, params.MaxCheatBudget, params.MinSaving)
		fmt.Fprintln(out, report.String())
		if !report.Agree {
			return errors.New("enumerator and explorer disagree")
		}
		return nil
	}
}

func summaryAction(out io.Writer) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		dir := cmd.String("dir")
		entries, err := os.ReadDir(dir)
		if err != nil {
			return err
		}

		var files []string
		for _, entry := range entries {
			switch strings.ToLower(filepath.Ext(entry.Name())) {
			case ".json", ".yaml", ".yml", ".txt":
				if !entry.IsDir() {
					files = append(files, entry.Name())
				}
			}
		}
		sort.Strings(files)
		if len(files) == 0 {
			return fmt.Errorf("no maze files in %s", dir)
		}

		for _, file := range files {
			fmt.Fprintf(out, "\n=== %s ===\n", file)
			summarize(out, filepath.Join(dir, file))
		}
		return nil
	}
}

// summarize prints one maze's report; problems are printed, not returned
func summarize(out io.Writer, path string) {
	config, err := engine.LoadMazeConfig(path)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	grid, err := config.Grid()
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}

	fmt.Fprintf(out, "Name: %s\n", config.Name)
	fmt.Fprintf(out, "Grid: %d x %d, %d open cells\n", grid.Width(), grid.Height(), grid.OpenCount())

	eng, err := engine.NewEngine(grid)
	if err != nil {
		fmt.Fprintf(out, "⚠️  %v\n", err)
		return
	}
	fmt.Fprintf(out, "Baseline: %d steps\n", eng.Baseline())

	params := config.Params()
	histogram, err := eng.Histogram(params)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	total, best := 0, 0
	for saving, count := range histogram {
		total += count
		if saving > best {
			best = saving
		}
	}
	if total == 0 {
		fmt.Fprintf(out, "⚠️  No cheats save at least %d steps with budget %d\n", params.MinSaving, params.MaxCheatBudget)
		return
	}
	fmt.Fprintf(out, "✅ %d cheats (budget %d, min saving %d), best saves %d\n", total, params.MaxCheatBudget, params.MinSaving, best)
}
