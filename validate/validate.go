// Command validate checks every maze file in a directory (default
// ../configs). For each .json, .yaml, .yml or .txt file it reports:
//   - parse errors and missing fields
//   - layout problems (ragged rows, unknown characters, missing or repeated S/E)
//   - out-of-range cheat parameters
//   - a goal that cannot be reached without cheating
//
// Valid mazes are summarised with their size, baseline and the number of
// cheats that qualify under the file's own parameters.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/mcp-training/racetrack/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...interface{}) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateMaze loads and checks a single maze file
func validateMaze(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	config, err := engine.DecodeMazeConfig(filePath, data)
	if err != nil {
		result.fail("Invalid document: %v", err)
		return result
	}

	if err := config.Params().Validate(); err != nil {
		result.fail("%v", err)
	}

	grid, err := config.Grid()
	if err != nil {
		var malformed *engine.MalformedGridError
		if errors.As(err, &malformed) && malformed.Line > 0 {
			result.fail("Layout error at row %d: %s", malformed.Line, malformed.Reason)
		} else {
			result.fail("Layout error: %v", err)
		}
		return result
	}

	eng, err := engine.NewEngine(grid)
	if err != nil {
		var unreachable *engine.UnreachableGoalError
		if errors.As(err, &unreachable) {
			result.fail("Connectivity failure: goal (%d,%d) unreachable from start (%d,%d)",
				unreachable.Goal.X, unreachable.Goal.Y, unreachable.Start.X, unreachable.Start.Y)
		} else {
			result.fail("%v", err)
		}
		return result
	}

	if !result.Valid {
		return result
	}

	result.info("Name: %s", config.Name)
	result.info("Grid: %dx%d", grid.Width(), grid.Height())
	result.info("Baseline: %d steps", eng.Baseline())

	offRoute := grid.OpenCount() - (eng.Baseline() + 1)
	if offRoute == 0 {
		result.info("Track: single corridor")
	} else {
		result.info("Track: %d open cells off the shortest route", offRoute)
	}

	params := config.Params()
	count, err := eng.Count(params)
	if err != nil {
		result.fail("%v", err)
		return result
	}
	result.info("Cheats: %d (budget %d, min saving %d)", count, params.MaxCheatBudget, params.MinSaving)

	return result
}

// mazeFiles lists the maze documents in dir, sorted by name
func mazeFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".json", ".yaml", ".yml", ".txt":
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// report prints the results and returns whether all files were valid
func report(results []ValidationResult) bool {
	allValid := true
	for _, result := range results {
		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All mazes are valid!")
	} else {
		fmt.Println("❌ Some mazes have errors")
	}
	return allValid
}

func main() {
	dir := flag.String("dir", "../configs", "Directory containing maze files")
	flag.Parse()

	files, err := mazeFiles(*dir)
	if err != nil {
		fmt.Printf("Error finding maze files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No maze files in %s\n", *dir)
		os.Exit(1)
	}

	results := make([]ValidationResult, 0, len(files))
	for _, file := range files {
		results = append(results, validateMaze(file))
	}

	if !report(results) {
		os.Exit(1)
	}
}
