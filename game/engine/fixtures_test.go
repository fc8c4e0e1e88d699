package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// exampleMaze has a cheat-free distance of 84
var exampleMaze = strings.Join([]string{
	"###############",
	"#...#...#.....#",
	"#.#.#.#.#.###.#",
	"#S#...#.#.#...#",
	"#######.#.#.###",
	"#######.#.#...#",
	"#######.#.###.#",
	"###..E#...#...#",
	"###.#######.###",
	"#...###...#...#",
	"#.#####.#.###.#",
	"#.#...#.#.#...#",
	"#.#.#.#.#.#.###",
	"#...#...#...###",
	"###############",
}, "\n")

// uMaze is a U-shaped corridor of length 6 around a single wall column
var uMaze = strings.Join([]string{
	"#####",
	"#S#E#",
	"#.#.#",
	"#...#",
	"#####",
}, "\n")

// serpentineMaze is a single winding corridor of length 22
var serpentineMaze = strings.Join([]string{
	"#########",
	"#S......#",
	"#######.#",
	"#.......#",
	"#.#######",
	"#......E#",
	"#########",
}, "\n")

func mustEngine(t *testing.T, text string) *CheatEngine {
	t.Helper()
	e, err := NewEngineFromText(text)
	require.NoError(t, err)
	return e
}

func params(budget, minSaving int) CheatParams {
	return CheatParams{MaxCheatBudget: budget, MinSaving: minSaving}
}
