package engine

import "strings"

// Path overlay characters
const (
	PathChar      = 'O'
	PhaseOverflow = '*'
)

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	return abs(from.X-to.X) + abs(from.Y-to.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// RenderPath draws a phased path over the maze. Normal steps are marked O,
// steps taken during a cheat show their phase count (1-9, * beyond). Start
// and goal keep their markers.
func RenderPath(grid *Grid, path *PhasedPath) string {
	rows := make([][]byte, grid.height)
	for y := 0; y < grid.height; y++ {
		rows[y] = make([]byte, grid.width)
		for x := 0; x < grid.width; x++ {
			rows[y][x] = grid.charAt(Position{X: x, Y: y})
		}
	}

	if path != nil {
		for _, s := range path.States {
			if s.Pos == grid.start || s.Pos == grid.goal || !grid.InBounds(s.Pos) {
				continue
			}
			rows[s.Pos.Y][s.Pos.X] = phaseMark(s.PhaseCount)
		}
	}

	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = string(row)
	}
	return strings.Join(lines, "\n")
}

func phaseMark(c int) byte {
	switch {
	case c == 0:
		return PathChar
	case c <= 9:
		return byte('0' + c)
	default:
		return PhaseOverflow
	}
}
