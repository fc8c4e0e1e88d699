package engine

import (
	"fmt"
	"strings"
)

// Grid is an immutable maze: a row-major table of cell kinds plus the
// start and goal cells. Derived "what-if" grids are separate copies.
type Grid struct {
	width  int
	height int
	cells  []CellKind
	start  Position
	goal   Position
}

// ParseGrid builds a Grid from maze text. CRLF line endings and trailing
// blank lines are tolerated.
func ParseGrid(text string) (*Grid, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return ParseLines(strings.Split(text, "\n"))
}

// ParseLines builds a Grid from one string per maze row
func ParseLines(lines []string) (*Grid, error) {
	// Drop trailing blank lines left by editors
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return nil, &MalformedGridError{Reason: "empty layout"}
	}
	if len(lines) > MaxGridSize {
		return nil, &MalformedGridError{Reason: fmt.Sprintf("height %d exceeds limit %d", len(lines), MaxGridSize)}
	}

	width := len(strings.TrimSuffix(lines[0], "\r"))
	if width == 0 {
		return nil, &MalformedGridError{Line: 1, Reason: "empty row"}
	}
	if width > MaxGridSize {
		return nil, &MalformedGridError{Line: 1, Reason: fmt.Sprintf("width %d exceeds limit %d", width, MaxGridSize)}
	}

	g := &Grid{
		width:  width,
		height: len(lines),
		cells:  make([]CellKind, width*len(lines)),
	}

	var startLine, startCol, goalLine, goalCol int
	for y, raw := range lines {
		row := strings.TrimSuffix(raw, "\r")
		if len(row) != width {
			return nil, &MalformedGridError{
				Line:   y + 1,
				Reason: fmt.Sprintf("non-rectangular layout: expected width %d, got %d", width, len(row)),
			}
		}

		for x := 0; x < width; x++ {
			kind := Open
			switch row[x] {
			case WallChar:
				kind = Wall
			case OpenChar:
			case StartChar:
				if startLine != 0 {
					return nil, &MalformedGridError{
						Line:   y + 1,
						Column: x + 1,
						Reason: fmt.Sprintf("duplicate start marker (first at line %d, column %d)", startLine, startCol),
					}
				}
				startLine, startCol = y+1, x+1
				g.start = Position{X: x, Y: y}
			case GoalChar:
				if goalLine != 0 {
					return nil, &MalformedGridError{
						Line:   y + 1,
						Column: x + 1,
						Reason: fmt.Sprintf("duplicate goal marker (first at line %d, column %d)", goalLine, goalCol),
					}
				}
				goalLine, goalCol = y+1, x+1
				g.goal = Position{X: x, Y: y}
			default:
				return nil, &MalformedGridError{
					Line:   y + 1,
					Column: x + 1,
					Reason: fmt.Sprintf("invalid character %q", row[x]),
				}
			}
			g.cells[y*width+x] = kind
		}
	}

	if startLine == 0 {
		return nil, &MalformedGridError{Reason: "missing start marker (S)"}
	}
	if goalLine == 0 {
		return nil, &MalformedGridError{Reason: "missing goal marker (E)"}
	}

	return g, nil
}

// Width returns the number of columns
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows
func (g *Grid) Height() int { return g.height }

// Start returns the start cell
func (g *Grid) Start() Position { return g.start }

// Goal returns the goal cell
func (g *Grid) Goal() Position { return g.goal }

// InBounds reports whether p lies inside the grid
func (g *Grid) InBounds(p Position) bool {
	return p.X >= 0 && p.X < g.width && p.Y >= 0 && p.Y < g.height
}

// Kind returns the kind of p. Cells outside the grid read as Wall.
func (g *Grid) Kind(p Position) CellKind {
	if !g.InBounds(p) {
		return Wall
	}
	return g.cells[g.index(p)]
}

// IsOpen reports whether p is an in-bounds Open cell
func (g *Grid) IsOpen(p Position) bool {
	return g.InBounds(p) && g.cells[g.index(p)] == Open
}

// Neighbors returns the in-bounds 4-neighbors of p in the order up, right, down, left
func (g *Grid) Neighbors(p Position) []Position {
	result := make([]Position, 0, len(directions))
	for _, d := range directions {
		if n := p.Add(d); g.InBounds(n) {
			result = append(result, n)
		}
	}
	return result
}

// OpenCount returns the number of Open cells
func (g *Grid) OpenCount() int {
	count := 0
	for _, k := range g.cells {
		if k == Open {
			count++
		}
	}
	return count
}

// WithKind returns a copy of g with p set to kind. The start and goal
// cannot be walled over.
func (g *Grid) WithKind(p Position, kind CellKind) (*Grid, error) {
	if !g.InBounds(p) {
		return nil, &MalformedGridError{Line: p.Y + 1, Column: p.X + 1, Reason: "cell out of bounds"}
	}
	if kind == Wall && (p == g.start || p == g.goal) {
		return nil, &MalformedGridError{Line: p.Y + 1, Column: p.X + 1, Reason: "start and goal must stay open"}
	}

	clone := *g
	clone.cells = make([]CellKind, len(g.cells))
	copy(clone.cells, g.cells)
	clone.cells[g.index(p)] = kind
	return &clone, nil
}

// Lines renders the grid back to maze text rows
func (g *Grid) Lines() []string {
	lines := make([]string, g.height)
	row := make([]byte, g.width)
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			row[x] = g.charAt(Position{X: x, Y: y})
		}
		lines[y] = string(row)
	}
	return lines
}

// String renders the grid as newline-separated maze text
func (g *Grid) String() string {
	return strings.Join(g.Lines(), "\n")
}

func (g *Grid) charAt(p Position) byte {
	switch {
	case p == g.start:
		return StartChar
	case p == g.goal:
		return GoalChar
	case g.cells[g.index(p)] == Wall:
		return WallChar
	default:
		return OpenChar
	}
}

func (g *Grid) index(p Position) int {
	return p.Y*g.width + p.X
}

func (g *Grid) position(i int) Position {
	return Position{X: i % g.width, Y: i / g.width}
}
