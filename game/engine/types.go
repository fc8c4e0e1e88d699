package engine

// CellKind represents the two kinds of maze cells
type CellKind uint8

const (
	Open CellKind = iota
	Wall
)

// Layout characters
const (
	WallChar  = '#'
	OpenChar  = '.'
	StartChar = 'S'
	GoalChar  = 'E'
)

const (
	// MinCheatBudget is the smallest usable cheat budget (one step).
	MinCheatBudget = 1
	// MaxGridSize bounds either dimension of a parsed maze.
	MaxGridSize = 1024
)

func (k CellKind) String() string {
	switch k {
	case Open:
		return "open"
	case Wall:
		return "wall"
	default:
		return "unknown"
	}
}

// Position represents x,y coordinates
type Position struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Add returns p shifted by the offset o
func (p Position) Add(o Position) Position {
	return Position{X: p.X + o.X, Y: p.Y + o.Y}
}

// directions lists the 4-neighborhood in a fixed order: up, right, down, left
var directions = [4]Position{
	{X: 0, Y: -1},
	{X: 1, Y: 0},
	{X: 0, Y: 1},
	{X: -1, Y: 0},
}

// CheatParams configures one enumeration pass
type CheatParams struct {
	MaxCheatBudget int `json:"max_cheat_budget" yaml:"max_cheat_budget"`
	MinSaving      int `json:"min_saving" yaml:"min_saving"`
}

// Validate rejects budgets below one and negative saving thresholds
func (p CheatParams) Validate() error {
	if p.MaxCheatBudget < MinCheatBudget {
		return &InvalidBudgetError{Param: "max_cheat_budget", Value: p.MaxCheatBudget}
	}
	if p.MinSaving < 0 {
		return &InvalidBudgetError{Param: "min_saving", Value: p.MinSaving}
	}
	return nil
}

// qualifies reports whether a saving counts as a cheat under p.
// A zero saving is a stretch of the baseline route, not a shortcut.
func (p CheatParams) qualifies(saving int) bool {
	return saving > 0 && saving >= p.MinSaving
}

// CheatKey is the canonical identity of a cheat
type CheatKey struct {
	Entry Position `json:"entry"`
	Exit  Position `json:"exit"`
}

// CheatCandidate is one (entry, exit) maneuver with its length and saving
type CheatCandidate struct {
	Entry  Position `json:"entry"`
	Exit   Position `json:"exit"`
	Length int      `json:"length"`
	Saving int      `json:"saving"`
}

// Key returns the canonical identity of c
func (c CheatCandidate) Key() CheatKey {
	return CheatKey{Entry: c.Entry, Exit: c.Exit}
}
