package engine

import "fmt"

// PhaseState is a node of the augmented search: a cell plus how far into
// the cheat the runner is. PhaseCount 0 means no cheat used yet; values in
// (0, max) mean a cheat is active; max means the budget is spent and the
// state sits on an Open cell.
type PhaseState struct {
	Pos        Position `json:"pos"`
	PhaseCount int      `json:"phase_count"`
}

func (s PhaseState) String() string {
	return fmt.Sprintf("(%d,%d)#%d", s.Pos.X, s.Pos.Y, s.PhaseCount)
}

// Step applies the phase transition for moving onto a cell of the given kind.
//
//	Open, c == 0 or c == max  -> c
//	Open, 0 < c < max         -> c+1
//	Wall, c+1 < max           -> c+1
//	Wall, otherwise           -> rejected
//
// A wall step that would use the last unit of budget is rejected because
// the runner would end inside a wall with nothing left to leave it.
func Step(kind CellKind, c, max int) (int, bool) {
	switch kind {
	case Open:
		if c == 0 || c >= max {
			return c, true
		}
		return c + 1, true
	case Wall:
		if c+1 < max {
			return c + 1, true
		}
		return 0, false
	default:
		return 0, false
	}
}

// Ignite is the first step of a cheat taken deliberately: unlike Step it
// consumes budget even when the target is Open.
func Ignite(kind CellKind, max int) (int, bool) {
	switch kind {
	case Open:
		return 1, max >= 1
	case Wall:
		return 1, 1 < max
	default:
		return 0, false
	}
}

// phaseIndex maps a state to a slot of a dense (cell, phase) table
func phaseIndex(g *Grid, s PhaseState, max int) int {
	return g.index(s.Pos)*(max+1) + s.PhaseCount
}

// effectiveBudget caps budget at the widest Manhattan distance the grid
// holds. No exit lies farther away, so the cap never changes a result.
func effectiveBudget(g *Grid, budget int) int {
	if reach := g.width + g.height - 2; budget > reach {
		return reach
	}
	return budget
}
