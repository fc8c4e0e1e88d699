package engine

import "fmt"

// enumerator generates cheat candidates from a pair of distance fields.
// Ignoring walls, the fewest steps between two cells of a 4-connected grid
// is their Manhattan distance, so each exit in the diamond of radius
// MaxCheatBudget around an entry is one candidate of that length.
type enumerator struct {
	grid      *Grid
	fromStart *DistanceField
	fromGoal  *DistanceField
	baseline  int
	params    CheatParams
	offsets   []Position
}

func newEnumerator(fromStart, fromGoal *DistanceField, params CheatParams) (*enumerator, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if fromStart == nil || fromGoal == nil {
		return nil, fmt.Errorf("distance fields are required")
	}
	if fromStart.grid != fromGoal.grid {
		return nil, fmt.Errorf("distance fields belong to different grids")
	}

	baseline, ok := fromStart.Lookup(fromGoal.Source())
	if !ok {
		return nil, &UnreachableGoalError{Start: fromStart.Source(), Goal: fromGoal.Source()}
	}

	return &enumerator{
		grid:      fromStart.grid,
		fromStart: fromStart,
		fromGoal:  fromGoal,
		baseline:  baseline,
		params:    params,
		offsets:   diamond(effectiveBudget(fromStart.grid, params.MaxCheatBudget)),
	}, nil
}

// diamond returns every offset with 1 <= |dx|+|dy| <= radius, ordered by dy then dx
func diamond(radius int) []Position {
	offsets := make([]Position, 0, 2*radius*(radius+1))
	for dy := -radius; dy <= radius; dy++ {
		span := radius - abs(dy)
		for dx := -span; dx <= span; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			offsets = append(offsets, Position{X: dx, Y: dy})
		}
	}
	return offsets
}

// scan visits qualifying candidates whose entry cell index lies in [lo, hi)
func (e *enumerator) scan(lo, hi int, visit func(CheatCandidate)) {
	threshold := e.params.MinSaving
	if threshold < 1 {
		threshold = 1
	}

	for i := lo; i < hi; i++ {
		fromEntry := e.fromStart.dist[i]
		if fromEntry == unreached {
			continue
		}
		// Best case is a one-step cheat landing on the goal
		if e.baseline-fromEntry-1 < threshold {
			continue
		}

		entry := e.grid.position(i)
		for _, off := range e.offsets {
			exit := entry.Add(off)
			if !e.grid.InBounds(exit) {
				continue
			}
			toGoal := e.fromGoal.dist[e.grid.index(exit)]
			if toGoal == unreached {
				continue
			}

			length := abs(off.X) + abs(off.Y)
			saving := e.baseline - (fromEntry + length + toGoal)
			if !e.params.qualifies(saving) {
				continue
			}
			visit(CheatCandidate{Entry: entry, Exit: exit, Length: length, Saving: saving})
		}
	}
}

// EnumerateCheats calls visit once for every qualifying (entry, exit) pair.
// Entries are visited in row-major order.
func EnumerateCheats(fromStart, fromGoal *DistanceField, params CheatParams, visit func(CheatCandidate)) error {
	e, err := newEnumerator(fromStart, fromGoal, params)
	if err != nil {
		return err
	}
	e.scan(0, len(e.fromStart.dist), visit)
	return nil
}
