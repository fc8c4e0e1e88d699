package engine

import "context"

// Engine provides the main interface for cheat analysis of one maze
type Engine interface {
	// Maze
	Grid() *Grid
	Baseline() int
	FromStart() *DistanceField
	FromGoal() *DistanceField

	// Counting
	Enumerate(params CheatParams, visit func(CheatCandidate)) error
	Count(params CheatParams) (int, error)
	CountParallel(ctx context.Context, params CheatParams, workers int) (int, error)
	Histogram(params CheatParams) (map[int]int, error)
	Cheats(params CheatParams) ([]CheatCandidate, error)

	// Diagnostics
	ShortestPath(maxBudget int) (*PhasedPath, error)
	CrossValidate(params CheatParams) (*CrossCheck, error)
}

// CheatEngine implements the Engine interface. Both distance fields are
// computed once and are read-only afterwards, so an engine is safe for
// concurrent use and may serve any number of budgets.
type CheatEngine struct {
	grid      *Grid
	fromStart *DistanceField
	fromGoal  *DistanceField
	baseline  int
}

// NewEngine computes the distance fields for grid. It fails when the goal
// cannot be reached without cheating.
func NewEngine(grid *Grid) (*CheatEngine, error) {
	fromStart := ComputeDistanceField(grid, grid.Start())
	baseline, ok := fromStart.Lookup(grid.Goal())
	if !ok {
		return nil, &UnreachableGoalError{Start: grid.Start(), Goal: grid.Goal()}
	}

	return &CheatEngine{
		grid:      grid,
		fromStart: fromStart,
		fromGoal:  ComputeDistanceField(grid, grid.Goal()),
		baseline:  baseline,
	}, nil
}

// NewEngineFromText parses maze text and builds an engine for it
func NewEngineFromText(text string) (*CheatEngine, error) {
	grid, err := ParseGrid(text)
	if err != nil {
		return nil, err
	}
	return NewEngine(grid)
}

// Grid returns the maze
func (e *CheatEngine) Grid() *Grid {
	return e.grid
}

// Baseline returns D, the cheat-free shortest distance from start to goal
func (e *CheatEngine) Baseline() int {
	return e.baseline
}

// FromStart returns the distances from the start cell
func (e *CheatEngine) FromStart() *DistanceField {
	return e.fromStart
}

// FromGoal returns the distances from the goal cell
func (e *CheatEngine) FromGoal() *DistanceField {
	return e.fromGoal
}

// Enumerate calls visit for every qualifying cheat
func (e *CheatEngine) Enumerate(params CheatParams, visit func(CheatCandidate)) error {
	return EnumerateCheats(e.fromStart, e.fromGoal, params, visit)
}

// Count returns the number of distinct qualifying cheats
func (e *CheatEngine) Count(params CheatParams) (int, error) {
	return CountCheats(e.fromStart, e.fromGoal, params)
}

// CountParallel is Count split across workers
func (e *CheatEngine) CountParallel(ctx context.Context, params CheatParams, workers int) (int, error) {
	return CountCheatsParallel(ctx, e.fromStart, e.fromGoal, params, workers)
}

// Histogram returns the qualifying count per saving value
func (e *CheatEngine) Histogram(params CheatParams) (map[int]int, error) {
	return SavingsHistogram(e.fromStart, e.fromGoal, params)
}

// HistogramParallel is Histogram split across workers
func (e *CheatEngine) HistogramParallel(ctx context.Context, params CheatParams, workers int) (map[int]int, error) {
	return SavingsHistogramParallel(ctx, e.fromStart, e.fromGoal, params, workers)
}

// Cheats returns every qualifying cheat, best saving first
func (e *CheatEngine) Cheats(params CheatParams) ([]CheatCandidate, error) {
	return CollectCheats(e.fromStart, e.fromGoal, params)
}

// ShortestPath returns the shortest route allowing one cheat of maxBudget
func (e *CheatEngine) ShortestPath(maxBudget int) (*PhasedPath, error) {
	return ShortestPhasedPath(e.grid, maxBudget)
}

// CrossValidate compares the enumerator against the phase-space explorer
func (e *CheatEngine) CrossValidate(params CheatParams) (*CrossCheck, error) {
	return CrossValidate(e.fromStart, e.fromGoal, params)
}

// Saving returns the saving of an arbitrary (entry, exit) pair under the
// Manhattan length, and false when either end is unreachable.
func (e *CheatEngine) Saving(key CheatKey) (int, bool) {
	fromEntry, ok := e.fromStart.Lookup(key.Entry)
	if !ok {
		return 0, false
	}
	toGoal, ok := e.fromGoal.Lookup(key.Exit)
	if !ok {
		return 0, false
	}
	return e.baseline - (fromEntry + ManhattanDistance(key.Entry, key.Exit) + toGoal), true
}
