// Package engine provides the core analysis for racetrack cheat mazes.
//
// A maze is a rectangular grid of open cells and walls with one start and
// one goal, joined by a single cheat-free shortest route of length D. A
// cheat lets the runner pass through walls for a bounded number of
// consecutive steps, once per run. The engine answers how many distinct
// cheats save at least a given number of steps.
//
// Core Types:
//
// Grid is the immutable parsed maze. DistanceField holds breadth-first
// distances from one source over open cells. CheatEngine owns a grid and
// the two fields (from start and from goal) and implements the Engine
// interface. CheatCandidate is one (entry, exit) maneuver; CheatKey is its
// identity. MazeConfig is a named maze document (JSON, YAML, or raw text).
//
// Usage:
//
//	grid, err := engine.ParseGrid(text)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	cheatEngine, err := engine.NewEngine(grid)
//	if err != nil {
//		log.Fatal(err) // malformed layout or unreachable goal
//	}
//
//	count, err := cheatEngine.Count(engine.CheatParams{MaxCheatBudget: 20, MinSaving: 100})
//
// Counting:
//
// Ignoring walls, the fewest steps between two cells is their Manhattan
// distance, so a cheat from entry to exit of length L saves
// D - (fromStart[entry] + L + fromGoal[exit]). The enumerator scans the
// diamond of radius MaxCheatBudget around every reachable entry. A cheat
// qualifies when its saving is positive and at least MinSaving.
//
// Diagnostics:
//
// ShortestPhasedPath searches the augmented (cell, phase count) space with
// the transition table in Step. ExploreCheats walks the same space from
// every entry and CrossValidate checks that it agrees with the enumerator.
package engine
