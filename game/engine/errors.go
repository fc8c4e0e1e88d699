package engine

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedGrid   = errors.New("malformed grid")
	ErrUnreachableGoal = errors.New("goal unreachable")
	ErrInvalidBudget   = errors.New("invalid cheat parameters")
)

// MalformedGridError reports a layout problem. Line and Column are 1-based;
// zero means the problem is not tied to a single cell.
type MalformedGridError struct {
	Line   int
	Column int
	Reason string
}

func (e *MalformedGridError) Error() string {
	switch {
	case e.Line > 0 && e.Column > 0:
		return fmt.Sprintf("malformed grid at line %d, column %d: %s", e.Line, e.Column, e.Reason)
	case e.Line > 0:
		return fmt.Sprintf("malformed grid at line %d: %s", e.Line, e.Reason)
	default:
		return fmt.Sprintf("malformed grid: %s", e.Reason)
	}
}

func (e *MalformedGridError) Is(target error) bool {
	return target == ErrMalformedGrid
}

// UnreachableGoalError is returned when no wall-free route joins start and goal
type UnreachableGoalError struct {
	Start Position
	Goal  Position
}

func (e *UnreachableGoalError) Error() string {
	return fmt.Sprintf("goal (%d,%d) unreachable from start (%d,%d) without cheating",
		e.Goal.X, e.Goal.Y, e.Start.X, e.Start.Y)
}

func (e *UnreachableGoalError) Is(target error) bool {
	return target == ErrUnreachableGoal
}

// InvalidBudgetError names the offending parameter
type InvalidBudgetError struct {
	Param string
	Value int
}

func (e *InvalidBudgetError) Error() string {
	switch e.Param {
	case "max_cheat_budget":
		return fmt.Sprintf("invalid cheat parameters: max_cheat_budget must be at least %d, got %d", MinCheatBudget, e.Value)
	case "min_saving":
		return fmt.Sprintf("invalid cheat parameters: min_saving must be non-negative, got %d", e.Value)
	case "workers":
		return fmt.Sprintf("invalid cheat parameters: workers must be at least 1, got %d", e.Value)
	default:
		return fmt.Sprintf("invalid cheat parameters: %s=%d", e.Param, e.Value)
	}
}

func (e *InvalidBudgetError) Is(target error) bool {
	return target == ErrInvalidBudget
}
