package engine

import (
	"errors"
	"testing"
)

var _ Engine = (*CheatEngine)(nil)

func TestNewEngine(t *testing.T) {
	grid, err := ParseGrid(exampleMaze)
	if err != nil {
		t.Fatalf("Failed to parse maze: %v", err)
	}

	e, err := NewEngine(grid)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	if e.Grid() != grid {
		t.Error("Expected engine to keep the parsed grid")
	}
	if e.Baseline() != 84 {
		t.Errorf("Expected baseline 84, got %d", e.Baseline())
	}
	if e.FromStart().Source() != grid.Start() {
		t.Errorf("Expected fromStart source %v, got %v", grid.Start(), e.FromStart().Source())
	}
	if e.FromGoal().Source() != grid.Goal() {
		t.Errorf("Expected fromGoal source %v, got %v", grid.Goal(), e.FromGoal().Source())
	}
}

func TestNewEngine_Unreachable(t *testing.T) {
	_, err := NewEngineFromText("#######\n#S.#.E#\n#######")
	if err == nil {
		t.Fatal("Expected error for unreachable goal")
	}
	if !errors.Is(err, ErrUnreachableGoal) {
		t.Errorf("Expected ErrUnreachableGoal, got %v", err)
	}

	var unreachable *UnreachableGoalError
	if !errors.As(err, &unreachable) {
		t.Fatalf("Expected *UnreachableGoalError, got %T", err)
	}
	if unreachable.Start != (Position{X: 1, Y: 1}) || unreachable.Goal != (Position{X: 5, Y: 1}) {
		t.Errorf("Unexpected positions: %+v", unreachable)
	}
}

func TestNewEngineFromText_Malformed(t *testing.T) {
	_, err := NewEngineFromText("#S.E")
	if err != nil {
		t.Fatalf("Open border maze should parse: %v", err)
	}

	_, err = NewEngineFromText("#S.Q")
	if !errors.Is(err, ErrMalformedGrid) {
		t.Errorf("Expected ErrMalformedGrid, got %v", err)
	}
}

func TestCheatEngine_Saving(t *testing.T) {
	e, err := NewEngineFromText(uMaze)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	saving, ok := e.Saving(CheatKey{Entry: Position{X: 1, Y: 1}, Exit: Position{X: 3, Y: 1}})
	if !ok || saving != 4 {
		t.Errorf("Expected saving 4, got %d (ok=%v)", saving, ok)
	}

	if _, ok := e.Saving(CheatKey{Entry: Position{X: 2, Y: 1}, Exit: Position{X: 3, Y: 1}}); ok {
		t.Error("Expected wall entry to have no saving")
	}
}

func TestCheatEngine_SharedAcrossBudgets(t *testing.T) {
	e, err := NewEngineFromText(exampleMaze)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	// Interleaved budgets must not leak state into each other
	for i := 0; i < 2; i++ {
		for _, tc := range []struct{ budget, want int }{{2, 44}, {20, 3081}, {3, 142}} {
			got, err := e.Count(CheatParams{MaxCheatBudget: tc.budget})
			if err != nil {
				t.Fatalf("Count failed: %v", err)
			}
			if got != tc.want {
				t.Errorf("Budget %d: expected %d, got %d", tc.budget, tc.want, got)
			}
		}
	}
}

func TestManhattanDistance(t *testing.T) {
	tests := []struct {
		from, to Position
		want     int
	}{
		{Position{X: 0, Y: 0}, Position{X: 0, Y: 0}, 0},
		{Position{X: 1, Y: 1}, Position{X: 3, Y: 2}, 3},
		{Position{X: 5, Y: 1}, Position{X: 1, Y: 7}, 10},
	}
	for _, tt := range tests {
		if got := ManhattanDistance(tt.from, tt.to); got != tt.want {
			t.Errorf("ManhattanDistance(%v, %v) = %d, expected %d", tt.from, tt.to, got, tt.want)
		}
	}
}
