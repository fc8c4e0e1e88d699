package engine

import (
	"fmt"
	"testing"
)

func TestStep_Table(t *testing.T) {
	const max = 3
	tests := []struct {
		kind   CellKind
		c      int
		want   int
		wantOK bool
	}{
		{Open, 0, 0, true},
		{Open, 1, 2, true},
		{Open, 2, 3, true},
		{Open, 3, 3, true},
		{Wall, 0, 1, true},
		{Wall, 1, 2, true},
		{Wall, 2, 0, false},
		{Wall, 3, 0, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/c=%d", tt.kind, tt.c), func(t *testing.T) {
			got, ok := Step(tt.kind, tt.c, max)
			if ok != tt.wantOK {
				t.Fatalf("Expected ok=%v, got %v", tt.wantOK, ok)
			}
			if ok && got != tt.want {
				t.Errorf("Expected phase %d, got %d", tt.want, got)
			}
		})
	}
}

func TestStep_Exhaustive(t *testing.T) {
	for max := 1; max <= 6; max++ {
		for c := 0; c <= max; c++ {
			for _, kind := range []CellKind{Open, Wall} {
				next, ok := Step(kind, c, max)

				var want int
				var wantOK bool
				switch {
				case kind == Open && (c == 0 || c == max):
					want, wantOK = c, true
				case kind == Open:
					want, wantOK = c+1, true
				case c+1 < max:
					want, wantOK = c+1, true
				}

				if ok != wantOK || (ok && next != want) {
					t.Errorf("Step(%s, %d, %d) = (%d, %v), expected (%d, %v)", kind, c, max, next, ok, want, wantOK)
				}
				if !ok {
					continue
				}
				if next < 0 || next > max {
					t.Errorf("Step(%s, %d, %d) left the phase range: %d", kind, c, max, next)
				}
				if next == max && kind != Open {
					t.Errorf("Step(%s, %d, %d) spent the budget inside a wall", kind, c, max)
				}
				if c > 0 && next == 0 {
					t.Errorf("Step(%s, %d, %d) restarted a used cheat", kind, c, max)
				}
			}
		}
	}
}

func TestIgnite(t *testing.T) {
	tests := []struct {
		kind   CellKind
		max    int
		wantOK bool
	}{
		{Open, 1, true},
		{Open, 4, true},
		{Wall, 1, false},
		{Wall, 2, true},
		{Wall, 20, true},
	}

	for _, tt := range tests {
		c, ok := Ignite(tt.kind, tt.max)
		if ok != tt.wantOK {
			t.Errorf("Ignite(%s, %d): expected ok=%v, got %v", tt.kind, tt.max, tt.wantOK, ok)
		}
		if ok && c != 1 {
			t.Errorf("Ignite(%s, %d): expected phase 1, got %d", tt.kind, tt.max, c)
		}
	}
}

func TestPhaseState_String(t *testing.T) {
	s := PhaseState{Pos: Position{X: 3, Y: 4}, PhaseCount: 2}
	if got := s.String(); got != "(3,4)#2" {
		t.Errorf("Expected (3,4)#2, got %s", got)
	}
}
