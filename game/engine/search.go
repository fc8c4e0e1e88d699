package engine

import (
	"fmt"
	"sort"
)

const noParent = -1

// PhasedPath is a shortest route through the augmented (cell, phase) space
type PhasedPath struct {
	Length int          `json:"length"`
	States []PhaseState `json:"states"`
}

// Cheat returns the cheat the path used, if any. The entry is the last cell
// before the phase count leaves zero; the exit is the cell right after the
// last wall on the route.
func (p *PhasedPath) Cheat(grid *Grid) (CheatKey, bool) {
	first := -1
	for i, s := range p.States {
		if s.PhaseCount > 0 {
			first = i
			break
		}
	}
	if first < 1 {
		return CheatKey{}, false
	}

	lastWall := -1
	for i := first; i < len(p.States); i++ {
		if grid.Kind(p.States[i].Pos) == Wall {
			lastWall = i
		}
	}
	if lastWall < 0 || lastWall+1 >= len(p.States) {
		return CheatKey{}, false
	}

	return CheatKey{Entry: p.States[first-1].Pos, Exit: p.States[lastWall+1].Pos}, true
}

// ShortestPhasedPath finds the fewest steps from start to goal when one
// cheat of up to maxBudget phase steps may be used. The goal test ignores
// the phase count. Returns UnreachableGoalError when even cheating does not
// reach the goal.
func ShortestPhasedPath(grid *Grid, maxBudget int) (*PhasedPath, error) {
	if maxBudget < MinCheatBudget {
		return nil, &InvalidBudgetError{Param: "max_cheat_budget", Value: maxBudget}
	}
	maxBudget = effectiveBudget(grid, maxBudget)

	slots := len(grid.cells) * (maxBudget + 1)
	parent := make([]int, slots)
	for i := range parent {
		parent[i] = noParent
	}

	origin := PhaseState{Pos: grid.start}
	originIdx := phaseIndex(grid, origin, maxBudget)
	parent[originIdx] = originIdx

	queue := make([]PhaseState, 0, grid.OpenCount())
	queue = append(queue, origin)

	for head := 0; head < len(queue); head++ {
		current := queue[head]
		currentIdx := phaseIndex(grid, current, maxBudget)

		if current.Pos == grid.goal {
			return buildPhasedPath(grid, parent, current, maxBudget), nil
		}

		for _, d := range directions {
			n := current.Pos.Add(d)
			if !grid.InBounds(n) {
				continue
			}
			c, ok := Step(grid.Kind(n), current.PhaseCount, maxBudget)
			if !ok {
				continue
			}
			next := PhaseState{Pos: n, PhaseCount: c}
			i := phaseIndex(grid, next, maxBudget)
			if parent[i] != noParent {
				continue
			}
			parent[i] = currentIdx
			queue = append(queue, next)
		}
	}

	return nil, &UnreachableGoalError{Start: grid.start, Goal: grid.goal}
}

func buildPhasedPath(grid *Grid, parent []int, end PhaseState, maxBudget int) *PhasedPath {
	width := maxBudget + 1
	var states []PhaseState
	i := phaseIndex(grid, end, maxBudget)
	for {
		states = append(states, PhaseState{Pos: grid.position(i / width), PhaseCount: i % width})
		if parent[i] == i {
			break
		}
		i = parent[i]
	}
	for l, r := 0, len(states)-1; l < r; l, r = l+1, r-1 {
		states[l], states[r] = states[r], states[l]
	}
	return &PhasedPath{Length: len(states) - 1, States: states}
}

// ExploreCheats finds the qualifying cheats by walking the phase space
// directly instead of using Manhattan distances. From every reachable entry
// it ignites a cheat on each neighbor and records the fewest phase steps to
// every Open exit. The result is ordered by entry then exit (row-major).
func ExploreCheats(fromStart, fromGoal *DistanceField, params CheatParams) ([]CheatCandidate, error) {
	e, err := newEnumerator(fromStart, fromGoal, params)
	if err != nil {
		return nil, err
	}

	grid := e.grid
	maxBudget := effectiveBudget(grid, params.MaxCheatBudget)
	width := maxBudget + 1

	// Stamped tables avoid clearing per entry
	seen := make([]int, len(grid.cells)*width)
	depth := make([]int, len(grid.cells))
	depthStamp := make([]int, len(grid.cells))
	stamp := 0

	var result []CheatCandidate
	var exits []int
	queue := make([]PhaseState, 0, len(grid.cells))

	for _, entry := range fromStart.Reachable() {
		stamp++
		entryIdx := grid.index(entry)
		fromEntry := fromStart.dist[entryIdx]
		queue = queue[:0]
		exits = exits[:0]

		push := func(s PhaseState) {
			i := phaseIndex(grid, s, maxBudget)
			if seen[i] == stamp {
				return
			}
			seen[i] = stamp
			queue = append(queue, s)
		}

		for _, n := range grid.Neighbors(entry) {
			if c, ok := Ignite(grid.Kind(n), maxBudget); ok {
				push(PhaseState{Pos: n, PhaseCount: c})
			}
		}

		for head := 0; head < len(queue); head++ {
			current := queue[head]
			i := grid.index(current.Pos)

			if grid.cells[i] == Open && i != entryIdx && depthStamp[i] != stamp {
				depthStamp[i] = stamp
				depth[i] = current.PhaseCount
				exits = append(exits, i)
			}
			if current.PhaseCount >= maxBudget {
				continue
			}

			for _, d := range directions {
				n := current.Pos.Add(d)
				if !grid.InBounds(n) {
					continue
				}
				c, ok := Step(grid.Kind(n), current.PhaseCount, maxBudget)
				if !ok {
					continue
				}
				push(PhaseState{Pos: n, PhaseCount: c})
			}
		}

		sort.Ints(exits)
		for _, i := range exits {
			toGoal := fromGoal.dist[i]
			if toGoal == unreached {
				continue
			}
			saving := e.baseline - (fromEntry + depth[i] + toGoal)
			if !params.qualifies(saving) {
				continue
			}
			result = append(result, CheatCandidate{
				Entry:  entry,
				Exit:   grid.position(i),
				Length: depth[i],
				Saving: saving,
			})
		}
	}

	sort.SliceStable(result, func(a, b int) bool {
		return grid.index(result[a].Entry) < grid.index(result[b].Entry)
	})
	return result, nil
}

// SavingMismatch is a key both strategies found with different savings
type SavingMismatch struct {
	Key        CheatKey `json:"key"`
	Enumerated int      `json:"enumerated"`
	Explored   int      `json:"explored"`
}

// CrossCheck compares the closed-form enumerator with the phase-space explorer
type CrossCheck struct {
	Enumerated int              `json:"enumerated"`
	Explored   int              `json:"explored"`
	Missing    []CheatKey       `json:"missing,omitempty"`
	Extra      []CheatKey       `json:"extra,omitempty"`
	Mismatches []SavingMismatch `json:"mismatches,omitempty"`
	Agree      bool             `json:"agree"`
}

func (c *CrossCheck) String() string {
	if c.Agree {
		return fmt.Sprintf("agree: %d cheats", c.Enumerated)
	}
	return fmt.Sprintf("disagree: enumerated %d, explored %d, missing %d, extra %d, mismatched %d",
		c.Enumerated, c.Explored, len(c.Missing), len(c.Extra), len(c.Mismatches))
}

// CrossValidate runs both strategies and reports every difference.
// Missing keys were enumerated but not explored; extra keys the reverse.
func CrossValidate(fromStart, fromGoal *DistanceField, params CheatParams) (*CrossCheck, error) {
	enumerated := make(map[CheatKey]int)
	var order []CheatKey
	err := EnumerateCheats(fromStart, fromGoal, params, func(c CheatCandidate) {
		enumerated[c.Key()] = c.Saving
		order = append(order, c.Key())
	})
	if err != nil {
		return nil, err
	}

	explored, err := ExploreCheats(fromStart, fromGoal, params)
	if err != nil {
		return nil, err
	}

	report := &CrossCheck{Enumerated: len(enumerated), Explored: len(explored)}
	found := make(map[CheatKey]bool, len(explored))
	for _, c := range explored {
		found[c.Key()] = true
		saving, ok := enumerated[c.Key()]
		if !ok {
			report.Extra = append(report.Extra, c.Key())
			continue
		}
		if saving != c.Saving {
			report.Mismatches = append(report.Mismatches, SavingMismatch{
				Key:        c.Key(),
				Enumerated: saving,
				Explored:   c.Saving,
			})
		}
	}
	for _, k := range order {
		if !found[k] {
			report.Missing = append(report.Missing, k)
		}
	}

	report.Agree = len(report.Missing) == 0 && len(report.Extra) == 0 && len(report.Mismatches) == 0
	return report, nil
}
