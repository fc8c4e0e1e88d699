package engine

const unreached = -1

// DistanceField holds single-source shortest-path distances over the open
// cells of a grid. Cells the source cannot reach are absent.
type DistanceField struct {
	grid   *Grid
	source Position
	dist   []int
	order  []Position
}

// ComputeDistanceField runs a breadth-first search from source through open
// cells only. Each cell is queued once and gets its distance on first visit.
func ComputeDistanceField(grid *Grid, source Position) *DistanceField {
	field := &DistanceField{
		grid:   grid,
		source: source,
		dist:   make([]int, len(grid.cells)),
	}
	for i := range field.dist {
		field.dist[i] = unreached
	}
	if !grid.IsOpen(source) {
		return field
	}

	field.dist[grid.index(source)] = 0
	queue := make([]Position, 0, grid.OpenCount())
	queue = append(queue, source)

	for head := 0; head < len(queue); head++ {
		current := queue[head]
		next := field.dist[grid.index(current)] + 1

		for _, d := range directions {
			n := current.Add(d)
			if !grid.IsOpen(n) {
				continue
			}
			i := grid.index(n)
			if field.dist[i] != unreached {
				continue
			}
			field.dist[i] = next
			queue = append(queue, n)
		}
	}

	field.order = queue
	return field
}

// Source returns the cell the field was computed from
func (f *DistanceField) Source() Position {
	return f.source
}

// Lookup returns the distance to p and whether p is reachable
func (f *DistanceField) Lookup(p Position) (int, bool) {
	if !f.grid.InBounds(p) {
		return 0, false
	}
	d := f.dist[f.grid.index(p)]
	if d == unreached {
		return 0, false
	}
	return d, true
}

// Contains reports whether p is reachable from the source
func (f *DistanceField) Contains(p Position) bool {
	_, ok := f.Lookup(p)
	return ok
}

// Len returns the number of reachable cells, source included
func (f *DistanceField) Len() int {
	return len(f.order)
}

// Reachable returns the reachable cells in visit (non-decreasing distance) order.
// The slice is shared; callers must not modify it.
func (f *DistanceField) Reachable() []Position {
	return f.order
}

// Max returns the largest finite distance in the field
func (f *DistanceField) Max() int {
	if len(f.order) == 0 {
		return 0
	}
	last := f.order[len(f.order)-1]
	return f.dist[f.grid.index(last)]
}
