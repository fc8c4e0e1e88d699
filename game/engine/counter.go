package engine

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"
)

// chunksPerWorker splits the entry range finer than the worker count so a
// slow region of the maze does not leave other workers idle
const chunksPerWorker = 4

// CountCheats returns the number of distinct qualifying (entry, exit) pairs.
// The enumerator visits each pair at most once, so no deduplication set is kept.
func CountCheats(fromStart, fromGoal *DistanceField, params CheatParams) (int, error) {
	count := 0
	err := EnumerateCheats(fromStart, fromGoal, params, func(CheatCandidate) {
		count++
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// CountCheatsParallel partitions entry cells across workers and sums the
// partial counts. The result equals CountCheats for any worker count.
func CountCheatsParallel(ctx context.Context, fromStart, fromGoal *DistanceField, params CheatParams, workers int) (int, error) {
	e, err := newEnumerator(fromStart, fromGoal, params)
	if err != nil {
		return 0, err
	}

	var partials []int
	err = e.scanParallel(ctx, workers, func(chunks int) {
		partials = make([]int, chunks)
	}, func(c, lo, hi int) {
		n := 0
		e.scan(lo, hi, func(CheatCandidate) { n++ })
		partials[c] = n
	})
	if err != nil {
		return 0, err
	}

	sum := 0
	for _, n := range partials {
		sum += n
	}
	return sum, nil
}

// SavingsHistogramParallel is SavingsHistogram split across workers. Each
// chunk fills its own map; the maps are merged once every chunk is done.
func SavingsHistogramParallel(ctx context.Context, fromStart, fromGoal *DistanceField, params CheatParams, workers int) (map[int]int, error) {
	e, err := newEnumerator(fromStart, fromGoal, params)
	if err != nil {
		return nil, err
	}

	var partials []map[int]int
	err = e.scanParallel(ctx, workers, func(chunks int) {
		partials = make([]map[int]int, chunks)
	}, func(c, lo, hi int) {
		histogram := make(map[int]int)
		e.scan(lo, hi, func(cand CheatCandidate) { histogram[cand.Saving]++ })
		partials[c] = histogram
	})
	if err != nil {
		return nil, err
	}

	merged := make(map[int]int)
	for _, histogram := range partials {
		for saving, n := range histogram {
			merged[saving] += n
		}
	}
	return merged, nil
}

// scanParallel splits the entry range into chunks and runs work on each,
// at most workers at a time. prepare sees the chunk count before any work
// starts. Chunks not yet started when ctx is cancelled are skipped.
func (e *enumerator) scanParallel(ctx context.Context, workers int, prepare func(chunks int), work func(c, lo, hi int)) error {
	if workers < 1 {
		return &InvalidBudgetError{Param: "workers", Value: workers}
	}

	total := len(e.fromStart.dist)
	chunks := workers * chunksPerWorker
	if chunks > total {
		chunks = total
	}
	if chunks < 1 {
		chunks = 1
	}
	size := (total + chunks - 1) / chunks
	prepare(chunks)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for c := 0; c < chunks; c++ {
		lo := c * size
		hi := lo + size
		if hi > total {
			hi = total
		}
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			work(c, lo, hi)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// SavingsHistogram groups the qualifying cheats by saving
func SavingsHistogram(fromStart, fromGoal *DistanceField, params CheatParams) (map[int]int, error) {
	histogram := make(map[int]int)
	err := EnumerateCheats(fromStart, fromGoal, params, func(c CheatCandidate) {
		histogram[c.Saving]++
	})
	if err != nil {
		return nil, err
	}
	return histogram, nil
}

// CollectCheats returns every qualifying candidate, best saving first.
// Ties keep enumeration order (row-major entry, then offset order).
func CollectCheats(fromStart, fromGoal *DistanceField, params CheatParams) ([]CheatCandidate, error) {
	var cheats []CheatCandidate
	err := EnumerateCheats(fromStart, fromGoal, params, func(c CheatCandidate) {
		cheats = append(cheats, c)
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(cheats, func(i, j int) bool {
		return cheats[i].Saving > cheats[j].Saving
	})
	return cheats, nil
}

// HistogramBucket is one row of a savings report
type HistogramBucket struct {
	Saving int `json:"saving"`
	Count  int `json:"count"`
}

// SortedHistogram flattens a histogram into buckets ordered by saving
func SortedHistogram(histogram map[int]int) []HistogramBucket {
	buckets := make([]HistogramBucket, 0, len(histogram))
	for saving, count := range histogram {
		buckets = append(buckets, HistogramBucket{Saving: saving, Count: count})
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Saving < buckets[j].Saving
	})
	return buckets
}
