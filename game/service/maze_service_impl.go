package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/wricardo/mcp-training/racetrack/game/engine"
	"github.com/wricardo/mcp-training/racetrack/internal/ctxlog"
)

// cachedEngine ties a built engine to the config it was built from, so a
// replaced config invalidates it
type cachedEngine struct {
	config *engine.MazeConfig
	engine *engine.CheatEngine
}

// mazeServiceImpl implements the MazeService interface
type mazeServiceImpl struct {
	configs ConfigManager
	runs    RunManager
	workers int

	engines map[string]*cachedEngine
	builds  singleflight.Group
	mu      sync.RWMutex
}

// Option configures the maze service
type Option func(*mazeServiceImpl)

// WithWorkers sets the default worker count for analyses that do not ask
// for one
func WithWorkers(workers int) Option {
	return func(s *mazeServiceImpl) {
		if workers > 0 {
			s.workers = workers
		}
	}
}

// NewMazeService creates a new maze service instance
func NewMazeService(configs ConfigManager, runs RunManager, opts ...Option) MazeService {
	s := &mazeServiceImpl{
		configs: configs,
		runs:    runs,
		workers: 1,
		engines: make(map[string]*cachedEngine),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListMazes returns available maze configurations
func (s *mazeServiceImpl) ListMazes(ctx context.Context) ([]*MazeInfo, error) {
	return s.configs.ListMazes()
}

// DescribeMaze returns the maze layout and its cheat-free route length
func (s *mazeServiceImpl) DescribeMaze(ctx context.Context, mazeID string) (*MazeDetail, error) {
	eng, config, err := s.engineFor(ctx, mazeID)
	if err != nil {
		return nil, err
	}

	grid := eng.Grid()
	return &MazeDetail{
		MazeInfo: MazeInfo{
			MazeID:         mazeID,
			Name:           config.Name,
			Description:    config.Description,
			Width:          grid.Width(),
			Height:         grid.Height(),
			MaxCheatBudget: config.MaxCheatBudget,
			MinSaving:      config.MinSaving,
		},
		Start:     grid.Start(),
		Goal:      grid.Goal(),
		Baseline:  eng.Baseline(),
		OpenCells: grid.OpenCount(),
		Layout:    grid.Lines(),
	}, nil
}

// SaveMaze writes a maze configuration and drops its cached engine
func (s *mazeServiceImpl) SaveMaze(ctx context.Context, mazeID string, config *engine.MazeConfig) error {
	if err := s.configs.SaveMaze(mazeID, config); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.engines, mazeID)
	s.mu.Unlock()

	ctxlog.FromContext(ctx).Info("maze saved", "maze", mazeID, "name", config.Name)
	return nil
}

// Analyze counts the qualifying cheats of a maze and records the run
func (s *mazeServiceImpl) Analyze(ctx context.Context, mazeID string, req AnalysisRequest) (*AnalysisResult, error) {
	started := time.Now()

	result, err := s.analyze(ctx, mazeID, req, started)
	analysisTotal.WithLabelValues(resultLabel(err)).Inc()
	if err != nil {
		ctxlog.FromContext(ctx).Warn("analysis failed", "maze", mazeID, "error", err)
		return nil, err
	}

	analysisDuration.Observe(time.Since(started).Seconds())
	cheatsCounted.Observe(float64(result.Count))
	return result, nil
}

func (s *mazeServiceImpl) analyze(ctx context.Context, mazeID string, req AnalysisRequest, started time.Time) (*AnalysisResult, error) {
	eng, config, err := s.engineFor(ctx, mazeID)
	if err != nil {
		return nil, err
	}

	params, err := resolveParams(config, req)
	if err != nil {
		return nil, err
	}

	workers := req.Workers
	if workers == 0 {
		workers = s.workers
	}

	histogram, err := eng.HistogramParallel(ctx, params, workers)
	if err != nil {
		return nil, err
	}
	count := 0
	for _, n := range histogram {
		count += n
	}
	buckets := engine.SortedHistogram(histogram)
	best := 0
	if len(buckets) > 0 {
		best = buckets[len(buckets)-1].Saving
	}

	completed := time.Now()
	run := &Run{
		MazeID:      mazeID,
		Params:      params,
		Workers:     workers,
		Baseline:    eng.Baseline(),
		Count:       count,
		BestSaving:  best,
		Histogram:   buckets,
		Duration:    completed.Sub(started),
		StartedAt:   started,
		CompletedAt: completed,
	}
	if s.runs != nil {
		if err := s.runs.Record(run); err != nil {
			return nil, fmt.Errorf("failed to record run: %w", err)
		}
	}

	ctxlog.FromContext(ctx).Info("analysis",
		"maze", mazeID,
		"budget", params.MaxCheatBudget,
		"min_saving", params.MinSaving,
		"workers", workers,
		"count", count,
		"best_saving", best,
		"duration", run.Duration,
	)

	result := &AnalysisResult{
		RunID:      run.ID,
		MazeID:     mazeID,
		Params:     params,
		Workers:    workers,
		Baseline:   eng.Baseline(),
		Count:      count,
		BestSaving: best,
		DurationMs: float64(run.Duration.Microseconds()) / 1000,
	}
	if req.Histogram {
		result.Histogram = buckets
	}
	return result, nil
}

// ListCheats returns one page of qualifying cheats
func (s *mazeServiceImpl) ListCheats(ctx context.Context, mazeID string, req AnalysisRequest, opts CheatListOptions) (*CheatPage, error) {
	eng, config, err := s.engineFor(ctx, mazeID)
	if err != nil {
		return nil, err
	}

	params, err := resolveParams(config, req)
	if err != nil {
		return nil, err
	}

	cheats, err := eng.Cheats(params)
	if err != nil {
		return nil, err
	}
	total := len(cheats)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}
	if opts.Order == "asc" {
		// Smallest saving first; ties keep enumeration order
		sort.SliceStable(cheats, func(i, j int) bool {
			return cheats[i].Saving < cheats[j].Saving
		})
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	page := []engine.CheatCandidate{}
	if start < total {
		page = cheats[start:end]
	}

	return &CheatPage{
		MazeID:      mazeID,
		Params:      params,
		Cheats:      page,
		Total:       total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ShortestPath returns the best route using at most one cheat
func (s *mazeServiceImpl) ShortestPath(ctx context.Context, mazeID string, budget *int) (*PathResult, error) {
	eng, config, err := s.engineFor(ctx, mazeID)
	if err != nil {
		return nil, err
	}

	maxBudget := config.MaxCheatBudget
	if budget != nil {
		maxBudget = *budget
	}

	path, err := eng.ShortestPath(maxBudget)
	if err != nil {
		return nil, err
	}

	result := &PathResult{
		MazeID:         mazeID,
		MaxCheatBudget: maxBudget,
		Baseline:       eng.Baseline(),
		Length:         path.Length,
		Saving:         eng.Baseline() - path.Length,
		States:         path.States,
		Rendered:       strings.Split(engine.RenderPath(eng.Grid(), path), "\n"),
	}
	if key, ok := path.Cheat(eng.Grid()); ok {
		result.Cheat = &key
	}
	return result, nil
}

// CrossValidate compares the enumerator with the phase-space explorer
func (s *mazeServiceImpl) CrossValidate(ctx context.Context, mazeID string, req AnalysisRequest) (*CrossCheckResult, error) {
	eng, config, err := s.engineFor(ctx, mazeID)
	if err != nil {
		return nil, err
	}

	params, err := resolveParams(config, req)
	if err != nil {
		return nil, err
	}

	report, err := eng.CrossValidate(params)
	if err != nil {
		return nil, err
	}

	if !report.Agree {
		ctxlog.FromContext(ctx).Error("cross-validation mismatch", "maze", mazeID, "report", report.String())
	}

	return &CrossCheckResult{MazeID: mazeID, Params: params, CrossCheck: *report}, nil
}

// ListRuns returns recorded runs, newest first, optionally for one maze
func (s *mazeServiceImpl) ListRuns(ctx context.Context, mazeID string) ([]*Run, error) {
	if s.runs == nil {
		return []*Run{}, nil
	}

	result := []*Run{}
	for _, run := range s.runs.List() {
		if mazeID == "" || run.MazeID == mazeID {
			result = append(result, run)
		}
	}
	return result, nil
}

// GetRun retrieves a recorded run
func (s *mazeServiceImpl) GetRun(ctx context.Context, runID string) (*Run, error) {
	if s.runs == nil {
		return nil, fmt.Errorf("run %s: run history disabled", runID)
	}
	run, err := s.runs.Get(runID)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return run, nil
}

// DeleteRun removes a recorded run
func (s *mazeServiceImpl) DeleteRun(ctx context.Context, runID string) error {
	if s.runs == nil {
		return fmt.Errorf("run %s: run history disabled", runID)
	}
	if err := s.runs.Delete(runID); err != nil {
		return fmt.Errorf("run %s: %w", runID, err)
	}
	return nil
}

// engineFor returns the cached engine for a maze, building it once when
// several callers ask at the same time
func (s *mazeServiceImpl) engineFor(ctx context.Context, mazeID string) (*engine.CheatEngine, *engine.MazeConfig, error) {
	config, err := s.configs.LoadMaze(mazeID)
	if err != nil {
		return nil, nil, fmt.Errorf("maze %s: %w", mazeID, err)
	}

	s.mu.RLock()
	cached, ok := s.engines[mazeID]
	s.mu.RUnlock()
	if ok && cached.config == config {
		return cached.engine, config, nil
	}

	v, err, _ := s.builds.Do(mazeID, func() (any, error) {
		grid, err := config.Grid()
		if err != nil {
			return nil, err
		}
		eng, err := engine.NewEngine(grid)
		if err != nil {
			return nil, err
		}
		engineBuilds.Inc()
		ctxlog.FromContext(ctx).Debug("engine built", "maze", mazeID, "baseline", eng.Baseline())

		built := &cachedEngine{config: config, engine: eng}
		s.mu.Lock()
		s.engines[mazeID] = built
		s.mu.Unlock()
		return built, nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("maze %s: %w", mazeID, err)
	}
	built := v.(*cachedEngine)
	return built.engine, built.config, nil
}

// resolveParams applies request overrides to the maze defaults
func resolveParams(config *engine.MazeConfig, req AnalysisRequest) (engine.CheatParams, error) {
	params := config.Params()
	if req.MaxCheatBudget != nil {
		params.MaxCheatBudget = *req.MaxCheatBudget
	}
	if req.MinSaving != nil {
		params.MinSaving = *req.MinSaving
	}
	if err := params.Validate(); err != nil {
		return params, err
	}
	return params, nil
}
