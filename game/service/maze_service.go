package service

import (
	"context"
	"time"

	"github.com/wricardo/mcp-training/racetrack/game/engine"
)

// MazeService defines all maze analysis operations
type MazeService interface {
	// Mazes
	ListMazes(ctx context.Context) ([]*MazeInfo, error)
	DescribeMaze(ctx context.Context, mazeID string) (*MazeDetail, error)
	SaveMaze(ctx context.Context, mazeID string, config *engine.MazeConfig) error

	// Analysis
	Analyze(ctx context.Context, mazeID string, req AnalysisRequest) (*AnalysisResult, error)
	ListCheats(ctx context.Context, mazeID string, req AnalysisRequest, opts CheatListOptions) (*CheatPage, error)
	ShortestPath(ctx context.Context, mazeID string, budget *int) (*PathResult, error)
	CrossValidate(ctx context.Context, mazeID string, req AnalysisRequest) (*CrossCheckResult, error)

	// Runs
	ListRuns(ctx context.Context, mazeID string) ([]*Run, error)
	GetRun(ctx context.Context, runID string) (*Run, error)
	DeleteRun(ctx context.Context, runID string) error
}

// ConfigManager handles maze configuration loading
type ConfigManager interface {
	LoadMaze(name string) (*engine.MazeConfig, error)
	ListMazes() ([]*MazeInfo, error)
	GetDefault() *engine.MazeConfig
	SaveMaze(name string, config *engine.MazeConfig) error
}

// RunManager defines analysis run storage operations
type RunManager interface {
	Record(run *Run) error
	Get(id string) (*Run, error)
	List() []*Run
	Delete(id string) error
}

// Run is one recorded analysis of a maze
type Run struct {
	ID          string                   `json:"id"`
	MazeID      string                   `json:"maze_id"`
	Params      engine.CheatParams       `json:"params"`
	Workers     int                      `json:"workers"`
	Baseline    int                      `json:"baseline"`
	Count       int                      `json:"count"`
	BestSaving  int                      `json:"best_saving"`
	Histogram   []engine.HistogramBucket `json:"histogram,omitempty"`
	Duration    time.Duration            `json:"duration"`
	StartedAt   time.Time                `json:"started_at"`
	CompletedAt time.Time                `json:"completed_at"`
}
