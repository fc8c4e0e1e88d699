package service

import (
	"github.com/wricardo/mcp-training/racetrack/game/engine"
)

// MazeInfo provides information about a maze configuration
type MazeInfo struct {
	Filename       string `json:"filename"`
	MazeID         string `json:"maze_id"` // The identifier to use in API paths
	Name           string `json:"name"`    // Display name
	Description    string `json:"description"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	MaxCheatBudget int    `json:"max_cheat_budget"`
	MinSaving      int    `json:"min_saving"`
}

// MazeDetail describes a maze together with its cheat-free route
type MazeDetail struct {
	MazeInfo
	Start     engine.Position `json:"start"`
	Goal      engine.Position `json:"goal"`
	Baseline  int             `json:"baseline"`
	OpenCells int             `json:"open_cells"`
	Layout    []string        `json:"layout"`
}

// AnalysisRequest overrides the maze's default parameters. Nil fields
// fall back to the maze configuration.
type AnalysisRequest struct {
	MaxCheatBudget *int `json:"max_cheat_budget,omitempty"`
	MinSaving      *int `json:"min_saving,omitempty"`
	Workers        int  `json:"workers,omitempty"`
	Histogram      bool `json:"histogram,omitempty"`
}

// AnalysisResult contains the outcome of one counting pass
type AnalysisResult struct {
	RunID      string                   `json:"run_id"`
	MazeID     string                   `json:"maze_id"`
	Params     engine.CheatParams       `json:"params"`
	Workers    int                      `json:"workers"`
	Baseline   int                      `json:"baseline"`
	Count      int                      `json:"count"`
	BestSaving int                      `json:"best_saving"`
	Histogram  []engine.HistogramBucket `json:"histogram,omitempty"`
	DurationMs float64                  `json:"duration_ms"`
}

// CheatListOptions configures candidate listing
type CheatListOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "desc" (best saving first) or "asc"
}

// CheatPage contains one page of qualifying cheats
type CheatPage struct {
	MazeID      string                  `json:"maze_id"`
	Params      engine.CheatParams      `json:"params"`
	Cheats      []engine.CheatCandidate `json:"cheats"`
	Total       int                     `json:"total"`
	Page        int                     `json:"page"`
	PageSize    int                     `json:"page_size"`
	TotalPages  int                     `json:"total_pages"`
	HasNext     bool                    `json:"has_next"`
	HasPrevious bool                    `json:"has_previous"`
}

// PathResult is the shortest route when one cheat is allowed
type PathResult struct {
	MazeID         string              `json:"maze_id"`
	MaxCheatBudget int                 `json:"max_cheat_budget"`
	Baseline       int                 `json:"baseline"`
	Length         int                 `json:"length"`
	Saving         int                 `json:"saving"`
	Cheat          *engine.CheatKey    `json:"cheat,omitempty"`
	States         []engine.PhaseState `json:"states"`
	Rendered       []string            `json:"rendered"`
}

// CrossCheckResult reports whether the enumerator and the phase-space
// explorer agree on a maze
type CrossCheckResult struct {
	MazeID string             `json:"maze_id"`
	Params engine.CheatParams `json:"params"`
	engine.CrossCheck
}
