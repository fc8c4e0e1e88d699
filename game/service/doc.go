// Package service provides the business logic layer for the racetrack
// cheat analyzer.
//
// The service package implements:
//   - Maze discovery, description, and saving
//   - Cheat counting with optional parallel workers
//   - Paged candidate listing and savings histograms
//   - Augmented shortest paths and cross-validation reports
//   - Analysis run history
//
// Core Interfaces:
//
// MazeService is the main service interface used by every transport.
// ConfigManager loads maze configurations (implemented by game/config).
// RunManager stores analysis runs (implemented by game/runs).
//
// Architecture:
//
// The service layer sits between the transports (HTTP, WebSocket, MCP) and
// the engine. Engines are cached per maze; both distance fields are built
// once and shared by every budget, and concurrent first requests for the
// same maze collapse into one build. A saved maze invalidates its engine.
//
// Usage:
//
//	configMgr, _ := config.NewManager("configs")
//	runMgr := runs.NewManager()
//	mazeService := service.NewMazeService(configMgr, runMgr, service.WithWorkers(4))
//
//	budget := 20
//	result, err := mazeService.Analyze(ctx, "example", service.AnalysisRequest{MaxCheatBudget: &budget})
//
// Metrics:
//
// Analyses are counted and timed with Prometheus collectors registered on
// the default registry (racetrack_analysis_total and friends).
package service
