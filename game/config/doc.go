// Package config provides maze configuration management for the racetrack
// analyzer.
//
// The config package handles:
//   - Loading maze documents from a directory (JSON, YAML, or raw .txt layouts)
//   - Validation through engine.ValidateMazeConfig
//   - Default maze selection
//   - Maze discovery and listing
//
// Maze Format:
//
// A JSON or YAML document names the maze and carries its layout rows plus
// the default cheat parameters:
//
//	name: example
//	description: Fifteen by fifteen sample track
//	max_cheat_budget: 2
//	min_saving: 1
//	layout:
//	  - "###############"
//	  - "#...#...#.....#"
//	  ...
//
// A .txt file holds only the layout; its name is the file stem and it is
// analyzed with engine.DefaultCheatBudget and engine.DefaultMinSaving.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	maze, err := manager.LoadMaze("example")
//	mazes, err := manager.ListMazes()
//
// The maze ID used throughout the API is the file name without extension.
package config
