// Package api provides the HTTP REST API for the racetrack cheat analyzer.
//
// Endpoints:
//
// Mazes:
//   - GET /api/mazes - List loadable mazes
//   - POST /api/mazes - Save a maze (JSON body in the MazeConfig shape)
//   - GET /api/mazes/{id} - Layout, start, goal and cheat-free baseline
//
// Analysis:
//   - POST /api/mazes/{id}/analyze - Count qualifying cheats and record a run
//   - GET /api/mazes/{id}/cheats - Page through qualifying cheats
//   - GET /api/mazes/{id}/path - Shortest route allowing one cheat
//   - GET /api/mazes/{id}/crosscheck - Compare enumerator and phase-space explorer
//
// Runs:
//   - GET /api/runs?maze= - List recorded runs, newest first
//   - GET /api/runs/{id} - Fetch one run
//   - DELETE /api/runs/{id} - Remove a run
//
// Other:
//   - GET /api/health
//   - GET /metrics - Prometheus exposition
//   - GET /ws?maze= - WebSocket feed of analysis events
//
// Analyze accepts an optional body:
//
//	{
//	  "max_cheat_budget": 20,  // omit to use the maze default
//	  "min_saving": 100,       // omit to use the maze default
//	  "workers": 4,            // 1 scans sequentially
//	  "histogram": true
//	}
//
// The GET analysis endpoints take the same overrides as budget and
// min_saving query parameters. Cheats also accept page, limit and order.
//
// Errors are returned as {"error": "..."}. Unknown mazes and runs map to
// 404, malformed layouts and bad parameters to 400, and a goal that cannot
// be reached without cheating to 422.
package api
