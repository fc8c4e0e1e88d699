// Package mcp exposes the racetrack analyzer to AI agents over the Model
// Context Protocol.
//
// The Client is a thin proxy: every tool call becomes a REST request
// against a running API server and the JSON response is rendered as text.
//
// Tools:
//   - list_mazes, describe_maze
//   - analyze_maze: count qualifying cheats, optionally with a histogram
//   - list_cheats: paginated candidates, best saving first
//   - shortest_path: phase-space route with the cheat drawn on the grid
//   - cross_validate: enumerator against phase-space explorer
//   - list_runs: recent analyses
//   - maze_instructions
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
// or over HTTP, one JSON-RPC message per POST:
//
//	response := client.GetMCPServer().HandleMessage(ctx, body)
package mcp
