package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/mcp-training/racetrack/game/engine"
	"github.com/wricardo/mcp-training/racetrack/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			// Large budgets on big mazes take a while
			Timeout: 60 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Racetrack Cheat Analyzer",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Racetrack Cheat Analyzer - MCP Interface

This is a thin client that proxies all requests to the REST API server.

A racetrack is a grid maze with one start (S), one goal (E), open track (.)
and walls (#). Each move is one step. Once per race a program may
cheat: for up to max_cheat_budget moves it ignores walls. A cheat is named by
the open cell where it starts and the open cell where it ends.

AVAILABLE TOOLS:
- list_mazes: List available mazes
- describe_maze: Layout, start, goal and cheat-free route length
- analyze_maze: Count cheats saving at least min_saving steps
- list_cheats: Page through qualifying cheats, best first
- shortest_path: Fastest route using at most one cheat
- cross_validate: Check the counter against an independent search
- list_runs: Recent analyses
- maze_instructions: Rules and tips`),
	)

	c.registerTools()
}

func mazeIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Maze ID as returned by list_mazes",
	}
}

func budgetProperties() map[string]interface{} {
	return map[string]interface{}{
		"maze_id": mazeIDProperty(),
		"max_cheat_budget": map[string]interface{}{
			"type":        "integer",
			"description": "Longest cheat in moves (optional, defaults to the maze setting)",
		},
		"min_saving": map[string]interface{}{
			"type":        "integer",
			"description": "Smallest saving worth counting (optional, defaults to the maze setting)",
		},
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_mazes",
		Description: "List all available mazes",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListMazes)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_maze",
		Description: "Show a maze layout with its start, goal and cheat-free route length",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"maze_id": mazeIDProperty(),
			},
			Required: []string{"maze_id"},
		},
	}, c.handleDescribeMaze)

	analyzeProps := budgetProperties()
	analyzeProps["workers"] = map[string]interface{}{
		"type":        "integer",
		"description": "Parallel workers for the count (optional)",
	}
	analyzeProps["histogram"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Include how many cheats achieve each saving",
	}
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "analyze_maze",
		Description: "Count distinct cheats whose saving reaches min_saving",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: analyzeProps,
			Required:   []string{"maze_id"},
		},
	}, c.handleAnalyzeMaze)

	cheatProps := budgetProperties()
	cheatProps["page"] = map[string]interface{}{
		"type":        "integer",
		"description": "Page number (default: 1)",
	}
	cheatProps["limit"] = map[string]interface{}{
		"type":        "integer",
		"description": "Cheats per page (default: 20, max: 100)",
	}
	cheatProps["order"] = map[string]interface{}{
		"type":        "string",
		"enum":        []string{"desc", "asc"},
		"description": "desc lists the biggest savings first",
	}
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_cheats",
		Description: "List qualifying cheats with their entry, exit, length and saving",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: cheatProps,
			Required:   []string{"maze_id"},
		},
	}, c.handleListCheats)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "shortest_path",
		Description: "Find the fastest route from S to E using at most one cheat and draw it",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"maze_id": mazeIDProperty(),
				"max_cheat_budget": map[string]interface{}{
					"type":        "integer",
					"description": "Longest cheat in moves (optional)",
				},
			},
			Required: []string{"maze_id"},
		},
	}, c.handleShortestPath)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "cross_validate",
		Description: "Compare the cheat counter with an independent phase-space search",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: budgetProperties(),
			Required:   []string{"maze_id"},
		},
	}, c.handleCrossValidate)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_runs",
		Description: "List recent analyses, newest first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"maze_id": map[string]interface{}{
					"type":        "string",
					"description": "Only show runs for this maze (optional)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum runs to show (optional)",
				},
			},
		},
	}, c.handleListRuns)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "maze_instructions",
		Description: "Get the racetrack rules and analysis tips",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleMazeInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// arguments returns the tool call arguments as a map
func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	return args
}

func argString(args map[string]interface{}, name string) string {
	v, _ := args[name].(string)
	return v
}

func argBool(args map[string]interface{}, name string) bool {
	v, _ := args[name].(bool)
	return v
}

// optionalInt returns the integer argument name when the caller set it.
// JSON numbers arrive as float64.
func optionalInt(args map[string]interface{}, name string) (int, bool) {
	switch v := args[name].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n, true
		}
	}
	return 0, false
}

// budgetQuery builds the budget and min_saving query string
func budgetQuery(args map[string]interface{}) url.Values {
	q := url.Values{}
	if v, ok := optionalInt(args, "max_cheat_budget"); ok {
		q.Set("budget", strconv.Itoa(v))
	}
	if v, ok := optionalInt(args, "min_saving"); ok {
		q.Set("min_saving", strconv.Itoa(v))
	}
	return q
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

func mazePath(mazeID, suffix string) string {
	return "/api/mazes/" + url.PathEscape(mazeID) + suffix
}

// Tool handlers

func (c *Client) handleListMazes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count int                `json:"count"`
		Mazes []service.MazeInfo `json:"mazes"`
	}

	if err := c.apiCall(ctx, "GET", "/api/mazes", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMazeList(response.Mazes)), nil
}

func (c *Client) handleDescribeMaze(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	mazeID := argString(args, "maze_id")
	if mazeID == "" {
		return mcp.NewToolResultError("maze_id is required"), nil
	}

	var detail service.MazeDetail
	if err := c.apiCall(ctx, "GET", mazePath(mazeID, ""), nil, &detail); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMazeDetail(&detail)), nil
}

func (c *Client) handleAnalyzeMaze(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	mazeID := argString(args, "maze_id")
	if mazeID == "" {
		return mcp.NewToolResultError("maze_id is required"), nil
	}

	body := map[string]interface{}{
		"histogram": argBool(args, "histogram"),
	}
	if v, ok := optionalInt(args, "max_cheat_budget"); ok {
		body["max_cheat_budget"] = v
	}
	if v, ok := optionalInt(args, "min_saving"); ok {
		body["min_saving"] = v
	}
	if v, ok := optionalInt(args, "workers"); ok {
		body["workers"] = v
	}

	var result service.AnalysisResult
	if err := c.apiCall(ctx, "POST", mazePath(mazeID, "/analyze"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatAnalysis(&result)), nil
}

func (c *Client) handleListCheats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	mazeID := argString(args, "maze_id")
	if mazeID == "" {
		return mcp.NewToolResultError("maze_id is required"), nil
	}

	q := budgetQuery(args)
	if page, ok := optionalInt(args, "page"); ok {
		q.Set("page", strconv.Itoa(page))
	}
	if limit, ok := optionalInt(args, "limit"); ok {
		q.Set("limit", strconv.Itoa(limit))
	}
	if order := argString(args, "order"); order != "" {
		q.Set("order", order)
	}

	var page service.CheatPage
	if err := c.apiCall(ctx, "GET", withQuery(mazePath(mazeID, "/cheats"), q), nil, &page); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCheatPage(&page)), nil
}

func (c *Client) handleShortestPath(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	mazeID := argString(args, "maze_id")
	if mazeID == "" {
		return mcp.NewToolResultError("maze_id is required"), nil
	}

	q := url.Values{}
	if v, ok := optionalInt(args, "max_cheat_budget"); ok {
		q.Set("budget", strconv.Itoa(v))
	}

	var result service.PathResult
	if err := c.apiCall(ctx, "GET", withQuery(mazePath(mazeID, "/path"), q), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatPath(&result)), nil
}

func (c *Client) handleCrossValidate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	mazeID := argString(args, "maze_id")
	if mazeID == "" {
		return mcp.NewToolResultError("maze_id is required"), nil
	}

	var result service.CrossCheckResult
	path := withQuery(mazePath(mazeID, "/crosscheck"), budgetQuery(args))
	if err := c.apiCall(ctx, "GET", path, nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCrossCheck(&result)), nil
}

func (c *Client) handleListRuns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	q := url.Values{}
	if mazeID := argString(args, "maze_id"); mazeID != "" {
		q.Set("maze", mazeID)
	}
	if limit, ok := optionalInt(args, "limit"); ok {
		q.Set("limit", strconv.Itoa(limit))
	}

	var response struct {
		Count int           `json:"count"`
		Total int           `json:"total"`
		Runs  []service.Run `json:"runs"`
	}
	if err := c.apiCall(ctx, "GET", withQuery("/api/runs", q), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRuns(response.Runs, response.Total)), nil
}

func (c *Client) handleMazeInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Racetrack Cheat Analyzer - Instructions

THE TRACK:
  S  start (open)
  E  goal (open)
  .  open track
  #  wall

Moves go up, down, left or right, one step each. Without
cheating there is exactly one route from S to E; its length is the baseline.

CHEATING:
Once per race a program may disable collision for up to max_cheat_budget
consecutive moves. The cheat starts on an open cell (the entry) and must
finish on an open cell (the exit). Cheats are identified only by entry and
exit, so two routes between the same cells are one cheat.

SAVINGS:
A cheat from A to B costs |dx|+|dy| moves. Its saving is
  baseline - (dist(S, A) + |dx|+|dy| + dist(B, E))
Only cheats with a positive saving that is at least min_saving count.

ANALYSIS TIPS:
1. describe_maze first to see the layout and baseline
2. analyze_maze with histogram=true shows how savings are distributed
3. list_cheats pages through the qualifying cheats, best first
4. shortest_path draws the fastest one-cheat route; digits mark cheat moves
5. cross_validate re-derives the count with an independent search

PARAMETERS:
  max_cheat_budget  at least 1; a budget of 1 never crosses a wall
  min_saving        0 or more; cheats must still save time

Common settings: budget 2 with min_saving 100, budget 20 with min_saving 100.`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatMazeList(mazes []service.MazeInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Available Mazes (%d):\n\n", len(mazes))
	for _, m := range mazes {
		fmt.Fprintf(&b, "• %s (%s)\n", m.MazeID, m.Name)
		if m.Description != "" {
			fmt.Fprintf(&b, "  %s\n", m.Description)
		}
		fmt.Fprintf(&b, "  Grid: %dx%d, Budget: %d, Min saving: %d\n\n",
			m.Width, m.Height, m.MaxCheatBudget, m.MinSaving)
	}
	return b.String()
}

func formatMazeDetail(detail *service.MazeDetail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Maze: %s (%s)\n", detail.MazeID, detail.Name)
	fmt.Fprintf(&b, "Size: %dx%d, Open cells: %d\n", detail.Width, detail.Height, detail.OpenCells)
	fmt.Fprintf(&b, "Start: (%d,%d)  Goal: (%d,%d)\n", detail.Start.X, detail.Start.Y, detail.Goal.X, detail.Goal.Y)
	fmt.Fprintf(&b, "Baseline: %d steps\n", detail.Baseline)
	fmt.Fprintf(&b, "Defaults: budget %d, min saving %d\n\n", detail.MaxCheatBudget, detail.MinSaving)
	for _, line := range detail.Layout {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func formatAnalysis(result *service.AnalysisResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analysis of %s (run %s)\n", result.MazeID, result.RunID)
	fmt.Fprintf(&b, "Budget: %d, Min saving: %d\n", result.Params.MaxCheatBudget, result.Params.MinSaving)
	fmt.Fprintf(&b, "Baseline: %d\n", result.Baseline)
	fmt.Fprintf(&b, "Qualifying cheats: %d\n", result.Count)
	if result.Count > 0 {
		fmt.Fprintf(&b, "Best saving: %d\n", result.BestSaving)
	}
	fmt.Fprintf(&b, "Took %.1fms with %d worker(s)\n", result.DurationMs, result.Workers)

	if len(result.Histogram) > 0 {
		b.WriteString("\nSaving histogram:\n")
		for _, bucket := range result.Histogram {
			fmt.Fprintf(&b, "  %4d steps: %d\n", bucket.Saving, bucket.Count)
		}
	}
	return b.String()
}

func formatCheat(c engine.CheatCandidate) string {
	return fmt.Sprintf("(%d,%d) -> (%d,%d)  length %d  saves %d",
		c.Entry.X, c.Entry.Y, c.Exit.X, c.Exit.Y, c.Length, c.Saving)
}

func formatCheatPage(page *service.CheatPage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Cheats for %s (budget %d, min saving %d) - Page %d/%d, Total: %d\n\n",
		page.MazeID, page.Params.MaxCheatBudget, page.Params.MinSaving, page.Page, page.TotalPages, page.Total)

	if len(page.Cheats) == 0 {
		b.WriteString("(no qualifying cheats)\n")
		return b.String()
	}

	for i, c := range page.Cheats {
		num := (page.Page-1)*page.PageSize + i + 1
		fmt.Fprintf(&b, "%d. %s\n", num, formatCheat(c))
	}
	if page.HasNext {
		fmt.Fprintf(&b, "\nMore cheats on page %d\n", page.Page+1)
	}
	return b.String()
}

func formatPath(result *service.PathResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Fastest route on %s with budget %d: %d steps (baseline %d, saves %d)\n",
		result.MazeID, result.MaxCheatBudget, result.Length, result.Baseline, result.Saving)
	if result.Cheat != nil {
		fmt.Fprintf(&b, "Cheat: (%d,%d) -> (%d,%d)\n",
			result.Cheat.Entry.X, result.Cheat.Entry.Y, result.Cheat.Exit.X, result.Cheat.Exit.Y)
	} else {
		b.WriteString("No cheat used\n")
	}
	b.WriteByte('\n')
	for _, line := range result.Rendered {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func formatCrossCheck(result *service.CrossCheckResult) string {
	var b strings.Builder
	status := "✓ AGREE"
	if !result.Agree {
		status = "✗ MISMATCH"
	}
	fmt.Fprintf(&b, "%s on %s (budget %d, min saving %d)\n",
		status, result.MazeID, result.Params.MaxCheatBudget, result.Params.MinSaving)
	fmt.Fprintf(&b, "Enumerated: %d, Explored: %d\n", result.Enumerated, result.Explored)

	for _, k := range result.Missing {
		fmt.Fprintf(&b, "  missing from search: (%d,%d) -> (%d,%d)\n", k.Entry.X, k.Entry.Y, k.Exit.X, k.Exit.Y)
	}
	for _, k := range result.Extra {
		fmt.Fprintf(&b, "  only in search: (%d,%d) -> (%d,%d)\n", k.Entry.X, k.Entry.Y, k.Exit.X, k.Exit.Y)
	}
	for _, m := range result.Mismatches {
		fmt.Fprintf(&b, "  saving differs: (%d,%d) -> (%d,%d) enumerated %d, explored %d\n",
			m.Key.Entry.X, m.Key.Entry.Y, m.Key.Exit.X, m.Key.Exit.Y, m.Enumerated, m.Explored)
	}
	return b.String()
}

func formatRuns(runs []service.Run, total int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Recent Runs (%d of %d):\n\n", len(runs), total)
	for _, r := range runs {
		fmt.Fprintf(&b, "- %s %s budget=%d min=%d count=%d best=%d at %s\n",
			r.ID, r.MazeID, r.Params.MaxCheatBudget, r.Params.MinSaving, r.Count, r.BestSaving,
			r.CompletedAt.Format("15:04:05"))
	}
	return b.String()
}
