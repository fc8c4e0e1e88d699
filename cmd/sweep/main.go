// Command sweep drives a running analyzer over its REST API and tabulates
// how the qualifying cheat count grows with the cheat budget.
//
//	sweep -url http://localhost:8080 -maze example -from 2 -to 20 -min-saving 50 -crosscheck
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/wricardo/mcp-training/racetrack/game/service"
)

// Client talks to the analyzer API
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

// Analyze counts cheats for one budget
func (c *Client) Analyze(mazeID string, budget, minSaving, workers int) (*service.AnalysisResult, error) {
	body, err := json.Marshal(service.AnalysisRequest{
		MaxCheatBudget: &budget,
		MinSaving:      &minSaving,
		Workers:        workers,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/mazes/%s/analyze", c.baseURL, url.PathEscape(mazeID))
	resp, err := c.client.Post(endpoint, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	defer resp.Body.Close()

	var result service.AnalysisResult
	if err := decode(resp, &result); err != nil {
		return nil, fmt.Errorf("analyze budget %d: %w", budget, err)
	}
	return &result, nil
}

// CrossValidate compares both strategies for one budget
func (c *Client) CrossValidate(mazeID string, budget, minSaving int) (*service.CrossCheckResult, error) {
	query := url.Values{}
	query.Set("budget", fmt.Sprint(budget))
	query.Set("min_saving", fmt.Sprint(minSaving))

	endpoint := fmt.Sprintf("%s/api/mazes/%s/crosscheck?%s", c.baseURL, url.PathEscape(mazeID), query.Encode())
	resp, err := c.client.Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("crosscheck: %w", err)
	}
	defer resp.Body.Close()

	var result service.CrossCheckResult
	if err := decode(resp, &result); err != nil {
		return nil, fmt.Errorf("crosscheck budget %d: %w", budget, err)
	}
	return &result, nil
}

// decode reads a JSON body, turning error responses into errors
func decode(resp *http.Response, v interface{}) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s: %s", resp.Status, apiErr.Error)
		}
		return fmt.Errorf("%s", resp.Status)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// SweepOptions selects the budgets to analyze
type SweepOptions struct {
	MazeID     string
	From, To   int
	MinSaving  int
	Workers    int
	CrossCheck bool
}

// SweepRow is one line of the sweep table
type SweepRow struct {
	Budget     int
	Count      int
	BestSaving int
	DurationMs float64
	Agree      *bool
}

// Sweep analyzes every budget in [From, To] in order
func Sweep(c *Client, opts SweepOptions) ([]SweepRow, error) {
	if opts.From < 1 || opts.To < opts.From {
		return nil, fmt.Errorf("invalid budget range %d..%d", opts.From, opts.To)
	}

	rows := make([]SweepRow, 0, opts.To-opts.From+1)
	for budget := opts.From; budget <= opts.To; budget++ {
		result, err := c.Analyze(opts.MazeID, budget, opts.MinSaving, opts.Workers)
		if err != nil {
			return rows, err
		}
		row := SweepRow{
			Budget:     budget,
			Count:      result.Count,
			BestSaving: result.BestSaving,
			DurationMs: result.DurationMs,
		}

		if opts.CrossCheck {
			check, err := c.CrossValidate(opts.MazeID, budget, opts.MinSaving)
			if err != nil {
				return rows, err
			}
			agree := check.Agree
			row.Agree = &agree
			if !agree {
				slog.Warn("strategies disagree", "maze", opts.MazeID, "budget", budget, "detail", check.CrossCheck.String())
			}
		}

		slog.Debug("analyzed budget", "maze", opts.MazeID, "budget", budget, "count", row.Count)
		rows = append(rows, row)
	}
	return rows, nil
}

// printTable renders the rows as aligned columns
func printTable(w io.Writer, rows []SweepRow) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "budget\tcheats\tbest\tms\tcrosscheck\t")
	for _, row := range rows {
		check := "-"
		if row.Agree != nil {
			check = "agree"
			if !*row.Agree {
				check = "MISMATCH"
			}
		}
		fmt.Fprintf(tw, "%d\t%d\t%d\t%.2f\t%s\t\n", row.Budget, row.Count, row.BestSaving, row.DurationMs, check)
	}
	tw.Flush()
}

func main() {
	serverURL := flag.String("url", "http://localhost:8080", "Analyzer server URL")
	mazeID := flag.String("maze", "example", "Maze to sweep")
	from := flag.Int("from", 2, "First cheat budget")
	to := flag.Int("to", 20, "Last cheat budget")
	minSaving := flag.Int("min-saving", 1, "Minimum saving for a cheat to count")
	workers := flag.Int("workers", 0, "Counting workers per analysis (0 = server default)")
	crossCheck := flag.Bool("crosscheck", false, "Cross-validate every budget")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	slog.Info("connecting to analyzer", "url", *serverURL, "maze", *mazeID)
	rows, err := Sweep(NewClient(*serverURL), SweepOptions{
		MazeID:     *mazeID,
		From:       *from,
		To:         *to,
		MinSaving:  *minSaving,
		Workers:    *workers,
		CrossCheck: *crossCheck,
	})
	printTable(os.Stdout, rows)
	if err != nil {
		slog.Error("sweep failed", "error", err)
		os.Exit(1)
	}
	for _, row := range rows {
		if row.Agree != nil && !*row.Agree {
			os.Exit(1)
		}
	}
}
