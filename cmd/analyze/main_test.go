package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const exampleMaze = "configs/example.json"

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := newApp(&out).Run(context.Background(), append([]string{"analyze"}, args...))
	return out.String(), err
}

// chdirRoot runs the test from the module root so configs/ paths resolve
func chdirRoot(t *testing.T) {
	t.Helper()
	t.Chdir(filepath.Join("..", ".."))
	if _, err := os.Stat(exampleMaze); err != nil {
		t.Skipf("example maze not available: %v", err)
	}
}

func assertContains(t *testing.T, output string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(output, w) {
			t.Errorf("Expected %q in output:\n%s", w, output)
		}
	}
}

func TestCount(t *testing.T) {
	chdirRoot(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"file parameters", nil, "Qualifying cheats: 44 (budget 2, min saving 1)"},
		{"long cheats", []string{"--budget", "20", "--min-saving", "50"}, "Qualifying cheats: 285 (budget 20, min saving 50)"},
		{"parallel", []string{"--workers", "4"}, "Qualifying cheats: 44"},
		{"budget one", []string{"--budget", "1"}, "Qualifying cheats: 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := runApp(t, append([]string{"count", "--maze", exampleMaze}, tt.args...)...)
			if err != nil {
				t.Fatalf("count failed: %v", err)
			}
			assertContains(t, output, "Maze: example", "Baseline: 84 steps", tt.want)
		})
	}
}

func TestCount_Errors(t *testing.T) {
	chdirRoot(t)

	tests := []struct {
		name string
		args []string
	}{
		{"missing maze flag", []string{"count"}},
		{"missing file", []string{"count", "--maze", "configs/nope.json"}},
		{"zero budget", []string{"count", "--maze", exampleMaze, "--budget", "0"}},
		{"negative saving", []string{"count", "--maze", exampleMaze, "--min-saving=-1"}},
		{"zero workers", []string{"count", "--maze", exampleMaze, "--workers", "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runApp(t, tt.args...); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

func TestHistogram(t *testing.T) {
	chdirRoot(t)

	output, err := runApp(t, "histogram", "--maze", exampleMaze)
	if err != nil {
		t.Fatalf("histogram failed: %v", err)
	}
	assertContains(t, output,
		"   2 steps: 14",
		"   4 steps: 14",
		"  12 steps: 3",
		"  64 steps: 1",
		"Total: 44",
	)

	if strings.Index(output, "   2 steps") > strings.Index(output, "  64 steps") {
		t.Error("Expected buckets ordered by saving")
	}
}

func TestHistogram_NoCheats(t *testing.T) {
	chdirRoot(t)

	output, err := runApp(t, "histogram", "--maze", exampleMaze, "--budget", "1")
	if err != nil {
		t.Fatalf("histogram failed: %v", err)
	}
	assertContains(t, output, "No qualifying cheats")
}

func TestPath(t *testing.T) {
	chdirRoot(t)

	output, err := runApp(t, "path", "--maze", "configs/tiny.txt")
	if err != nil {
		t.Fatalf("path failed: %v", err)
	}
	assertContains(t, output,
		"Maze: tiny",
		"Shortest path: 2 steps (saves 4)",
		"Cheat: (1,1) -> (3,1)",
		"#S1E#",
	)

	output, err = runApp(t, "path", "--maze", exampleMaze, "--budget", "6")
	if err != nil {
		t.Fatalf("path failed: %v", err)
	}
	assertContains(t, output, "Shortest path: 8 steps (saves 76)")
}

func TestCrossCheck(t *testing.T) {
	chdirRoot(t)

	output, err := runApp(t, "crosscheck", "--maze", "configs/serpentine.yaml")
	if err != nil {
		t.Fatalf("crosscheck failed: %v", err)
	}
	assertContains(t, output, "Maze: serpentine (budget 3, min saving 1)", "agree: 34 cheats")

	output, err = runApp(t, "crosscheck", "--maze", exampleMaze, "--budget", "6", "--min-saving", "0")
	if err != nil {
		t.Fatalf("crosscheck failed: %v", err)
	}
	assertContains(t, output, "agree: 715 cheats")
}

func TestSummary(t *testing.T) {
	chdirRoot(t)

	output, err := runApp(t, "summary", "--dir", "configs")
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	assertContains(t, output,
		"=== example.json ===",
		"Baseline: 84 steps",
		"✅ 44 cheats (budget 2, min saving 1), best saves 64",
		"✅ 285 cheats (budget 20, min saving 50)",
		"=== tiny.txt ===",
		"✅ 2 cheats (budget 2, min saving 1), best saves 4",
	)
}

func TestSummary_Problems(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"walled.txt":  "#####\n#S#E#\n#####\n",
		"broken.json": `{"name": "broken", `,
		"flat.txt":    "#####\n#S.E#\n#####\n",
		"notes.md":    "ignored",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}

	output, err := runApp(t, "summary", "--dir", dir)
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	assertContains(t, output,
		"=== broken.json ===\nError:",
		"goal",
		"⚠️  No cheats save at least 1 steps with budget 2",
	)
	if strings.Contains(output, "notes.md") {
		t.Error("Expected non-maze files to be skipped")
	}
}

func TestSummary_EmptyDir(t *testing.T) {
	if _, err := runApp(t, "summary", "--dir", t.TempDir()); err == nil {
		t.Error("Expected error for a directory without mazes")
	}
}
