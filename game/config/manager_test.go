package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/wricardo/mcp-training/racetrack/game/engine"
)

var testLayout = []string{
	"#####",
	"#S#E#",
	"#.#.#",
	"#...#",
	"#####",
}

func createValidMaze() *engine.MazeConfig {
	return &engine.MazeConfig{
		Name:           "Test Maze",
		Description:    "Test maze configuration",
		Layout:         append([]string(nil), testLayout...),
		MaxCheatBudget: 2,
		MinSaving:      1,
	}
}

func writeMazeFile(t *testing.T, dir, filename string, config *engine.MazeConfig) {
	t.Helper()
	data, err := engine.EncodeMazeConfig(filename, config)
	if err != nil {
		t.Fatalf("Failed to encode maze: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, filename), data, 0644); err != nil {
		t.Fatalf("Failed to write maze file: %v", err)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		dir := t.TempDir()
		example := createValidMaze()
		example.Name = "Example"
		writeMazeFile(t, dir, "example.json", example)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.GetDefault().Name != "Example" {
			t.Errorf("Expected example to be the default, got %s", manager.GetDefault().Name)
		}
	})

	t.Run("non-existent directory", func(t *testing.T) {
		_, err := NewManager("/non/existent/path")
		if err == nil {
			t.Error("Expected error for non-existent directory")
		}
	})

	t.Run("empty directory", func(t *testing.T) {
		manager, err := NewManager(t.TempDir())
		if err != nil {
			t.Fatalf("NewManager should succeed without maze files, got error: %v", err)
		}

		defaultMaze := manager.GetDefault()
		if defaultMaze == nil {
			t.Fatal("Expected default maze to be available")
		}
		if err := engine.ValidateMazeConfig(defaultMaze); err != nil {
			t.Errorf("Fallback maze should be valid: %v", err)
		}
	})

	t.Run("first maze becomes default", func(t *testing.T) {
		dir := t.TempDir()
		other := createValidMaze()
		other.Name = "Alpha"
		writeMazeFile(t, dir, "alpha.yaml", other)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.GetDefault().Name != "Alpha" {
			t.Errorf("Expected Alpha as default, got %s", manager.GetDefault().Name)
		}
	})
}

func TestManager_LoadMaze(t *testing.T) {
	dir := t.TempDir()

	jsonMaze := createValidMaze()
	jsonMaze.Name = "JSON"
	writeMazeFile(t, dir, "json-maze.json", jsonMaze)

	yamlMaze := createValidMaze()
	yamlMaze.Name = "YAML"
	yamlMaze.MaxCheatBudget = 20
	writeMazeFile(t, dir, "yaml-maze.yaml", yamlMaze)

	if err := os.WriteFile(filepath.Join(dir, "text-maze.txt"), []byte(strings.Join(testLayout, "\n")+"\n"), 0644); err != nil {
		t.Fatalf("Failed to write text maze: %v", err)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	tests := []struct {
		id     string
		name   string
		budget int
	}{
		{"json-maze", "JSON", 2},
		{"json-maze.json", "JSON", 2},
		{"yaml-maze", "YAML", 20},
		{"text-maze", "text-maze", engine.DefaultCheatBudget},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			config, err := manager.LoadMaze(tt.id)
			if err != nil {
				t.Fatalf("Failed to load maze: %v", err)
			}
			if config.Name != tt.name {
				t.Errorf("Expected name %s, got %s", tt.name, config.Name)
			}
			if config.MaxCheatBudget != tt.budget {
				t.Errorf("Expected budget %d, got %d", tt.budget, config.MaxCheatBudget)
			}
		})
	}

	t.Run("cached", func(t *testing.T) {
		first, _ := manager.LoadMaze("json-maze")
		second, _ := manager.LoadMaze("json-maze")
		if first != second {
			t.Error("Expected cached maze to be returned")
		}
	})

	t.Run("not found", func(t *testing.T) {
		_, err := manager.LoadMaze("missing")
		if !errors.Is(err, ErrMazeNotFound) {
			t.Errorf("Expected ErrMazeNotFound, got %v", err)
		}
	})

	t.Run("path traversal", func(t *testing.T) {
		_, err := manager.LoadMaze("../json-maze")
		if !errors.Is(err, ErrMazeNotFound) {
			t.Errorf("Expected ErrMazeNotFound, got %v", err)
		}
	})

	t.Run("invalid maze", func(t *testing.T) {
		if err := os.WriteFile(filepath.Join(dir, "broken.txt"), []byte("#S\n#..E\n"), 0644); err != nil {
			t.Fatalf("Failed to write broken maze: %v", err)
		}
		_, err := manager.LoadMaze("broken")
		if !errors.Is(err, ErrInvalidMaze) {
			t.Errorf("Expected ErrInvalidMaze, got %v", err)
		}
		if !errors.Is(err, engine.ErrMalformedGrid) {
			t.Errorf("Expected wrapped ErrMalformedGrid, got %v", err)
		}
	})
}

func TestManager_ListMazes(t *testing.T) {
	dir := t.TempDir()
	writeMazeFile(t, dir, "a.json", createValidMaze())
	writeMazeFile(t, dir, "b.yaml", createValidMaze())
	if err := os.WriteFile(filepath.Join(dir, "broken.txt"), []byte("not a maze"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("# mazes"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.json"), 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	mazes, err := manager.ListMazes()
	if err != nil {
		t.Fatalf("Failed to list mazes: %v", err)
	}
	if len(mazes) != 2 {
		t.Fatalf("Expected 2 mazes, got %d", len(mazes))
	}

	if mazes[0].MazeID != "a" || mazes[1].MazeID != "b" {
		t.Errorf("Unexpected maze IDs: %s, %s", mazes[0].MazeID, mazes[1].MazeID)
	}
	if mazes[0].Width != 5 || mazes[0].Height != 5 {
		t.Errorf("Expected 5x5, got %dx%d", mazes[0].Width, mazes[0].Height)
	}
	if mazes[1].Filename != "b.yaml" {
		t.Errorf("Expected filename b.yaml, got %s", mazes[1].Filename)
	}
}

func TestManager_SaveMaze(t *testing.T) {
	dir := t.TempDir()
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("json by default", func(t *testing.T) {
		config := createValidMaze()
		config.Name = "Saved"
		if err := manager.SaveMaze("saved", config); err != nil {
			t.Fatalf("Failed to save maze: %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "saved.json")); err != nil {
			t.Errorf("Expected saved.json on disk: %v", err)
		}

		manager.RefreshCache()
		loaded, err := manager.LoadMaze("saved")
		if err != nil {
			t.Fatalf("Failed to reload maze: %v", err)
		}
		if loaded.Name != "Saved" {
			t.Errorf("Expected Saved, got %s", loaded.Name)
		}
	})

	t.Run("yaml by extension", func(t *testing.T) {
		if err := manager.SaveMaze("other.yaml", createValidMaze()); err != nil {
			t.Fatalf("Failed to save maze: %v", err)
		}
		data, err := os.ReadFile(filepath.Join(dir, "other.yaml"))
		if err != nil {
			t.Fatalf("Expected other.yaml on disk: %v", err)
		}
		if !strings.Contains(string(data), "max_cheat_budget: 2") {
			t.Errorf("Expected YAML document, got:\n%s", data)
		}
	})

	t.Run("invalid maze rejected", func(t *testing.T) {
		config := createValidMaze()
		config.MaxCheatBudget = 0
		err := manager.SaveMaze("bad", config)
		if !errors.Is(err, ErrInvalidMaze) {
			t.Errorf("Expected ErrInvalidMaze, got %v", err)
		}
		if !errors.Is(err, engine.ErrInvalidBudget) {
			t.Errorf("Expected wrapped ErrInvalidBudget, got %v", err)
		}
	})

	t.Run("bad id rejected", func(t *testing.T) {
		if err := manager.SaveMaze("../escape", createValidMaze()); err == nil {
			t.Error("Expected error for path in maze id")
		}
	})
}

func TestManager_ConcurrentAccess(t *testing.T) {
	dir := t.TempDir()
	writeMazeFile(t, dir, "example.json", createValidMaze())

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := manager.LoadMaze("example"); err != nil {
				t.Errorf("Concurrent load failed: %v", err)
			}
			if _, err := manager.ListMazes(); err != nil {
				t.Errorf("Concurrent list failed: %v", err)
			}
		}()
	}
	wg.Wait()
}
