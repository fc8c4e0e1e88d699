package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/wricardo/mcp-training/racetrack/game/engine"
	"github.com/wricardo/mcp-training/racetrack/game/service"
)

var (
	ErrMazeNotFound = errors.New("maze not found")
	ErrInvalidMaze  = errors.New("invalid maze")
)

// DefaultMazeID is loaded as the default maze when present
const DefaultMazeID = "example"

// extensions lists the supported maze file formats in lookup order
var extensions = []string{".json", ".yaml", ".yml", ".txt"}

// Manager handles maze configuration loading and caching
type Manager struct {
	configDir   string
	defaultMaze *engine.MazeConfig
	mazes       map[string]*engine.MazeConfig
	mu          sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		mazes:     make(map[string]*engine.MazeConfig),
	}

	if err := m.loadDefaultMaze(); err != nil {
		return nil, fmt.Errorf("failed to load default maze: %w", err)
	}

	return m, nil
}

// Dir returns the directory mazes are loaded from
func (m *Manager) Dir() string {
	return m.configDir
}

// LoadMaze loads a maze by ID (file stem) or by file name
func (m *Manager) LoadMaze(name string) (*engine.MazeConfig, error) {
	id := mazeID(name)

	m.mu.RLock()
	if config, exists := m.mazes[id]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.mazes[id]; exists {
		return config, nil
	}

	path, err := m.findFile(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read maze file: %w", err)
	}

	config, err := engine.DecodeMazeConfig(path, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMaze, err)
	}
	if err := engine.ValidateMazeConfig(config); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMaze, err)
	}

	m.mazes[id] = config
	return config, nil
}

// ListMazes returns information about all loadable mazes. Files that fail
// validation are skipped.
func (m *Manager) ListMazes() ([]*service.MazeInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var mazes []*service.MazeInfo
	seen := make(map[string]bool)

	for _, entry := range entries {
		if entry.IsDir() || !supported(entry.Name()) {
			continue
		}

		id := mazeID(entry.Name())
		if seen[id] {
			continue
		}

		config, err := m.LoadMaze(entry.Name())
		if err != nil {
			continue
		}
		seen[id] = true

		info := &service.MazeInfo{
			Filename:       entry.Name(),
			MazeID:         id,
			Name:           config.Name,
			Description:    config.Description,
			MaxCheatBudget: config.MaxCheatBudget,
			MinSaving:      config.MinSaving,
		}
		if grid, err := config.Grid(); err == nil {
			info.Width = grid.Width()
			info.Height = grid.Height()
		}
		mazes = append(mazes, info)
	}

	return mazes, nil
}

// GetDefault returns the default maze
func (m *Manager) GetDefault() *engine.MazeConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultMaze
}

// SetDefault sets the default maze by ID
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadMaze(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultMaze = config
	return nil
}

// RefreshCache drops every cached maze so the next load reads from disk
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.mazes = make(map[string]*engine.MazeConfig)
	m.mu.Unlock()

	return m.loadDefaultMaze()
}

// SaveMaze validates and writes a maze. The format follows the extension
// of name; a bare ID is stored as JSON.
func (m *Manager) SaveMaze(name string, config *engine.MazeConfig) error {
	if err := engine.ValidateMazeConfig(config); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMaze, err)
	}

	id := mazeID(name)
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return fmt.Errorf("%w: bad maze id %q", ErrInvalidMaze, name)
	}

	filename := name
	if !supported(filename) {
		filename = id + ".json"
	}

	data, err := engine.EncodeMazeConfig(filename, config)
	if err != nil {
		return fmt.Errorf("failed to encode maze: %w", err)
	}

	if err := os.WriteFile(filepath.Join(m.configDir, filename), data, 0644); err != nil {
		return fmt.Errorf("failed to write maze file: %w", err)
	}

	m.mu.Lock()
	m.mazes[id] = config
	m.mu.Unlock()

	return nil
}

// findFile resolves a maze ID or file name to a path inside configDir
func (m *Manager) findFile(name string) (string, error) {
	if strings.ContainsAny(name, `/\`) || name == "" || name == "." || name == ".." {
		return "", ErrMazeNotFound
	}

	candidates := []string{name}
	if !supported(name) {
		candidates = candidates[:0]
		for _, ext := range extensions {
			candidates = append(candidates, name+ext)
		}
	}

	for _, c := range candidates {
		path := filepath.Join(m.configDir, c)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", ErrMazeNotFound
}

// loadDefaultMaze picks example, then the first loadable maze, then a
// built-in fallback
func (m *Manager) loadDefaultMaze() error {
	config, err := m.LoadMaze(DefaultMazeID)
	if err != nil {
		mazes, listErr := m.ListMazes()
		if listErr != nil || len(mazes) == 0 {
			m.setDefault(m.createMinimalMaze())
			return nil
		}

		config, err = m.LoadMaze(mazes[0].Filename)
		if err != nil {
			m.setDefault(m.createMinimalMaze())
			return nil
		}
	}

	m.setDefault(config)
	return nil
}

func (m *Manager) setDefault(config *engine.MazeConfig) {
	m.mu.Lock()
	m.defaultMaze = config
	m.mu.Unlock()
}

// createMinimalMaze creates a small valid maze with one worthwhile cheat
func (m *Manager) createMinimalMaze() *engine.MazeConfig {
	return &engine.MazeConfig{
		Name:        "default",
		Description: "Default minimal maze",
		Layout: []string{
			"#####",
			"#S#E#",
			"#.#.#",
			"#...#",
			"#####",
		},
		MaxCheatBudget: engine.DefaultCheatBudget,
		MinSaving:      engine.DefaultMinSaving,
	}
}

func mazeID(name string) string {
	if supported(name) {
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}

func supported(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}
