package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Defaults applied to raw maze files, which carry no parameters
const (
	DefaultCheatBudget = 2
	DefaultMinSaving   = 1
)

// MazeConfig is a named maze with the cheat parameters it is analyzed with
// by default. It is stored as JSON, YAML, or a raw .txt layout.
type MazeConfig struct {
	Name           string   `json:"name" yaml:"name"`
	Description    string   `json:"description,omitempty" yaml:"description,omitempty"`
	Layout         []string `json:"layout" yaml:"layout"`
	MaxCheatBudget int      `json:"max_cheat_budget" yaml:"max_cheat_budget"`
	MinSaving      int      `json:"min_saving" yaml:"min_saving"`
}

// Params returns the configured cheat parameters
func (c *MazeConfig) Params() CheatParams {
	return CheatParams{MaxCheatBudget: c.MaxCheatBudget, MinSaving: c.MinSaving}
}

// Grid parses the layout
func (c *MazeConfig) Grid() (*Grid, error) {
	return ParseLines(c.Layout)
}

// ValidateMazeConfig checks the name, the layout, and the default
// parameters. Reachability of the goal is not checked here; NewEngine
// reports it.
func ValidateMazeConfig(config *MazeConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if strings.TrimSpace(config.Name) == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if strings.ContainsAny(config.Name, `/\`) {
		return fmt.Errorf("config validation: name %q must not contain path separators", config.Name)
	}
	if _, err := config.Grid(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	if err := config.Params().Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	return nil
}

// DecodeMazeConfig parses a maze document. The format follows the file
// extension; a .txt document is a bare layout named after the file stem.
func DecodeMazeConfig(filename string, data []byte) (*MazeConfig, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	var config MazeConfig
	switch ext {
	case ".json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
		}
	case ".txt":
		text := strings.ReplaceAll(string(data), "\r\n", "\n")
		config = MazeConfig{
			Name:           stem,
			Layout:         strings.Split(strings.TrimRight(text, "\n"), "\n"),
			MaxCheatBudget: DefaultCheatBudget,
			MinSaving:      DefaultMinSaving,
		}
	default:
		return nil, fmt.Errorf("unsupported maze file extension %q", ext)
	}

	if config.Name == "" {
		config.Name = stem
	}
	return &config, nil
}

// LoadMazeConfig reads and validates a maze document from disk. A path
// under configs/ is redirected to CONFIG_DIR when that is set.
func LoadMazeConfig(filename string) (*MazeConfig, error) {
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	config, err := DecodeMazeConfig(configPath, data)
	if err != nil {
		return nil, err
	}
	if err := ValidateMazeConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

// EncodeMazeConfig renders a config in the format implied by filename
func EncodeMazeConfig(filename string, config *MazeConfig) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return json.MarshalIndent(config, "", "  ")
	case ".yaml", ".yml":
		return yaml.Marshal(config)
	case ".txt":
		return []byte(strings.Join(config.Layout, "\n") + "\n"), nil
	default:
		return nil, fmt.Errorf("unsupported maze file extension %q", filepath.Ext(filename))
	}
}
