// Package config provides typed configuration for the canvas with
// YAML and JSON file loading.
package config

import (
	"fmt"
	"time"
)

// Config holds canvas configuration. Zero fields are filled with
// defaults by Normalize, so a partial config file is fine.
type Config struct {
	// MaxNodes is the hard cap on live nodes per canvas.
	MaxNodes int `yaml:"max_nodes" json:"max_nodes"`

	// DefaultModel is the model assigned to a fresh root node.
	DefaultModel string `yaml:"default_model" json:"default_model"`

	// Provider selects the completion backend: "openrouter" or "gemini".
	Provider string `yaml:"provider" json:"provider"`

	// BaseURL overrides the provider API root. Empty uses the provider default.
	BaseURL string `yaml:"base_url" json:"base_url"`

	// RequestTimeout bounds a single completion call.
	RequestTimeout Duration `yaml:"request_timeout" json:"request_timeout"`

	// StorePath is the SQLite file backing persistence.
	// Empty selects the in-memory store.
	StorePath string `yaml:"store_path" json:"store_path"`

	// Layout configures node placement.
	Layout LayoutConfig `yaml:"layout" json:"layout"`
}

// LayoutConfig configures the placement engine.
type LayoutConfig struct {
	NodeWidth     float64 `yaml:"node_width" json:"node_width"`
	NodeHeight    float64 `yaml:"node_height" json:"node_height"`
	Gap           float64 `yaml:"gap" json:"gap"`
	BranchOffsetX float64 `yaml:"branch_offset_x" json:"branch_offset_x"`
	BranchOffsetY float64 `yaml:"branch_offset_y" json:"branch_offset_y"`
	ProximityX    float64 `yaml:"proximity_x" json:"proximity_x"`
	MaxAttempts   int     `yaml:"max_attempts" json:"max_attempts"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		MaxNodes:       10,
		DefaultModel:   "google/gemini-pro",
		Provider:       "openrouter",
		RequestTimeout: Duration(2 * time.Minute),
		Layout: LayoutConfig{
			NodeWidth:     576,
			NodeHeight:    400,
			Gap:           25,
			BranchOffsetX: 576 + 50,
			BranchOffsetY: 100,
			ProximityX:    100,
			MaxAttempts:   10,
		},
	}
}

// Normalize fills zero fields with defaults.
func (c *Config) Normalize() {
	def := Default()
	if c.MaxNodes == 0 {
		c.MaxNodes = def.MaxNodes
	}
	if c.DefaultModel == "" {
		c.DefaultModel = def.DefaultModel
	}
	if c.Provider == "" {
		c.Provider = def.Provider
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = def.RequestTimeout
	}
	if c.Layout.NodeWidth == 0 {
		c.Layout.NodeWidth = def.Layout.NodeWidth
	}
	if c.Layout.NodeHeight == 0 {
		c.Layout.NodeHeight = def.Layout.NodeHeight
	}
	if c.Layout.Gap == 0 {
		c.Layout.Gap = def.Layout.Gap
	}
	if c.Layout.BranchOffsetX == 0 {
		c.Layout.BranchOffsetX = def.Layout.BranchOffsetX
	}
	if c.Layout.BranchOffsetY == 0 {
		c.Layout.BranchOffsetY = def.Layout.BranchOffsetY
	}
	if c.Layout.ProximityX == 0 {
		c.Layout.ProximityX = def.Layout.ProximityX
	}
	if c.Layout.MaxAttempts == 0 {
		c.Layout.MaxAttempts = def.Layout.MaxAttempts
	}
}

// Validate reports configuration errors that Normalize cannot repair.
func (c Config) Validate() error {
	if c.MaxNodes < 1 {
		return fmt.Errorf("max_nodes must be positive, got %d", c.MaxNodes)
	}
	switch c.Provider {
	case "openrouter", "gemini":
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if c.Layout.MaxAttempts < 1 {
		return fmt.Errorf("layout.max_attempts must be positive, got %d", c.Layout.MaxAttempts)
	}
	if c.Layout.NodeWidth <= 0 || c.Layout.NodeHeight <= 0 {
		return fmt.Errorf("layout node dimensions must be positive")
	}
	return nil
}
