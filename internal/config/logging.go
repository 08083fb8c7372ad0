package config

import "filelens/internal/logging"

// LoggingConfig configures logging.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`  // Master toggle - false = no logging
	Level      string          `yaml:"level"`       // debug, info, warn, error
	JSONFormat bool            `yaml:"json_format"` // JSON lines instead of console text
	Dir        string          `yaml:"dir"`
	Categories map[string]bool `yaml:"categories"` // Per-category toggles
}

// IsCategoryEnabled returns whether logging is enabled for a category.
// Returns false if debug_mode is false.
// Returns true if debug_mode is true and category is enabled (or not specified).
func (c *LoggingConfig) IsCategoryEnabled(category string) bool {
	if !c.DebugMode {
		return false
	}
	enabled, exists := c.Categories[category]
	if !exists {
		return true
	}
	return enabled
}

// Options converts the config into logging.Options.
func (c *LoggingConfig) Options() logging.Options {
	return logging.Options{
		DebugMode:  c.DebugMode,
		Level:      c.Level,
		JSONFormat: c.JSONFormat,
		Dir:        c.Dir,
		Categories: c.Categories,
	}
}
