package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is where the CLI looks for a config file.
const DefaultConfigPath = ".filelens/config.yaml"

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// Config holds all filelens configuration.
type Config struct {
	// Gemini backend
	LLM LLMConfig `yaml:"llm"`

	// Local directory access
	Filesystem FilesystemConfig `yaml:"filesystem"`

	// Presentation
	UI UIConfig `yaml:"ui"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig configures the language-model client.
type LLMConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"` // Go duration; empty means no client timeout
}

// FilesystemConfig controls the directory picker and watcher.
type FilesystemConfig struct {
	// Enabled=false makes the picker report the capability as unavailable.
	Enabled    bool   `yaml:"enabled"`
	StartDir   string `yaml:"start_dir"`
	ShowHidden bool   `yaml:"show_hidden"`
	Watch      bool   `yaml:"watch"`
}

// UIConfig configures the terminal UI.
type UIConfig struct {
	Theme           string `yaml:"theme"` // auto, light, dark
	DemoExpandDepth int    `yaml:"demo_expand_depth"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Model: DefaultModel,
		},
		Filesystem: FilesystemConfig{
			Enabled: true,
			Watch:   true,
		},
		UI: UIConfig{
			Theme:           "auto",
			DemoExpandDepth: 2,
		},
		Logging: LoggingConfig{
			Level: "info",
			Dir:   filepath.Join(".filelens", "logs"),
		},
	}
}

// LoadDotEnv loads KEY=value pairs from path into the process environment.
// Variables already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from a YAML file and applies environment
// overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func (c *Config) applyEnvOverrides() {
	// GEMINI_API_KEY takes precedence over the generic Google key.
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
	} else if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}

	if model := os.Getenv("FILELENS_MODEL"); model != "" {
		c.LLM.Model = model
	}

	if v := os.Getenv("FILELENS_DARK_MODE"); v != "" {
		if dark, err := strconv.ParseBool(v); err == nil {
			if dark {
				c.UI.Theme = "dark"
			} else {
				c.UI.Theme = "light"
			}
		}
	}
}

// GetLLMTimeout returns the LLM timeout, or zero when unset or invalid.
func (c *Config) GetLLMTimeout() time.Duration {
	if c.LLM.Timeout == "" {
		return 0
	}
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// ValidThemes lists accepted ui.theme values.
var ValidThemes = []interface{}{"auto", "light", "dark"}

// ValidLevels lists accepted logging.level values.
var ValidLevels = []interface{}{"debug", "info", "warn", "error"}

// Validate checks the configuration. A missing API key is allowed: the tree
// can be browsed without one.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(&c.LLM,
		validation.Field(&c.LLM.Model, validation.Required),
		validation.Field(&c.LLM.Timeout, validation.By(isDuration)),
		validation.Field(&c.LLM.BaseURL, is.URL, validation.Match(httpScheme).Error("must start with http:// or https://")),
	); err != nil {
		return fmt.Errorf("llm: %w", err)
	}

	if err := validation.ValidateStruct(&c.UI,
		validation.Field(&c.UI.Theme, validation.In(ValidThemes...)),
		validation.Field(&c.UI.DemoExpandDepth, validation.Min(0), validation.Max(16)),
	); err != nil {
		return fmt.Errorf("ui: %w", err)
	}

	if err := validation.ValidateStruct(&c.Logging,
		validation.Field(&c.Logging.Level, validation.In(ValidLevels...)),
		validation.Field(&c.Logging.Dir, validation.When(c.Logging.DebugMode, validation.Required)),
	); err != nil {
		return fmt.Errorf("logging: %w", err)
	}

	return nil
}

func isDuration(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("must be a duration like 30s or 2m")
	}
	if d < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

var httpScheme = regexp.MustCompile(`^https?://`)
