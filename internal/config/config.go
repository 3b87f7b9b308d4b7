package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/soochol/workbench/internal/tools"
	"github.com/soochol/workbench/internal/workbench"
)

// Environment variables that override values from the config file.
const (
	EnvDatabaseURL    = "WORKBENCH_DATABASE_URL"
	EnvDatabaseDriver = "WORKBENCH_DATABASE_DRIVER"
	EnvExecutorURL    = "WORKBENCH_EXECUTOR_URL"
)

// Config holds the top-level application configuration.
type Config struct {
	Server   ServerConfig          `yaml:"server"`
	Database DatabaseConfig        `yaml:"database"`
	Executor ExecutorConfig        `yaml:"executor"`
	Designer DesignerConfig        `yaml:"designer"`
	Tools    map[string]ToolConfig `yaml:"tools"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig holds database connection settings. An empty URL keeps
// processes in memory.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "postgres" or "sqlite3"
	URL    string `yaml:"url"`
}

// ExecutorConfig points at the service that runs saved processes.
type ExecutorConfig struct {
	URL        string        `yaml:"url"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"` // transient start failures (default: 2)
}

// DesignerConfig tunes designer sessions.
type DesignerConfig struct {
	HistoryLimit int `yaml:"history_limit"` // undo depth per session (default: 100)
	QueueSize    int `yaml:"queue_size"`    // pending intents per session (default: 64)
}

// ToolConfig holds application settings for one tool.
type ToolConfig struct {
	Version  string         `yaml:"version"`
	Defaults map[string]any `yaml:"defaults"`
	Rules    []RuleConfig   `yaml:"rules"`
}

// RuleConfig is an extra validation rule, an expr-lang boolean expression.
type RuleConfig struct {
	Field   string `yaml:"field"`
	Expr    string `yaml:"expr"`
	Message string `yaml:"message"`
}

// defaults returns a Config populated with sensible default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Database: DatabaseConfig{Driver: "postgres"},
		Executor: ExecutorConfig{Timeout: 30 * time.Second, MaxRetries: 2},
		Designer: DesignerConfig{
			HistoryLimit: 100,
			QueueSize:    64,
		},
		Tools: map[string]ToolConfig{},
	}
}

// Load reads a YAML configuration file at path and returns a Config.
// Environment overrides are applied on top of the file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Ensure Tools map is never nil even if YAML has "tools: {}" or omits it.
	if cfg.Tools == nil {
		cfg.Tools = map[string]ToolConfig{}
	}
	cfg.applyEnv()
	return cfg, nil
}

// LoadDefault tries to load "config.yaml" from the current directory.
// If the file does not exist, it returns sensible defaults.
// Any other error (e.g. permission denied, malformed YAML) is returned.
func LoadDefault() (*Config, error) {
	cfg, err := Load("config.yaml")
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg = defaults()
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDatabaseURL); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv(EnvDatabaseDriver); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv(EnvExecutorURL); v != "" {
		c.Executor.URL = v
	}
}

// ToolSettings converts the tools section into the designer's application
// configuration.
func (c *Config) ToolSettings() tools.AppConfig {
	app := make(tools.AppConfig, len(c.Tools))
	for name, tc := range c.Tools {
		rules := make([]tools.Rule, len(tc.Rules))
		for i, r := range tc.Rules {
			rules[i] = tools.Rule{Field: r.Field, Expr: r.Expr, Message: r.Message}
		}
		app[workbench.Tool(name)] = tools.Settings{
			Version:  tc.Version,
			Defaults: tc.Defaults,
			Rules:    rules,
		}
	}
	return app
}
