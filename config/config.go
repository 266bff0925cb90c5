package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/ebpl/ebplc/eval"
)

// Config holds the settings of the ebpl command.
type Config struct {
	// Interpreters are tried in order to run generated code.
	Interpreters []string      `yaml:"interpreters"`
	Timeout      time.Duration `yaml:"timeout"`
	// Verify parses the generated code as Python before reporting success.
	Verify      bool   `yaml:"verify"`
	MaxSteps    int    `yaml:"max_steps"`
	HistoryFile string `yaml:"history_file"`
	TempDir     string `yaml:"temp_dir"`
}

func Default() Config {
	return Config{
		Interpreters: []string{"python", "python3"},
		Timeout:      10 * time.Second,
		MaxSteps:     eval.DefaultMaxSteps,
		HistoryFile:  filepath.Join(xdg.DataHome, "ebpl", ".ebpl_history"),
	}
}

// DefaultPath is $XDG_CONFIG_HOME/ebpl/config.yaml.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "ebpl", "config.yaml")
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}

	if err := Parse(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Parse decodes YAML into cfg, keeping the values of absent keys.
func Parse(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return err
	}

	return cfg.Validate()
}

type InvalidConfigError struct {
	Key    string
	Reason string
}

func (e InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Key, e.Reason)
}

func (c Config) Validate() error {
	if len(c.Interpreters) == 0 {
		return InvalidConfigError{Key: "interpreters", Reason: "at least one interpreter is required"}
	}
	if c.Timeout <= 0 {
		return InvalidConfigError{Key: "timeout", Reason: "must be positive"}
	}
	if c.MaxSteps <= 0 {
		return InvalidConfigError{Key: "max_steps", Reason: "must be positive"}
	}

	return nil
}
