// Package config loads stockroom's settings from defaults, a JSON file and
// the environment, in that order of precedence (last wins).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config is the persistent application configuration
type Config struct {
	// DataDir holds the store, logs and the config file itself.
	DataDir string `koanf:"data_dir" json:"data_dir" validate:"required"`

	API    APIConfig    `koanf:"api" json:"api"`
	UI     UIConfig     `koanf:"ui" json:"ui"`
	Export ExportConfig `koanf:"export" json:"export"`
	Log    LogConfig    `koanf:"log" json:"log"`
}

// APIConfig describes the warehouse backend.
type APIConfig struct {
	BaseURL       string        `koanf:"base_url" json:"base_url" validate:"required,url"`
	Timeout       time.Duration `koanf:"timeout" json:"timeout" validate:"gt=0"`
	RatePerSecond float64       `koanf:"rate_per_second" json:"rate_per_second" validate:"gte=0"` // 0 = unlimited
	Retry         bool          `koanf:"retry" json:"retry"`                                      // retry idempotent reads once
}

// UIConfig holds UI preferences
type UIConfig struct {
	PageSize int    `koanf:"page_size" json:"page_size" validate:"gte=1,lte=500"`
	Theme    string `koanf:"theme" json:"theme" validate:"oneof=dark light"`
}

// ExportConfig controls where CSV exports land.
type ExportConfig struct {
	Dir string `koanf:"dir" json:"dir"` // empty = current directory
}

// LogConfig holds the log level.
type LogConfig struct {
	Level string `koanf:"level" json:"level" validate:"oneof=debug info warn error"`
}

// envPaths maps environment variables to config keys.
var envPaths = map[string]string{
	"STOCKROOM_DATA_DIR":    "data_dir",
	"STOCKROOM_API_URL":     "api.base_url",
	"STOCKROOM_API_TIMEOUT": "api.timeout",
	"STOCKROOM_API_RATE":    "api.rate_per_second",
	"STOCKROOM_API_RETRY":   "api.retry",
	"STOCKROOM_PAGE_SIZE":   "ui.page_size",
	"STOCKROOM_THEME":       "ui.theme",
	"STOCKROOM_EXPORT_DIR":  "export.dir",
	"STOCKROOM_LOG_LEVEL":   "log.level",
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		DataDir: DefaultDataDir(),
		API: APIConfig{
			BaseURL:       "http://localhost:8000/api",
			Timeout:       15 * time.Second,
			RatePerSecond: 5,
			Retry:         true,
		},
		UI: UIConfig{
			PageSize: 10,
			Theme:    "dark",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultDataDir is ~/.stockroom, or ./.stockroom if there is no home.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".stockroom"
	}
	return filepath.Join(home, ".stockroom")
}

// DefaultPath returns the path to the config file
func DefaultPath() string {
	return filepath.Join(DefaultDataDir(), "config.json")
}

// Load reads config from path (DefaultPath when empty), layering the
// environment on top. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(DefaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	fileValues, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if fileValues != nil {
		if err := k.Load(rawMap(fileValues), nil); err != nil {
			return nil, fmt.Errorf("apply %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: "STOCKROOM_",
		TransformFunc: func(key, value string) (string, any) {
			// Unmapped variables are dropped.
			return envPaths[key], value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func readFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	var values map[string]any
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return values, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Save writes config to path with restrictive permissions.
func (c *Config) Save(path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(fileView{Config: c}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// fileView writes the timeout as a duration string ("15s") instead of
// nanoseconds so the file stays hand-editable.
type fileView struct {
	*Config
}

func (f fileView) MarshalJSON() ([]byte, error) {
	var m map[string]any
	raw, err := json.Marshal(f.Config)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	if api, ok := m["api"].(map[string]any); ok {
		api["timeout"] = f.API.Timeout.String()
	}
	return json.Marshal(m)
}

// ExportDir resolves the export directory.
func (c *Config) ExportDir() string {
	if c.Export.Dir != "" {
		return c.Export.Dir
	}
	return "."
}

// StorePath is the sqlite file inside DataDir.
func (c *Config) StorePath() string {
	return filepath.Join(c.DataDir, "stockroom.db")
}

// rawMap is a koanf.Provider adapter for map[string]any data.
type rawMap map[string]any

func (r rawMap) Read() (map[string]any, error) {
	return r, nil
}

func (r rawMap) ReadBytes() ([]byte, error) {
	return nil, errors.New("ReadBytes not implemented")
}
