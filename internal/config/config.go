package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const Version = "0.1.0"

// DefaultSystemPrompt seeds every conversation unless overridden in config.
const DefaultSystemPrompt = "You are a helpful AI assistant."

// Config holds the agent configuration. Immutable after Load.
type Config struct {
	Model        string  `toml:"model"`
	MaxTokens    int     `toml:"max_tokens"`
	Temperature  float64 `toml:"temperature"`
	BaseURL      string  `toml:"base_url"`
	APIVersion   string  `toml:"api_version"`
	KeyFile      string  `toml:"key_file"`
	SystemPrompt string  `toml:"system_prompt"`
	DBPath       string  `toml:"db_path"`
	LogLevel     string  `toml:"log_level"`

	// Resolved at runtime (not in TOML).
	BaseDir string `toml:"-"`
}

// Default returns the built-in configuration targeting Claude 3.5 Sonnet.
// Filesystem-dependent defaults (key file, ledger path) are filled by Load.
func Default() *Config {
	return &Config{
		Model:        "claude-3-5-sonnet-20240620",
		MaxTokens:    4096,
		Temperature:  0.7,
		BaseURL:      "https://api.anthropic.com",
		APIVersion:   "2023-06-01",
		SystemPrompt: DefaultSystemPrompt,
		LogLevel:     "info",
	}
}

// Load reads a TOML config file layered over Default. The file is optional:
// a missing file (or empty path) yields the defaults. Decoding over the
// default struct means only keys present in the file are overridden, so an
// explicit temperature = 0.0 survives.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("decode config %s: %w", path, err)
			}
			cfg.BaseDir = filepath.Dir(path)
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("stat config %s: %w", path, err)
		}
	}
	applyPathDefaults(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}
	resolvePaths(cfg)
	return cfg, nil
}

func applyPathDefaults(cfg *Config) {
	if cfg.KeyFile == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.KeyFile = filepath.Join(home, ".api", "anthropic1")
		} else {
			slog.Warn("could not determine home directory for default key file", "error", err)
			cfg.KeyFile = filepath.Join(".api", "anthropic1")
		}
	}
	if cfg.DBPath == "" {
		if d, err := DataDir(); err == nil {
			cfg.DBPath = filepath.Join(d, "history.db")
		} else {
			cfg.DBPath = "history.db"
		}
	}
}

func validate(cfg *Config) error {
	if cfg.Model == "" {
		return fmt.Errorf("model must not be empty")
	}
	if cfg.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive, got %d", cfg.MaxTokens)
	}
	if cfg.Temperature < 0 || cfg.Temperature > 1 {
		return fmt.Errorf("temperature must be between 0.0 and 1.0, got %g", cfg.Temperature)
	}
	if err := validateBaseURL(cfg.BaseURL); err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if cfg.APIVersion == "" {
		return fmt.Errorf("api_version must not be empty")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log_level: %q", cfg.LogLevel)
	}
	return nil
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("must use http or https")
	}
	if u.Host == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}

// resolvePaths makes file paths absolute. Relative paths in a config file are
// taken relative to the file's directory, not the working directory.
func resolvePaths(cfg *Config) {
	cfg.KeyFile = absPath(cfg.BaseDir, cfg.KeyFile)
	cfg.DBPath = absPath(cfg.BaseDir, cfg.DBPath)
}

func absPath(base, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if base == "" {
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	}
	return filepath.Join(base, path)
}

func (cfg *Config) SlogLevel() slog.Level {
	switch cfg.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
