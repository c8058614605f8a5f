// Package config loads arlo settings from a YAML file, a .env file and
// ARLO_ environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Config holds configuration for the application
type Config struct {
	DataDir     string          `mapstructure:"data_dir"`
	DBPath      string          `mapstructure:"db_path"`
	LexiconPath string          `mapstructure:"lexicon_path"` // empty uses the built-in lexicon
	LogLevel    string          `mapstructure:"log_level"`
	MetricsAddr string          `mapstructure:"metrics_addr"`
	Knowledge   KnowledgeConfig `mapstructure:"knowledge"`
	OpenAI      OpenAIConfig    `mapstructure:"openai"`
	Weekly      WeeklyConfig    `mapstructure:"weekly"`
}

type KnowledgeConfig struct {
	Banks     []string `mapstructure:"banks"`
	Dimension int      `mapstructure:"dimension"`
	Shards    int      `mapstructure:"shards"`
}

type OpenAIConfig struct {
	APIKey          string  `mapstructure:"api_key"`
	BaseURL         string  `mapstructure:"base_url"`
	EmbeddingModel  string  `mapstructure:"embedding_model"`
	CompletionModel string  `mapstructure:"completion_model"`
	Temperature     float64 `mapstructure:"temperature"`
	MaxTokens       int64   `mapstructure:"max_tokens"`
}

type WeeklyConfig struct {
	Schedule          string `mapstructure:"schedule"` // standard 5-field cron spec
	MinAccountAgeDays int    `mapstructure:"min_account_age_days"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return withDataDir(filepath.Join(home, ".arlo"))
}

// TestConfig returns a configuration for testing
func TestConfig(testDir string) *Config {
	cfg := withDataDir(testDir)
	cfg.LogLevel = "debug"
	cfg.Knowledge.Dimension = 3
	cfg.Weekly.MinAccountAgeDays = 0
	return cfg
}

func withDataDir(dataDir string) *Config {
	return &Config{
		DataDir:     dataDir,
		DBPath:      filepath.Join(dataDir, "arlo.db"),
		LogLevel:    "info",
		MetricsAddr: ":9090",
		Knowledge: KnowledgeConfig{
			Banks:     []string{filepath.Join(dataDir, "knowledge", "sleep_recovery_embeddings.json")},
			Dimension: 1536,
			Shards:    1,
		},
		OpenAI: OpenAIConfig{
			EmbeddingModel:  "text-embedding-3-small",
			CompletionModel: "gpt-4o-mini",
			Temperature:     0.7,
			MaxTokens:       200,
		},
		Weekly: WeeklyConfig{
			Schedule:          "0 9 * * 0",
			MinAccountAgeDays: 5,
		},
	}
}

// Load reads configuration from configPath, or from arlo.yaml in the
// working directory or ~/.arlo when configPath is empty. Environment
// variables override the file.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("ARLO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.BindEnv("openai.api_key", "ARLO_OPENAI_API_KEY", "OPENAI_API_KEY")

	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("arlo")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.arlo")
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg = resolvePaths(cfg)
	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.Knowledge.Dimension <= 0 {
		return fmt.Errorf("knowledge.dimension must be positive, got %d", c.Knowledge.Dimension)
	}
	if c.Knowledge.Shards < 1 {
		return fmt.Errorf("knowledge.shards must be at least 1, got %d", c.Knowledge.Shards)
	}
	if c.Weekly.MinAccountAgeDays < 0 {
		return fmt.Errorf("weekly.min_account_age_days cannot be negative")
	}
	if _, err := cron.ParseStandard(c.Weekly.Schedule); err != nil {
		return fmt.Errorf("invalid weekly.schedule %q: %w", c.Weekly.Schedule, err)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return nil
}

// Level returns the configured log level, defaulting to info.
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// EnsureDataDir creates the data directory if it doesn't exist
func (c *Config) EnsureDataDir() error {
	return os.MkdirAll(c.DataDir, 0755)
}

func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()
	v.SetDefault("data_dir", defaults.DataDir)
	v.SetDefault("db_path", "")
	v.SetDefault("lexicon_path", "")
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("metrics_addr", defaults.MetricsAddr)
	v.SetDefault("knowledge.banks", []string{})
	v.SetDefault("knowledge.dimension", defaults.Knowledge.Dimension)
	v.SetDefault("knowledge.shards", defaults.Knowledge.Shards)
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.embedding_model", defaults.OpenAI.EmbeddingModel)
	v.SetDefault("openai.completion_model", defaults.OpenAI.CompletionModel)
	v.SetDefault("openai.temperature", defaults.OpenAI.Temperature)
	v.SetDefault("openai.max_tokens", defaults.OpenAI.MaxTokens)
	v.SetDefault("weekly.schedule", defaults.Weekly.Schedule)
	v.SetDefault("weekly.min_account_age_days", defaults.Weekly.MinAccountAgeDays)
}

// resolvePaths expands ~ and fills paths that derive from the data dir.
func resolvePaths(cfg Config) Config {
	cfg.DataDir = expandHome(cfg.DataDir)
	cfg.LexiconPath = expandHome(cfg.LexiconPath)

	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.DataDir, "arlo.db")
	}
	cfg.DBPath = expandHome(cfg.DBPath)

	if len(cfg.Knowledge.Banks) == 0 {
		cfg.Knowledge.Banks = withDataDir(cfg.DataDir).Knowledge.Banks
	}
	for i, bank := range cfg.Knowledge.Banks {
		cfg.Knowledge.Banks[i] = expandHome(bank)
	}
	return cfg
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return home + path[1:]
}
