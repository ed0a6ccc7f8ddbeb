package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration for the lolwrapped CLI.
type Config struct {
	RiotAPIKey      string `mapstructure:"riot_api_key"`
	AnthropicAPIKey string `mapstructure:"anthropic_api_key"`
	Region          string `mapstructure:"region"`
	DBPath          string `mapstructure:"db"`
	RedisURL        string `mapstructure:"redis_url"`
	LogLevel        string `mapstructure:"log_level"`
}

const envPrefix = "LOLWRAPPED"

// Dir returns ~/.lolwrapped, or "." if the home directory is unknown.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".lolwrapped")
}

// DefaultDBPath is the SQLite file used when --db is not given.
func DefaultDBPath() string {
	return filepath.Join(Dir(), "wrapped.db")
}

// New returns a viper instance with defaults and env bindings applied.
// Every key is readable as LOLWRAPPED_<KEY>; the API keys also accept the
// bare RIOT_API_KEY / ANTHROPIC_API_KEY names.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("region", "EUW")
	v.SetDefault("db", DefaultDBPath())
	v.SetDefault("redis_url", "")
	v.SetDefault("log_level", "info")

	_ = v.BindEnv("riot_api_key", envPrefix+"_RIOT_API_KEY", "RIOT_API_KEY")
	_ = v.BindEnv("anthropic_api_key", envPrefix+"_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(Dir())
	return v
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads the optional config file and returns the merged configuration.
// When no Riot key is configured it falls back to ~/.lolwrapped/riot_api_key.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Region = strings.ToUpper(strings.TrimSpace(cfg.Region))

	if cfg.RiotAPIKey == "" {
		cfg.RiotAPIKey = readKeyFile("riot_api_key")
	}
	if cfg.AnthropicAPIKey == "" {
		cfg.AnthropicAPIKey = readKeyFile("anthropic_api_key")
	}
	return &cfg, nil
}

// RequireRiotKey returns the Riot API key or an error telling the user where
// to put one.
func (c *Config) RequireRiotKey() (string, error) {
	if c.RiotAPIKey == "" {
		return "", fmt.Errorf("Riot API key not found: set RIOT_API_KEY or create %s",
			filepath.Join(Dir(), "riot_api_key"))
	}
	return c.RiotAPIKey, nil
}

func readKeyFile(name string) string {
	data, err := os.ReadFile(filepath.Join(Dir(), name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
