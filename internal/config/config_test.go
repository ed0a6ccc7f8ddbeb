package config

import (
	"os"
	"path/filepath"
	"testing"
)

// isolate points HOME at a temp dir and clears the env vars Load reads.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{
		"RIOT_API_KEY", "ANTHROPIC_API_KEY",
		"LOLWRAPPED_RIOT_API_KEY", "LOLWRAPPED_ANTHROPIC_API_KEY",
		"LOLWRAPPED_REGION", "LOLWRAPPED_DB", "LOLWRAPPED_REDIS_URL", "LOLWRAPPED_LOG_LEVEL",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	return home
}

func TestLoad_Defaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load(New())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Region != "EUW" {
		t.Errorf("region: got %q, want EUW", cfg.Region)
	}
	if want := filepath.Join(home, ".lolwrapped", "wrapped.db"); cfg.DBPath != want {
		t.Errorf("db: got %q, want %q", cfg.DBPath, want)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("log level: got %q", cfg.LogLevel)
	}
	if cfg.RedisURL != "" || cfg.RiotAPIKey != "" {
		t.Errorf("expected empty redis/key, got %+v", cfg)
	}
	if _, err := cfg.RequireRiotKey(); err == nil {
		t.Error("expected RequireRiotKey error with no key")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("RIOT_API_KEY", "RGAPI-plain")
	t.Setenv("LOLWRAPPED_REGION", "kr")
	t.Setenv("LOLWRAPPED_REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load(New())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RiotAPIKey != "RGAPI-plain" {
		t.Errorf("key: got %q", cfg.RiotAPIKey)
	}
	if cfg.Region != "KR" {
		t.Errorf("region: got %q, want KR", cfg.Region)
	}
	if cfg.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("redis: got %q", cfg.RedisURL)
	}
}

func TestLoad_PrefixedKeyWins(t *testing.T) {
	isolate(t)
	t.Setenv("RIOT_API_KEY", "RGAPI-plain")
	t.Setenv("LOLWRAPPED_RIOT_API_KEY", "RGAPI-prefixed")

	cfg, err := Load(New())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RiotAPIKey != "RGAPI-prefixed" {
		t.Errorf("key: got %q, want prefixed value", cfg.RiotAPIKey)
	}
}

func TestLoad_KeyFileFallback(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, ".lolwrapped")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "riot_api_key"), []byte("  RGAPI-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(New())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	key, err := cfg.RequireRiotKey()
	if err != nil || key != "RGAPI-file" {
		t.Errorf("key: got %q, %v", key, err)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, ".lolwrapped")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	yaml := "region: na\nlog_level: debug\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(New())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Region != "NA" || cfg.LogLevel != "debug" {
		t.Errorf("got region=%q level=%q", cfg.Region, cfg.LogLevel)
	}
}

func TestLoadDotEnv(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("RIOT_API_KEY=RGAPI-dotenv\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("RIOT_API_KEY") })

	cfg, err := Load(New())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RiotAPIKey != "RGAPI-dotenv" {
		t.Errorf("key: got %q", cfg.RiotAPIKey)
	}

	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("missing .env should be ignored, got %v", err)
	}
}
