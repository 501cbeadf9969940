package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfigFile(t *testing.T, content string) {
	t.Helper()
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config", "test.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
}

func TestLoad(t *testing.T) {
	t.Setenv("TEST_REDIS_ADDR", "redis-1:6379")
	writeConfigFile(t, `
http:
  port: 8080
database:
  addrs:
    - ${TEST_REDIS_ADDR}
assistant:
  provider: openai
  match_k_max: 20
providers:
  openai:
    api_key: ${TEST_OPENAI_KEY:-fallback-key}
`)

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.HTTP.Port != 8080 {
		t.Errorf("got port %d", cfg.HTTP.Port)
	}
	if len(cfg.Database.Addrs) != 1 || cfg.Database.Addrs[0] != "redis-1:6379" {
		t.Errorf("env expansion failed: %v", cfg.Database.Addrs)
	}
	if cfg.Providers.OpenAI.APIKey != "fallback-key" {
		t.Errorf("default expansion failed: %q", cfg.Providers.OpenAI.APIKey)
	}
	if cfg.Assistant.MatchKMax != 20 {
		t.Errorf("got match_k_max %d", cfg.Assistant.MatchKMax)
	}
	// Defaults fill the rest.
	if cfg.Assistant.Embedding.Model != "text-embedding-3-small" || cfg.Assistant.Embedding.Dimensions != 1536 {
		t.Errorf("embedding defaults missing: %+v", cfg.Assistant.Embedding)
	}
	if cfg.Assistant.IndexName != "idx:listings" {
		t.Errorf("got index name %q", cfg.Assistant.IndexName)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	if _, err := Load("nonexistent"); err == nil {
		t.Fatal("expected error")
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.Assistant.Provider != "openai" {
		t.Errorf("got provider %q", cfg.Assistant.Provider)
	}
	if cfg.Assistant.Generation.Model != "gpt-4o-mini" || cfg.Assistant.Generation.MaxTokens != 512 {
		t.Errorf("generation defaults missing: %+v", cfg.Assistant.Generation)
	}
	if cfg.Assistant.MatchKMax != 12 {
		t.Errorf("got match_k_max %d", cfg.Assistant.MatchKMax)
	}
	if cfg.Assistant.Timeouts.GenerateSec != 30 || cfg.Assistant.Timeouts.EmbedSec != 10 {
		t.Errorf("timeout defaults missing: %+v", cfg.Assistant.Timeouts)
	}
	if cfg.Cache.TTLHours != 24 {
		t.Errorf("got ttl %d", cfg.Cache.TTLHours)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
	}
	valid.ApplyDefaults()
	if err := valid.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero port", func(c *Config) { c.HTTP.Port = 0 }, "http.port"},
		{"port too large", func(c *Config) { c.HTTP.Port = 70000 }, "http.port"},
		{"no database addrs", func(c *Config) { c.Database.Addrs = nil }, "database.addrs"},
		{"unknown provider", func(c *Config) { c.Assistant.Provider = "llama" }, "assistant.provider"},
		{"gateway without base url", func(c *Config) { c.Assistant.Provider = "gateway" }, "gateway.base_url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_SET_VAR", "value")

	got := string(expandEnvVars([]byte("a: ${TEST_SET_VAR}\nb: ${TEST_UNSET_VAR:-fallback}\nc: ${TEST_UNSET_VAR}")))
	want := "a: value\nb: fallback\nc: "
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if got := GetEnv(); got != "local" {
		t.Errorf("got %q", got)
	}
	t.Setenv("ENV", "prod")
	if got := GetEnv(); got != "prod" {
		t.Errorf("got %q", got)
	}
}
