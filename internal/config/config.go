package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the assistant API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Assistant AssistantConfig `yaml:"assistant"`
	Providers ProvidersConfig `yaml:"providers"`
	Cache     CacheConfig     `yaml:"cache"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// AssistantConfig holds the query pipeline settings.
type AssistantConfig struct {
	Provider   string           `yaml:"provider"` // openai, gateway (default: openai)
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	IndexName  string           `yaml:"index_name"`
	MatchKMax  int              `yaml:"match_k_max"`
	Timeouts   TimeoutsConfig   `yaml:"timeouts"`
}

// EmbeddingConfig holds the embedding model settings.
type EmbeddingConfig struct {
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// GenerationConfig holds the generation model settings.
type GenerationConfig struct {
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float32 `yaml:"temperature"`
}

// TimeoutsConfig bounds each external call of the pipeline. A timeout is
// treated as that stage's failure mode: degrade for retrieval/lookup, fatal
// for embedding/generation.
type TimeoutsConfig struct {
	EmbedSec    int `yaml:"embed_sec"`
	RetrieveSec int `yaml:"retrieve_sec"`
	LookupSec   int `yaml:"lookup_sec"`
	GenerateSec int `yaml:"generate_sec"`
}

// ProvidersConfig holds external inference provider settings.
type ProvidersConfig struct {
	OpenAI  OpenAIConfig  `yaml:"openai"`
	Gateway GatewayConfig `yaml:"gateway"`
}

// OpenAIConfig holds settings for any OpenAI-compatible endpoint.
// MaxRetries defaults to zero: retrying generation changes cost and latency
// semantics, so the knob is explicit and off unless configured.
type OpenAIConfig struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	MaxRetries     int    `yaml:"max_retries"`
	InitialDelayMS int    `yaml:"initial_delay_ms"`
}

// GatewayConfig holds settings for the in-house inference gateway, whose
// response envelope has drifted across versions.
type GatewayConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// CacheConfig holds query-embedding cache settings.
type CacheConfig struct {
	Enabled  bool `yaml:"enabled"`
	TTLHours int  `yaml:"ttl_hours"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Assistant.Provider == "" {
		c.Assistant.Provider = "openai"
	}
	if c.Assistant.Embedding.Model == "" {
		c.Assistant.Embedding.Model = "text-embedding-3-small"
	}
	if c.Assistant.Embedding.Dimensions <= 0 {
		c.Assistant.Embedding.Dimensions = 1536
	}
	if c.Assistant.Generation.Model == "" {
		c.Assistant.Generation.Model = "gpt-4o-mini"
	}
	if c.Assistant.Generation.MaxTokens <= 0 {
		c.Assistant.Generation.MaxTokens = 512
	}
	if c.Assistant.Generation.Temperature <= 0 {
		c.Assistant.Generation.Temperature = 0.2
	}
	if c.Assistant.IndexName == "" {
		c.Assistant.IndexName = "idx:listings"
	}
	if c.Assistant.MatchKMax <= 0 {
		c.Assistant.MatchKMax = 12
	}
	if c.Assistant.Timeouts.EmbedSec <= 0 {
		c.Assistant.Timeouts.EmbedSec = 10
	}
	if c.Assistant.Timeouts.RetrieveSec <= 0 {
		c.Assistant.Timeouts.RetrieveSec = 5
	}
	if c.Assistant.Timeouts.LookupSec <= 0 {
		c.Assistant.Timeouts.LookupSec = 5
	}
	if c.Assistant.Timeouts.GenerateSec <= 0 {
		c.Assistant.Timeouts.GenerateSec = 30
	}
	if c.Cache.TTLHours <= 0 {
		c.Cache.TTLHours = 24
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	switch c.Assistant.Provider {
	case "openai", "gateway":
		// ok
	default:
		return fmt.Errorf(
			"assistant.provider must be \"openai\" or \"gateway\", got %q",
			c.Assistant.Provider,
		)
	}
	if c.Assistant.Provider == "gateway" && c.Providers.Gateway.BaseURL == "" {
		return fmt.Errorf("providers.gateway.base_url is required for the gateway provider")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
