// Package config loads recall configuration from the environment with an
// optional YAML file layer.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Provider names shared by the LLM and embedding configuration.
const (
	ProviderOllama    = "ollama"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config holds all configuration values.
type Config struct {
	// SurrealDB connection
	SurrealDBURL       string `yaml:"surrealdb_url"`
	SurrealDBNamespace string `yaml:"surrealdb_namespace"`
	SurrealDBDatabase  string `yaml:"surrealdb_database"`
	SurrealDBUser      string `yaml:"surrealdb_user"`
	SurrealDBPass      string `yaml:"surrealdb_pass"`
	SurrealDBAuthLevel string `yaml:"surrealdb_auth_level"`

	// Generation
	LLMProvider string `yaml:"llm_provider"`
	LLMModel    string `yaml:"llm_model"`

	// Embedding
	EmbedProvider  string `yaml:"embed_provider"`
	EmbedModel     string `yaml:"embed_model"`
	EmbedDimension int    `yaml:"embed_dimension"`

	// Provider credentials / endpoints
	OllamaHost      string `yaml:"ollama_host"`
	OpenAIAPIKey    string `yaml:"openai_api_key"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`

	// Pipeline tuning
	RetrievalK     int           `yaml:"retrieval_k"`
	MemoryMaxTurns int           `yaml:"memory_max_turns"`
	QueryTimeout   time.Duration `yaml:"-"`

	// Server
	ServerPort string `yaml:"server_port"`

	// Logging
	LogFile  string     `yaml:"log_file"`
	LogLevel slog.Level `yaml:"-"`
}

// Load reads configuration: defaults, then the optional YAML file named by
// RECALL_CONFIG, then RECALL_* environment variables. Later layers win.
func Load() Config {
	cfg := defaults()

	if path := os.Getenv("RECALL_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			slog.Warn("config file ignored", "path", path, "error", err)
		}
	}

	cfg.loadEnv()
	return cfg
}

func defaults() Config {
	return Config{
		SurrealDBURL:       "ws://localhost:8000/rpc",
		SurrealDBNamespace: "recall",
		SurrealDBDatabase:  "conversations",
		SurrealDBUser:      "root",
		SurrealDBPass:      "root",
		SurrealDBAuthLevel: "root",

		LLMProvider: ProviderOllama,
		LLMModel:    "llama3.1",

		EmbedProvider:  ProviderOllama,
		EmbedModel:     "all-minilm:l6-v2",
		EmbedDimension: 384,

		OllamaHost: "http://localhost:11434",

		RetrievalK:     4,
		MemoryMaxTurns: 50,
		QueryTimeout:   60 * time.Second,

		ServerPort: "8585",

		LogFile:  "/tmp/recall.log",
		LogLevel: slog.LevelInfo,
	}
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	// Duration and level fields take human-readable strings ("60s",
	// "debug"), so they decode separately from the typed struct.
	var extra struct {
		QueryTimeout string `yaml:"query_timeout"`
		LogLevel     string `yaml:"log_level"`
	}
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	if extra.QueryTimeout != "" {
		d, err := time.ParseDuration(extra.QueryTimeout)
		if err != nil {
			return fmt.Errorf("parse query_timeout: %w", err)
		}
		c.QueryTimeout = d
	}
	if extra.LogLevel != "" {
		c.LogLevel = parseLogLevel(extra.LogLevel)
	}
	return nil
}

func (c *Config) loadEnv() {
	setEnv(&c.SurrealDBURL, "RECALL_SURREALDB_URL")
	setEnv(&c.SurrealDBNamespace, "RECALL_SURREALDB_NAMESPACE")
	setEnv(&c.SurrealDBDatabase, "RECALL_SURREALDB_DATABASE")
	setEnv(&c.SurrealDBUser, "RECALL_SURREALDB_USER")
	setEnv(&c.SurrealDBPass, "RECALL_SURREALDB_PASS")
	setEnv(&c.SurrealDBAuthLevel, "RECALL_SURREALDB_AUTH_LEVEL")

	setEnv(&c.LLMProvider, "RECALL_LLM_PROVIDER")
	setEnv(&c.LLMModel, "RECALL_LLM_MODEL")

	setEnv(&c.EmbedProvider, "RECALL_EMBED_PROVIDER")
	setEnv(&c.EmbedModel, "RECALL_EMBED_MODEL")
	setEnvInt(&c.EmbedDimension, "RECALL_EMBED_DIMENSION")

	setEnv(&c.OllamaHost, "OLLAMA_HOST")
	setEnv(&c.OpenAIAPIKey, "OPENAI_API_KEY")
	setEnv(&c.AnthropicAPIKey, "ANTHROPIC_API_KEY")

	setEnvInt(&c.RetrievalK, "RECALL_RETRIEVAL_K")
	setEnvInt(&c.MemoryMaxTurns, "RECALL_MEMORY_MAX_TURNS")
	setEnvDuration(&c.QueryTimeout, "RECALL_QUERY_TIMEOUT")

	setEnv(&c.ServerPort, "RECALL_SERVER_PORT")

	setEnv(&c.LogFile, "RECALL_LOG_FILE")
	if v := os.Getenv("RECALL_LOG_LEVEL"); v != "" {
		c.LogLevel = parseLogLevel(v)
	}
}

func setEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setEnvInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setEnvDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
