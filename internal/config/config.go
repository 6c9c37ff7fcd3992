// Package config provides the configuration schema and loader for the
// loreweave dialogue server.
package config

import (
	"time"

	"github.com/fennwald/loreweave/internal/npc"
)

// LogLevel controls log verbosity for the loreweave server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure for loreweave. It is typically
// loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server     ServerConfig    `yaml:"server"`
	LLM        LLMConfig       `yaml:"llm"`
	Embeddings ProviderEntry   `yaml:"embeddings"`
	Index      IndexConfig     `yaml:"index"`
	World      WorldDataConfig `yaml:"world"`
	Trace      TraceConfig     `yaml:"trace"`
	NPCs       []npc.NPC       `yaml:"npcs"`
}

// ServerConfig holds network and logging settings.
type ServerConfig struct {
	// ListenAddr is the TCP address the trace viewer and health endpoints
	// listen on (e.g., ":8765").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// LLMConfig selects and configures the generative text backend.
type LLMConfig struct {
	// Backend selects the backend family: "anyllm" for hosted providers
	// behind the any-llm gateway, "lmstudio" for a local LM Studio server.
	Backend string `yaml:"backend"`

	// Provider is the hosted provider name when backend is "anyllm"
	// (e.g., "openai", "anthropic", "ollama").
	Provider string `yaml:"provider"`

	// APIKey authenticates against hosted providers.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the backend's default endpoint.
	BaseURL string `yaml:"base_url"`

	// Model selects the generation model.
	Model string `yaml:"model"`

	// Timeout bounds a single generation call. Zero uses the backend default.
	Timeout time.Duration `yaml:"timeout"`

	// Fallback lists additional generation backends, tried in order when the
	// primary fails or its circuit breaker is open. Fallback entries may not
	// declare fallbacks of their own.
	Fallback []LLMConfig `yaml:"fallback"`
}

// ProviderEntry is the common configuration block for pluggable providers.
type ProviderEntry struct {
	// Name selects the provider implementation (e.g., "openai", "ollama").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API if any.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the provider.
	Model string `yaml:"model"`
}

// IndexConfig configures the semantic-similarity index backing fact search.
type IndexConfig struct {
	// PostgresDSN is the connection string of the pgvector-enabled database.
	// Empty disables semantic search.
	PostgresDSN string `yaml:"postgres_dsn"`
}

// WorldDataConfig points at the static world data files loaded at startup.
type WorldDataConfig struct {
	EntitiesPath string `yaml:"entities_path"`
	EdgesPath    string `yaml:"edges_path"`
	FactsPath    string `yaml:"facts_path"`
}

// TraceConfig controls the pipeline trace recorder.
type TraceConfig struct {
	// Enabled turns trace recording on.
	Enabled bool `yaml:"enabled"`

	// OutputDir receives the trace.jsonl append log. Empty keeps the trace
	// in memory only.
	OutputDir string `yaml:"output_dir"`
}
