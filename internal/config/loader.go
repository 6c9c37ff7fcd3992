package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidLLMBackends lists the recognised llm.backend values.
var ValidLLMBackends = []string{"anyllm", "lmstudio"}

// ValidAnyLLMProviders lists known hosted provider names behind the anyllm
// backend. Used by [Validate] to warn about likely typos.
var ValidAnyLLMProviders = []string{"openai", "anthropic", "ollama", "gemini", "deepseek", "mistral", "groq", "llamacpp", "llamafile"}

// ValidEmbeddingsProviders lists known embeddings provider names.
var ValidEmbeddingsProviders = []string{"openai", "ollama"}

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	errs = append(errs, validateLLM("llm", cfg.LLM)...)
	for i, fb := range cfg.LLM.Fallback {
		prefix := fmt.Sprintf("llm.fallback[%d]", i)
		errs = append(errs, validateLLM(prefix, fb)...)
		if len(fb.Fallback) > 0 {
			errs = append(errs, fmt.Errorf("%s.fallback is not allowed; fallbacks cannot nest", prefix))
		}
	}

	if cfg.Embeddings.Name != "" && !slices.Contains(ValidEmbeddingsProviders, cfg.Embeddings.Name) {
		slog.Warn("unknown embeddings provider name, may be a typo",
			"name", cfg.Embeddings.Name,
			"known", ValidEmbeddingsProviders,
		)
	}
	if cfg.Index.PostgresDSN != "" && cfg.Embeddings.Name == "" {
		errs = append(errs, errors.New("index.postgres_dsn is set but embeddings.name is empty; semantic search needs an embeddings provider"))
	}
	if cfg.Index.PostgresDSN == "" {
		slog.Warn("index.postgres_dsn is empty; semantic fact search is disabled")
	}

	if cfg.World.EntitiesPath == "" {
		errs = append(errs, errors.New("world.entities_path is required"))
	}
	if cfg.World.FactsPath == "" {
		errs = append(errs, errors.New("world.facts_path is required"))
	}

	if len(cfg.NPCs) == 0 {
		errs = append(errs, errors.New("at least one NPC profile is required"))
	}
	npcNamesSeen := make(map[string]int, len(cfg.NPCs))
	for i, profile := range cfg.NPCs {
		prefix := fmt.Sprintf("npcs[%d]", i)
		if profile.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
			continue
		}
		if prev, ok := npcNamesSeen[profile.Name]; ok {
			errs = append(errs, fmt.Errorf("%s.name %q is a duplicate of npcs[%d]", prefix, profile.Name, prev))
		}
		npcNamesSeen[profile.Name] = i
	}

	return errors.Join(errs...)
}

// validateLLM checks one generation backend block. prefix names the block in
// error messages ("llm", "llm.fallback[0]").
func validateLLM(prefix string, cfg LLMConfig) []error {
	var errs []error

	if cfg.Backend == "" {
		errs = append(errs, fmt.Errorf("%s.backend is required", prefix))
	} else if !slices.Contains(ValidLLMBackends, cfg.Backend) {
		errs = append(errs, fmt.Errorf("%s.backend %q is invalid; valid values: anyllm, lmstudio", prefix, cfg.Backend))
	}
	if cfg.Backend == "anyllm" {
		if cfg.Provider == "" {
			errs = append(errs, fmt.Errorf("%s.provider is required when %s.backend is anyllm", prefix, prefix))
		} else if !slices.Contains(ValidAnyLLMProviders, cfg.Provider) {
			slog.Warn("unknown llm provider name, may be a typo",
				"name", cfg.Provider,
				"known", ValidAnyLLMProviders,
			)
		}
	}
	if cfg.Model == "" {
		errs = append(errs, fmt.Errorf("%s.model is required", prefix))
	}
	if cfg.Timeout < 0 {
		errs = append(errs, fmt.Errorf("%s.timeout %s is negative", prefix, cfg.Timeout))
	}
	return errs
}
