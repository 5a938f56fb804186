package config

import (
	"os"
	"strconv"
	"time"

	"gocombo/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Scryfall ScryfallConfig
	AI       AIConfig
	Data     DataConfig
	Synth    SynthConfig
	Search   SearchConfig
	Server   ServerConfig
	Database DatabaseConfig
}

// ScryfallConfig holds card source settings
type ScryfallConfig struct {
	BaseURL   string
	Query     string
	PageDelay time.Duration
	Timeout   time.Duration
}

// AIConfig holds model endpoint settings. The fine-tuned adapter is served
// behind an OpenAI-compatible chat endpoint; this core only knows its URL.
type AIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	AdapterDir  string
	Timeout     time.Duration
}

// DataConfig holds dataset file locations
type DataConfig struct {
	Dir string
}

// SynthConfig holds reasoning example synthesis settings
type SynthConfig struct {
	NegativeRate        float64
	Seed                int64
	AnalysisSampleLimit int
}

// SearchConfig holds discovery run settings
type SearchConfig struct {
	MinTagCount    int // 0 means derive from the tag-count distribution
	CandidateLimit int
	TripleLimit    int
}

// ServerConfig holds the read-only API server settings
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds the optional postgres connection for discovery state
type DatabaseConfig struct {
	URL string // empty means use the JSON file store
}

// Load reads configuration from environment variables. Only formatting
// problems fail here; whether the LLM key is required depends on the
// command, so callers check RequireLLM where they need it.
func Load() (*Config, error) {
	cfg := &Config{
		Scryfall: ScryfallConfig{
			BaseURL:   getEnvOrDefault("SCRYFALL_BASE_URL", "https://api.scryfall.com"),
			Query:     getEnvOrDefault("SCRYFALL_QUERY", "legal:pauper"),
			PageDelay: getEnvDurationOrDefault("SCRYFALL_PAGE_DELAY", 100*time.Millisecond),
			Timeout:   getEnvDurationOrDefault("SCRYFALL_TIMEOUT", 30*time.Second),
		},
		AI: AIConfig{
			APIKey:      os.Getenv("OPENAI_API_KEY"),
			BaseURL:     getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:       getEnvOrDefault("LLM_MODEL", "gemma-mtg-combo-finder"),
			MaxTokens:   getEnvIntOrDefault("MAX_TOKENS", 768),
			Temperature: getEnvFloatOrDefault("TEMPERATURE", 0.3),
			AdapterDir:  getEnvOrDefault("ADAPTER_DIR", "./gemma-mtg-combo-finder"),
			Timeout:     getEnvDurationOrDefault("LLM_TIMEOUT", 120*time.Second),
		},
		Data: DataConfig{
			Dir: getEnvOrDefault("DATA_DIR", "./data"),
		},
		Synth: SynthConfig{
			NegativeRate:        getEnvFloatOrDefault("NEGATIVE_SAMPLE_RATE", 0.05),
			Seed:                int64(getEnvIntOrDefault("SYNTH_SEED", 42)),
			AnalysisSampleLimit: getEnvIntOrDefault("ANALYSIS_SAMPLE_LIMIT", 100),
		},
		Search: SearchConfig{
			MinTagCount:    getEnvIntOrDefault("MIN_TAG_COUNT", 2),
			CandidateLimit: getEnvIntOrDefault("CANDIDATE_LIMIT", 50),
			TripleLimit:    getEnvIntOrDefault("TRIPLE_LIMIT", 20),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
	}

	if cfg.Synth.NegativeRate < 0 || cfg.Synth.NegativeRate > 1 {
		return nil, errors.ConfigInvalid("NEGATIVE_SAMPLE_RATE must be in [0,1]")
	}
	if cfg.Search.CandidateLimit <= 0 {
		return nil, errors.ConfigInvalid("CANDIDATE_LIMIT must be positive")
	}

	return cfg, nil
}

// RequireLLM validates that model-dependent commands can run.
func (c *Config) RequireLLM() error {
	if c.AI.APIKey == "" {
		return errors.ConfigInvalid("OPENAI_API_KEY is required")
	}
	if c.AI.Model == "" {
		return errors.ConfigInvalid("LLM_MODEL is required")
	}
	return nil
}

// Helper functions for environment variable parsing

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
