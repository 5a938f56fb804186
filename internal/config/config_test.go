package config

import (
	"testing"
	"time"

	"gocombo/internal/errors"
)

func TestLoadDefaults(t *testing.T) {
	// The test process may inherit pipeline settings from the caller's
	// shell; blank them so defaults are actually exercised.
	for _, key := range []string{
		"SCRYFALL_BASE_URL",
		"SCRYFALL_QUERY",
		"NEGATIVE_SAMPLE_RATE",
		"SYNTH_SEED",
		"CANDIDATE_LIMIT",
		"PORT",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with empty env: %v", err)
	}

	if cfg.Scryfall.BaseURL != "https://api.scryfall.com" {
		t.Errorf("unexpected base URL %q", cfg.Scryfall.BaseURL)
	}
	if cfg.Scryfall.Query != "legal:pauper" {
		t.Errorf("unexpected query %q", cfg.Scryfall.Query)
	}
	if cfg.Synth.NegativeRate != 0.05 {
		t.Errorf("unexpected negative rate %f", cfg.Synth.NegativeRate)
	}
	if cfg.Synth.Seed != 42 {
		t.Errorf("unexpected seed %d", cfg.Synth.Seed)
	}
	if cfg.Search.CandidateLimit != 50 {
		t.Errorf("unexpected candidate limit %d", cfg.Search.CandidateLimit)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("unexpected port %q", cfg.Server.Port)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SCRYFALL_QUERY", "legal:pauper type:creature")
	t.Setenv("NEGATIVE_SAMPLE_RATE", "0.10")
	t.Setenv("MAX_TOKENS", "512")
	t.Setenv("SCRYFALL_PAGE_DELAY", "250ms")
	t.Setenv("DATABASE_URL", "postgres://localhost/combos")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load(): %v", err)
	}

	if cfg.Scryfall.Query != "legal:pauper type:creature" {
		t.Errorf("query override not applied: %q", cfg.Scryfall.Query)
	}
	if cfg.Synth.NegativeRate != 0.10 {
		t.Errorf("rate override not applied: %f", cfg.Synth.NegativeRate)
	}
	if cfg.AI.MaxTokens != 512 {
		t.Errorf("max tokens override not applied: %d", cfg.AI.MaxTokens)
	}
	if cfg.Scryfall.PageDelay != 250*time.Millisecond {
		t.Errorf("page delay override not applied: %s", cfg.Scryfall.PageDelay)
	}
	if cfg.Database.URL != "postgres://localhost/combos" {
		t.Errorf("database URL not applied: %q", cfg.Database.URL)
	}
}

func TestLoadMalformedNumberFallsBack(t *testing.T) {
	t.Setenv("MAX_TOKENS", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load(): %v", err)
	}
	if cfg.AI.MaxTokens != 768 {
		t.Errorf("expected the default on malformed input, got %d", cfg.AI.MaxTokens)
	}
}

func TestLoadRejectsOutOfRangeRate(t *testing.T) {
	t.Setenv("NEGATIVE_SAMPLE_RATE", "1.5")

	_, err := Load()
	if err == nil {
		t.Fatal("expected an error for a rate above 1")
	}
	if errors.GetCode(err) != errors.CodeConfigInvalid {
		t.Errorf("expected CONFIG_INVALID, got %s", errors.GetCode(err))
	}
}

func TestRequireLLM(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load(): %v", err)
	}
	if err := cfg.RequireLLM(); err == nil {
		t.Error("expected RequireLLM to fail without an API key")
	}

	cfg.AI.APIKey = "sk-test"
	if err := cfg.RequireLLM(); err != nil {
		t.Errorf("expected RequireLLM to pass with a key: %v", err)
	}
}
