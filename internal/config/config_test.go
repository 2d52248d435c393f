package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/darkhanakh/claude-context/fusion"
	"github.com/darkhanakh/claude-context/tokenize"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CLAUDE_CONTEXT_CONFIG_FILE",
		"CLAUDE_CONTEXT_ENCODER_K1",
		"CLAUDE_CONTEXT_ENCODER_B",
		"CLAUDE_CONTEXT_ENCODER_MIN_DF",
		"CLAUDE_CONTEXT_ENCODER_MAX_DF_RATIO",
		"CLAUDE_CONTEXT_ENCODER_SUBLINEAR_TF",
		"CLAUDE_CONTEXT_ENCODER_TOKEN_MODE",
		"CLAUDE_CONTEXT_RERANK_STRATEGY",
		"CLAUDE_CONTEXT_RERANK_K",
		"CLAUDE_CONTEXT_RERANK_WEIGHTS",
		"CLAUDE_CONTEXT_RERANK_PROVIDER_ENABLED",
		"CLAUDE_CONTEXT_RERANK_PROVIDER_BASE_URL",
		"CLAUDE_CONTEXT_RERANK_PROVIDER_API_KEY",
		"CLAUDE_CONTEXT_RERANK_PROVIDER_MODEL",
		"CLAUDE_CONTEXT_RERANK_PROVIDER_TIMEOUT",
		"CLAUDE_CONTEXT_QDRANT_HOST",
		"CLAUDE_CONTEXT_QDRANT_PORT",
		"CLAUDE_CONTEXT_QDRANT_API_KEY",
		"CLAUDE_CONTEXT_QDRANT_USE_TLS",
		"CLAUDE_CONTEXT_QDRANT_COLLECTION",
		"CLAUDE_CONTEXT_QDRANT_REQUEST_TIMEOUT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestDefault_MatchesSpecDefaults(t *testing.T) {
	cfg := Default()

	if cfg.Encoder.K1 != DefaultK1 || cfg.Encoder.B != DefaultB {
		t.Fatalf("encoder defaults = %+v", cfg.Encoder)
	}
	if cfg.Encoder.MinDF != 1 || cfg.Encoder.MaxDFRatio != 0.85 {
		t.Fatalf("encoder df defaults = %+v", cfg.Encoder)
	}
	if cfg.Encoder.TokenMode != tokenize.Code {
		t.Fatalf("token mode default = %q, want code", cfg.Encoder.TokenMode)
	}
	if cfg.Rerank.Strategy != fusion.RRF {
		t.Fatalf("rerank strategy default = %q, want rrf", cfg.Rerank.Strategy)
	}
	if cfg.Rerank.Params.K != DefaultRRFK {
		t.Fatalf("rrf k default = %d, want %d", cfg.Rerank.Params.K, DefaultRRFK)
	}
	if cfg.Rerank.Provider.Enabled {
		t.Fatalf("provider should be disabled by default")
	}
	if cfg.Qdrant.Port != DefaultQdrantPort {
		t.Fatalf("qdrant port default = %d, want %d", cfg.Qdrant.Port, DefaultQdrantPort)
	}
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("CLAUDE_CONTEXT_QDRANT_HOST", "qdrant.internal")
	t.Setenv("CLAUDE_CONTEXT_ENCODER_K1", "2.0")
	t.Setenv("CLAUDE_CONTEXT_RERANK_STRATEGY", "weighted")
	t.Setenv("CLAUDE_CONTEXT_RERANK_WEIGHTS", "0.7, 0.3")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Qdrant.Host != "qdrant.internal" {
		t.Errorf("host = %q", cfg.Qdrant.Host)
	}
	if cfg.Encoder.K1 != 2.0 {
		t.Errorf("k1 = %v, want 2.0", cfg.Encoder.K1)
	}
	if cfg.Rerank.Strategy != fusion.Weighted {
		t.Errorf("strategy = %q, want weighted", cfg.Rerank.Strategy)
	}
	if len(cfg.Rerank.Params.Weights) != 2 || cfg.Rerank.Params.Weights[0] != 0.7 {
		t.Errorf("weights = %v", cfg.Rerank.Params.Weights)
	}
}

func TestLoad_FileThenEnvPrecedence(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("qdrant:\n  host: file-host\n  port: 7000\nencoder:\n  k1: 1.5\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv("CLAUDE_CONTEXT_CONFIG_FILE", path)
	t.Setenv("CLAUDE_CONTEXT_QDRANT_PORT", "9999") // env wins over file

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Qdrant.Host != "file-host" {
		t.Errorf("host = %q, want file-host", cfg.Qdrant.Host)
	}
	if cfg.Qdrant.Port != 9999 {
		t.Errorf("port = %d, want env override 9999", cfg.Qdrant.Port)
	}
	if cfg.Encoder.K1 != 1.5 {
		t.Errorf("k1 = %v, want file value 1.5", cfg.Encoder.K1)
	}
}

func TestLoad_MissingHostFailsValidation(t *testing.T) {
	clearEnv(t)
	if _, err := Load(context.Background()); err == nil {
		t.Fatal("expected validation error for missing qdrant host")
	}
}

func TestValidate_RejectsUnknownTokenMode(t *testing.T) {
	cfg := Default()
	cfg.Qdrant.Host = "localhost"
	cfg.Encoder.TokenMode = "bogus"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid token_mode")
	}
}

func TestValidate_RejectsProviderEnabledWithoutBaseURL(t *testing.T) {
	cfg := Default()
	cfg.Qdrant.Host = "localhost"
	cfg.Rerank.Provider.Enabled = true
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for enabled provider without base_url")
	}
}

func TestValidate_AcceptsWellFormedConfig(t *testing.T) {
	cfg := Default()
	cfg.Qdrant.Host = "localhost"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
