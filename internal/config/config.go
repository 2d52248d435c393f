// Package config loads the configuration surface of spec.md §6: the
// BM25 encoder parameters, the rank-fusion/rerank strategy, and the
// Qdrant connection parameters needed to construct a vectorstore/qdrant
// Store. Precedence is environment variables > an optional YAML file >
// built-in defaults.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/darkhanakh/claude-context/fusion"
	"github.com/darkhanakh/claude-context/tokenize"
)

// Config is the complete configuration surface.
type Config struct {
	Encoder EncoderConfig `json:"encoder" yaml:"encoder"`
	Rerank  RerankConfig  `json:"rerank"  yaml:"rerank"`
	Qdrant  QdrantConfig  `json:"qdrant"  yaml:"qdrant"`
}

// EncoderConfig mirrors sparse.Params, duplicated here (rather than
// embedded) so this package does not force every caller that only
// wants Qdrant/Rerank config to import sparse/tokenize.
type EncoderConfig struct {
	K1          float64       `json:"k1"           yaml:"k1"`
	B           float64       `json:"b"             yaml:"b"`
	MinDF       int           `json:"min_df"        yaml:"min_df"`
	MaxDFRatio  float64       `json:"max_df_ratio"  yaml:"max_df_ratio"`
	SublinearTF bool          `json:"sublinear_tf"  yaml:"sublinear_tf"`
	TokenMode   tokenize.Mode `json:"token_mode"    yaml:"token_mode"`
}

// RerankConfig configures both the fusion strategy and the optional
// HTTP reranker provider.
type RerankConfig struct {
	Strategy fusion.Strategy `json:"strategy" yaml:"strategy"`
	Params   RerankParams    `json:"params"   yaml:"params"`

	Provider ProviderConfig `json:"provider" yaml:"provider"`
}

// RerankParams carries the tunables of fusion.Params in a config-file
// friendly shape (fusion.Params.Weights is positional by channel index;
// here it is just a parallel float64 list in the same order).
type RerankParams struct {
	K       int       `json:"k"       yaml:"k"`
	Weights []float64 `json:"weights" yaml:"weights"`
}

// ProviderConfig configures the rerank/httprerank.Client. Enabled is
// false by default, so no reranker is wired and the dispatcher runs
// fusion-only; setting Enabled also requires a non-empty BaseURL
// (see Validate).
type ProviderConfig struct {
	Enabled bool          `json:"enabled"  yaml:"enabled"`
	BaseURL string        `json:"base_url" yaml:"base_url"`
	APIKey  string        `json:"api_key"  yaml:"api_key"`
	Model   string        `json:"model"    yaml:"model"`
	Timeout time.Duration `json:"timeout"  yaml:"timeout"`
}

// QdrantConfig configures the vectorstore/qdrant.Store connection.
type QdrantConfig struct {
	Host           string        `json:"host"            yaml:"host"`
	Port           int           `json:"port"            yaml:"port"`
	APIKey         string        `json:"api_key"         yaml:"api_key"`
	UseTLS         bool          `json:"use_tls"         yaml:"use_tls"`
	Collection     string        `json:"collection"      yaml:"collection"`
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout"`
}

// Default values, per spec.md §6.
const (
	DefaultK1          = 1.2
	DefaultB           = 0.75
	DefaultMinDF       = 1
	DefaultMaxDFRatio  = 0.85
	DefaultSublinearTF = false

	DefaultRerankStrategy = fusion.RRF
	DefaultRRFK           = 60

	DefaultProviderModel   = "rerank-default"
	DefaultProviderTimeout = 30 * time.Second

	DefaultQdrantPort           = 6334
	DefaultQdrantCollection     = "code_chunks"
	DefaultQdrantRequestTimeout = 30 * time.Second
)

var validStrategies = []string{string(fusion.RRF), string(fusion.Weighted), string(fusion.Average)}

// Load loads configuration from environment variables and an optional
// config file, in that precedence order over built-in defaults.
func Load(ctx context.Context) (*Config, error) {
	cfg := defaults()

	if configFile := os.Getenv("CLAUDE_CONTEXT_CONFIG_FILE"); configFile != "" {
		fileCfg, err := loadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
		cfg = merge(cfg, fileCfg)
	}

	cfg = loadEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Encoder: EncoderConfig{
			K1:          DefaultK1,
			B:           DefaultB,
			MinDF:       DefaultMinDF,
			MaxDFRatio:  DefaultMaxDFRatio,
			SublinearTF: DefaultSublinearTF,
			TokenMode:   tokenize.Code,
		},
		Rerank: RerankConfig{
			Strategy: DefaultRerankStrategy,
			Params:   RerankParams{K: DefaultRRFK},
			Provider: ProviderConfig{
				Enabled: false,
				Model:   DefaultProviderModel,
				Timeout: DefaultProviderTimeout,
			},
		},
		Qdrant: QdrantConfig{
			Port:           DefaultQdrantPort,
			Collection:     DefaultQdrantCollection,
			RequestTimeout: DefaultQdrantRequestTimeout,
		},
	}
}

// Default returns a default configuration for testing and documentation.
func Default() *Config {
	return defaults()
}

func loadFile(path string) (*Config, error) {
	safePath := filepath.Clean(path)

	data, err := os.ReadFile(safePath)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	cfg := &Config{}
	ext := strings.ToLower(filepath.Ext(safePath))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file extension: %s", ext)
	}

	return cfg, nil
}

// loadEnv overrides cfg with any CLAUDE_CONTEXT_* environment variables
// that are set, leaving unset fields untouched.
func loadEnv(cfg *Config) *Config {
	if v := os.Getenv("CLAUDE_CONTEXT_ENCODER_K1"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Encoder.K1 = f
		}
	}
	if v := os.Getenv("CLAUDE_CONTEXT_ENCODER_B"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Encoder.B = f
		}
	}
	if v := os.Getenv("CLAUDE_CONTEXT_ENCODER_MIN_DF"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Encoder.MinDF = n
		}
	}
	if v := os.Getenv("CLAUDE_CONTEXT_ENCODER_MAX_DF_RATIO"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Encoder.MaxDFRatio = f
		}
	}
	if v := os.Getenv("CLAUDE_CONTEXT_ENCODER_SUBLINEAR_TF"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Encoder.SublinearTF = b
		}
	}
	if v := os.Getenv("CLAUDE_CONTEXT_ENCODER_TOKEN_MODE"); v != "" {
		cfg.Encoder.TokenMode = tokenize.Mode(v)
	}

	if v := os.Getenv("CLAUDE_CONTEXT_RERANK_STRATEGY"); v != "" {
		cfg.Rerank.Strategy = fusion.Strategy(v)
	}
	if v := os.Getenv("CLAUDE_CONTEXT_RERANK_K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Rerank.Params.K = n
		}
	}
	if v := os.Getenv("CLAUDE_CONTEXT_RERANK_WEIGHTS"); v != "" {
		cfg.Rerank.Params.Weights = parseFloatList(v)
	}
	if v := os.Getenv("CLAUDE_CONTEXT_RERANK_PROVIDER_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Rerank.Provider.Enabled = b
		}
	}
	if v := os.Getenv("CLAUDE_CONTEXT_RERANK_PROVIDER_BASE_URL"); v != "" {
		cfg.Rerank.Provider.BaseURL = v
	}
	if v := os.Getenv("CLAUDE_CONTEXT_RERANK_PROVIDER_API_KEY"); v != "" {
		cfg.Rerank.Provider.APIKey = v
	}
	if v := os.Getenv("CLAUDE_CONTEXT_RERANK_PROVIDER_MODEL"); v != "" {
		cfg.Rerank.Provider.Model = v
	}
	if v := os.Getenv("CLAUDE_CONTEXT_RERANK_PROVIDER_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Rerank.Provider.Timeout = d
		}
	}

	if v := os.Getenv("CLAUDE_CONTEXT_QDRANT_HOST"); v != "" {
		cfg.Qdrant.Host = v
	}
	if v := os.Getenv("CLAUDE_CONTEXT_QDRANT_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Qdrant.Port = n
		}
	}
	if v := os.Getenv("CLAUDE_CONTEXT_QDRANT_API_KEY"); v != "" {
		cfg.Qdrant.APIKey = v
	}
	if v := os.Getenv("CLAUDE_CONTEXT_QDRANT_USE_TLS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Qdrant.UseTLS = b
		}
	}
	if v := os.Getenv("CLAUDE_CONTEXT_QDRANT_COLLECTION"); v != "" {
		cfg.Qdrant.Collection = v
	}
	if v := os.Getenv("CLAUDE_CONTEXT_QDRANT_REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Qdrant.RequestTimeout = d
		}
	}

	return cfg
}

func parseFloatList(raw string) []float64 {
	parts := strings.Split(raw, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" {
			continue
		}
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			out = append(out, f)
		}
	}
	return out
}

// merge merges two configs, preferring values from override when
// non-zero.
func merge(base, override *Config) *Config {
	result := *base

	if override.Encoder.K1 != 0 {
		result.Encoder.K1 = override.Encoder.K1
	}
	if override.Encoder.B != 0 {
		result.Encoder.B = override.Encoder.B
	}
	if override.Encoder.MinDF != 0 {
		result.Encoder.MinDF = override.Encoder.MinDF
	}
	if override.Encoder.MaxDFRatio != 0 {
		result.Encoder.MaxDFRatio = override.Encoder.MaxDFRatio
	}
	if override.Encoder.SublinearTF {
		result.Encoder.SublinearTF = override.Encoder.SublinearTF
	}
	if override.Encoder.TokenMode != "" {
		result.Encoder.TokenMode = override.Encoder.TokenMode
	}

	if override.Rerank.Strategy != "" {
		result.Rerank.Strategy = override.Rerank.Strategy
	}
	if override.Rerank.Params.K != 0 {
		result.Rerank.Params.K = override.Rerank.Params.K
	}
	if len(override.Rerank.Params.Weights) > 0 {
		result.Rerank.Params.Weights = override.Rerank.Params.Weights
	}
	if override.Rerank.Provider.Enabled {
		result.Rerank.Provider.Enabled = override.Rerank.Provider.Enabled
	}
	if override.Rerank.Provider.BaseURL != "" {
		result.Rerank.Provider.BaseURL = override.Rerank.Provider.BaseURL
	}
	if override.Rerank.Provider.APIKey != "" {
		result.Rerank.Provider.APIKey = override.Rerank.Provider.APIKey
	}
	if override.Rerank.Provider.Model != "" {
		result.Rerank.Provider.Model = override.Rerank.Provider.Model
	}
	if override.Rerank.Provider.Timeout != 0 {
		result.Rerank.Provider.Timeout = override.Rerank.Provider.Timeout
	}

	if override.Qdrant.Host != "" {
		result.Qdrant.Host = override.Qdrant.Host
	}
	if override.Qdrant.Port != 0 {
		result.Qdrant.Port = override.Qdrant.Port
	}
	if override.Qdrant.APIKey != "" {
		result.Qdrant.APIKey = override.Qdrant.APIKey
	}
	if override.Qdrant.UseTLS {
		result.Qdrant.UseTLS = override.Qdrant.UseTLS
	}
	if override.Qdrant.Collection != "" {
		result.Qdrant.Collection = override.Qdrant.Collection
	}
	if override.Qdrant.RequestTimeout != 0 {
		result.Qdrant.RequestTimeout = override.Qdrant.RequestTimeout
	}

	return &result
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Encoder.K1 <= 0 {
		return fmt.Errorf("encoder k1 must be positive: %v", c.Encoder.K1)
	}
	if c.Encoder.B < 0 || c.Encoder.B > 1 {
		return fmt.Errorf("encoder b must be in [0,1]: %v", c.Encoder.B)
	}
	if c.Encoder.MinDF < 0 {
		return fmt.Errorf("encoder min_df cannot be negative: %d", c.Encoder.MinDF)
	}
	if c.Encoder.MaxDFRatio <= 0 || c.Encoder.MaxDFRatio > 1 {
		return fmt.Errorf("encoder max_df_ratio must be in (0,1]: %v", c.Encoder.MaxDFRatio)
	}
	if c.Encoder.TokenMode != tokenize.Simple && c.Encoder.TokenMode != tokenize.Code {
		return fmt.Errorf("invalid encoder token_mode: %s", c.Encoder.TokenMode)
	}

	if !contains(validStrategies, string(c.Rerank.Strategy)) {
		return fmt.Errorf("invalid rerank strategy: %s (valid: %v)", c.Rerank.Strategy, validStrategies)
	}

	if c.Rerank.Provider.Enabled {
		if c.Rerank.Provider.BaseURL == "" {
			return fmt.Errorf("rerank provider base_url cannot be empty when provider enabled")
		}
		if c.Rerank.Provider.Model == "" {
			return fmt.Errorf("rerank provider model cannot be empty when provider enabled")
		}
	}

	if c.Qdrant.Host == "" {
		return fmt.Errorf("qdrant host cannot be empty")
	}
	if c.Qdrant.Port < 1 || c.Qdrant.Port > 65535 {
		return fmt.Errorf("invalid qdrant port: %d (must be 1-65535)", c.Qdrant.Port)
	}
	if c.Qdrant.Collection == "" {
		return fmt.Errorf("qdrant collection cannot be empty")
	}

	return nil
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
