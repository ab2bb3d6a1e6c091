// Package config provides application configuration with multi-source priority.
//
// Sources (highest to lowest priority):
//  1. Environment variables (prefix KNOWLEDGERAG_, plus GEMINI_API_KEY)
//  2. Config file (~/.knowledge-rag/config.yaml)
//  3. Defaults
//
// Validation uses sentinel errors so callers can match with errors.Is().
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

var (
	// ErrMissingAPIKey indicates the Gemini API key is not set.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidChunking indicates chunk size/overlap are inconsistent.
	ErrInvalidChunking = errors.New("invalid chunking parameters")

	// ErrInvalidBackend indicates an unknown store backend name.
	ErrInvalidBackend = errors.New("invalid store backend")

	// ErrInvalidDimension indicates a non-positive embedding dimension.
	ErrInvalidDimension = errors.New("invalid embedding dimension")

	// ErrInvalidTopK indicates an out-of-range retrieval top-k.
	ErrInvalidTopK = errors.New("invalid top-k")

	// ErrInvalidBatchSize indicates a non-positive embedding batch size.
	ErrInvalidBatchSize = errors.New("invalid batch size")

	// ErrMissingPostgresURL indicates the postgres backend was selected
	// without a connection URL.
	ErrMissingPostgresURL = errors.New("missing postgres URL")
)

// Store backend identifiers used in Config.StoreBackend.
const (
	BackendChromem  = "chromem"
	BackendPostgres = "postgres"
)

// Config stores application configuration.
type Config struct {
	// Model configuration
	ModelName string `mapstructure:"model_name" json:"model_name"`

	// EmbedderModel names the embedding model. gemini-embedding-001
	// outputs 3072 dimensions by default and supports truncation via
	// OutputDimensionality; every embed request pins the output width
	// to EmbeddingDimension.
	EmbedderModel string `mapstructure:"embedder_model" json:"embedder_model"`

	// EmbeddingDimension is the vector width the store is created with.
	// It must match the pgvector schema (vector(1536) in the chunks
	// migration) when the postgres backend is used. Zero-vector
	// placeholders for failed embeddings use this width.
	EmbeddingDimension int `mapstructure:"embedding_dimension" json:"embedding_dimension"`

	// EmbedRequestsPerSecond paces embedding API calls. Zero disables
	// pacing.
	EmbedRequestsPerSecond float64 `mapstructure:"embed_requests_per_second" json:"embed_requests_per_second"`

	// Wikipedia client
	WikiLanguage     string `mapstructure:"wiki_language" json:"wiki_language"`
	WikiUserAgent    string `mapstructure:"wiki_user_agent" json:"wiki_user_agent"`
	SearchMaxResults int    `mapstructure:"search_max_results" json:"search_max_results"`

	// Pipeline parameters
	ChunkSize    int `mapstructure:"chunk_size" json:"chunk_size"`
	ChunkOverlap int `mapstructure:"chunk_overlap" json:"chunk_overlap"`
	BatchSize    int `mapstructure:"batch_size" json:"batch_size"`
	TopK         int `mapstructure:"top_k" json:"top_k"`

	// Knowledge store
	StoreBackend string `mapstructure:"store_backend" json:"store_backend"`
	CachePath    string `mapstructure:"cache_path" json:"cache_path"`
	PostgresURL  string `mapstructure:"postgres_url" json:"-"`

	// HTTP server
	HTTPAddr           string  `mapstructure:"http_addr" json:"http_addr"`
	RateLimitPerSecond float64 `mapstructure:"rate_limit_per_second" json:"rate_limit_per_second"`
	RateLimitBurst     int     `mapstructure:"rate_limit_burst" json:"rate_limit_burst"`

	// APIKey is resolved from GEMINI_API_KEY. Never written to config files.
	APIKey string `mapstructure:"-" json:"-"`
}

// Load reads configuration from defaults, the optional config file, and the
// environment. It does not validate; call Validate before using the result.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir, err := configDir(); err == nil {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("KNOWLEDGERAG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// No config file is fine; defaults plus env apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.APIKey = os.Getenv("GEMINI_API_KEY")

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("model_name", "googleai/gemini-2.5-flash")
	v.SetDefault("embedder_model", "gemini-embedding-001")
	v.SetDefault("embedding_dimension", 1536)
	v.SetDefault("embed_requests_per_second", 2.0)

	v.SetDefault("wiki_language", "en")
	v.SetDefault("wiki_user_agent", "KnowledgeRAG/1.0 (educational project)")
	v.SetDefault("search_max_results", 3)

	v.SetDefault("chunk_size", 500)
	v.SetDefault("chunk_overlap", 50)
	v.SetDefault("batch_size", 20)
	v.SetDefault("top_k", 5)

	v.SetDefault("store_backend", BackendChromem)
	v.SetDefault("cache_path", "./cache")

	v.SetDefault("http_addr", "127.0.0.1:8080")
	v.SetDefault("rate_limit_per_second", 0.2)
	v.SetDefault("rate_limit_burst", 5)
}

// configDir returns the directory holding the config file, creating it if
// needed.
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}

	dir := filepath.Join(home, ".knowledge-rag")
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	return dir, nil
}
