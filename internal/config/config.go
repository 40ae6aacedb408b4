package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Similarity/embedding store connection
	VectorStoreURL    string
	VectorStoreAPIKey string

	// Artifact store connection
	ArtifactsURL    string
	ArtifactsAPIKey string

	// Auth
	APIKey string

	// Transformation service
	OpenAIAPIKey string
	LightModel   string
	StrongModel  string

	// Worker pool
	WorkerCount            int
	MaxQueueSize           int
	MaxConcurrentTransform int

	// Upload limits
	MaxUploadBytes int64

	// Chunking defaults
	DefaultChunkSize    int
	DefaultChunkOverlap int
	MinTokenThreshold   int
	TiktokenEncoding    string

	// Review defaults
	TopN              int
	RankPoolSize      int
	EmbedWaitTimeout  time.Duration
	EmbedPollInterval time.Duration

	// Job state
	JobTTL time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		VectorStoreURL:    envOr("VECTORSTORE_URL", "http://localhost:8080"),
		VectorStoreAPIKey: os.Getenv("VECTORSTORE_API_KEY"),

		ArtifactsURL:    envOr("ARTIFACTS_URL", "http://localhost:8081"),
		ArtifactsAPIKey: os.Getenv("ARTIFACTS_API_KEY"),

		APIKey: os.Getenv("SLRPIPE_API_KEY"),

		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		LightModel:   envOr("LIGHT_MODEL", "gpt-4o-mini"),
		StrongModel:  envOr("STRONG_MODEL", "gpt-4o"),

		WorkerCount:            envInt("WORKER_COUNT", 4),
		MaxQueueSize:           envInt("MAX_QUEUE_SIZE", 100),
		MaxConcurrentTransform: envInt("MAX_CONCURRENT_TRANSFORM", 5),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		DefaultChunkSize:    envInt("CHUNK_SIZE", 800),
		DefaultChunkOverlap: envInt("CHUNK_OVERLAP", 100),
		MinTokenThreshold:   envInt("MIN_TOKEN_THRESHOLD", 500),
		TiktokenEncoding:    envOr("TIKTOKEN_ENCODING", "cl100k_base"),

		TopN:              envInt("TOP_N", 10),
		RankPoolSize:      envInt("RANK_POOL_SIZE", 100),
		EmbedWaitTimeout:  envDuration("EMBED_WAIT_TIMEOUT", 60*time.Second),
		EmbedPollInterval: envDuration("EMBED_POLL_INTERVAL", 5*time.Second),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxConcurrentTransform <= 0 {
		cfg.MaxConcurrentTransform = 5
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.DefaultChunkSize <= 0 {
		cfg.DefaultChunkSize = 800
	}
	if cfg.DefaultChunkOverlap < 0 {
		cfg.DefaultChunkOverlap = 100
	}
	if cfg.MinTokenThreshold <= 0 {
		cfg.MinTokenThreshold = 500
	}
	if cfg.TopN <= 0 {
		cfg.TopN = 10
	}
	if cfg.RankPoolSize <= 0 {
		cfg.RankPoolSize = 100
	}
	if cfg.EmbedWaitTimeout <= 0 {
		cfg.EmbedWaitTimeout = 60 * time.Second
	}
	if cfg.EmbedPollInterval <= 0 {
		cfg.EmbedPollInterval = 5 * time.Second
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.VectorStoreAPIKey == "" {
		return fmt.Errorf("VECTORSTORE_API_KEY is required")
	}
	if c.ArtifactsAPIKey == "" {
		return fmt.Errorf("ARTIFACTS_API_KEY is required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("SLRPIPE_API_KEY is required")
	}
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
