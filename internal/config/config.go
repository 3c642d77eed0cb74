package config

import (
	"os"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Rewriting / summarization
	AnthropicAPIKey string
	AnthropicModel  string

	// Embeddings
	OpenAIAPIKey   string
	EmbeddingModel string

	// Worker pool
	WorkerCount          int
	MaxQueueSize         int
	MaxConcurrentRewrite int

	// Upload limits
	MaxUploadBytes int64

	// Chunking defaults
	ChunkSize    int
	ChunkOverlap int
	TopK         int

	// Section batching
	MaxSectionSize     int
	SmallDocMultiplier float64

	// Reconciliation
	TruncationRatio float64

	// Summary comparison
	NoveltyThreshold float64
	MinFragment      int

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("FNSTITCH_API_KEY"),

		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  envOr("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),

		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		EmbeddingModel: envOr("EMBEDDING_MODEL", "text-embedding-3-small"),

		WorkerCount:          envInt("WORKER_COUNT", 4),
		MaxQueueSize:         envInt("MAX_QUEUE_SIZE", 100),
		MaxConcurrentRewrite: envInt("MAX_CONCURRENT_REWRITE", 5),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		ChunkSize:    envInt("CHUNK_SIZE", 800),
		ChunkOverlap: envInt("CHUNK_OVERLAP", 100),
		TopK:         envInt("TOP_K", 4),

		MaxSectionSize:     envInt("MAX_SECTION_SIZE", 6000),
		SmallDocMultiplier: envFloat("SMALL_DOC_MULTIPLIER", 1.5),

		TruncationRatio: envFloat("TRUNCATION_RATIO", 0.6),

		NoveltyThreshold: envFloat("NOVELTY_THRESHOLD", 0.82),
		MinFragment:      envInt("MIN_FRAGMENT", 30),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxConcurrentRewrite <= 0 {
		cfg.MaxConcurrentRewrite = 5
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 800
	}
	if cfg.ChunkOverlap < 0 {
		cfg.ChunkOverlap = 100
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.APIKey, validation.Required),
		validation.Field(&c.AnthropicAPIKey, validation.Required),
		validation.Field(&c.OpenAIAPIKey, validation.Required),
		validation.Field(&c.TopK, validation.Min(1)),
		validation.Field(&c.MaxSectionSize, validation.Min(1)),
		validation.Field(&c.SmallDocMultiplier, validation.Min(1.0)),
		validation.Field(&c.TruncationRatio, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&c.NoveltyThreshold, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&c.ChunkOverlap, validation.Max(c.ChunkSize)),
	)
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

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
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
