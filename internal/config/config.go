package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	// Session store connection
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Gemini provider
	GeminiAPIKeys []string
	GeminiModel   string

	// Request limits
	MaxUploadBytes int64
	MaxQuestions   int

	// Chunking
	MaxChunks       int
	ChunkCharBudget int

	// Concurrency and timeouts
	MaxConcurrentAnswers int
	FetchTimeout         time.Duration
	AnswerTimeout        time.Duration

	// PDF handling
	PDFNativeIngest bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		RedisAddr:     envOr("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),

		GeminiAPIKeys: splitKeys(os.Getenv("GOOGLE_API_KEYS")),
		GeminiModel:   envOr("GEMINI_MODEL", "gemini-2.0-flash"),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 10*1024*1024), // 10MB
		MaxQuestions:   envInt("MAX_QUESTIONS", 10),

		MaxChunks:       envInt("MAX_CHUNKS", 20),
		ChunkCharBudget: envInt("CHUNK_CHAR_BUDGET", 8000),

		MaxConcurrentAnswers: envInt("MAX_CONCURRENT_ANSWERS", 10),
		FetchTimeout:         envDuration("FETCH_TIMEOUT", 30*time.Second),
		AnswerTimeout:        envDuration("ANSWER_TIMEOUT", 90*time.Second),

		PDFNativeIngest: envBool("PDF_NATIVE_INGEST", true),
	}

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 * 1024 * 1024
	}
	if cfg.MaxQuestions <= 0 {
		cfg.MaxQuestions = 10
	}
	if cfg.MaxChunks <= 0 {
		cfg.MaxChunks = 20
	}
	if cfg.ChunkCharBudget <= 0 {
		cfg.ChunkCharBudget = 8000
	}
	if cfg.MaxConcurrentAnswers <= 0 {
		cfg.MaxConcurrentAnswers = 10
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 30 * time.Second
	}
	if cfg.AnswerTimeout <= 0 {
		cfg.AnswerTimeout = 90 * time.Second
	}

	return cfg
}

func (c Config) Validate() error {
	if len(c.GeminiAPIKeys) == 0 {
		return fmt.Errorf("GOOGLE_API_KEYS is required")
	}
	if c.GeminiModel == "" {
		return fmt.Errorf("GEMINI_MODEL must not be empty")
	}
	return nil
}

func splitKeys(s string) []string {
	var keys []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
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
