package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendGemini = "gemini"
	BackendVertex = "vertex"
)

// Config は環境変数から読み込むアプリケーション設定です。
type Config struct {
	Port     string
	LogLevel slog.Level

	Backend      string
	GeminiAPIKey string
	ProjectID    string
	Location     string
	ImageModel   string
	AspectRatio  string
	Seed         *int64

	BrandName    string
	DownloadName string

	MaxUploadBytes  int64
	CompressUploads bool
	CompressQuality int

	SessionIdleTimeout time.Duration
	HTTPReadTimeout    time.Duration
	HTTPIdleTimeout    time.Duration
}

// Load は .env（存在すれば）と環境変数から設定を読み込み、既定値を補完します。
func Load() (*Config, error) {
	// ファイルがなくてもエラーにはしない
	_ = godotenv.Load(".env", ".env.local")

	var errs []error
	intEnv := func(key string, fallback int) int {
		v, err := getEnvInt(key, fallback)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}
	boolEnv := func(key string, fallback bool) bool {
		v, err := getEnvBool(key, fallback)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		Backend:            strings.ToLower(getEnv("GENAI_BACKEND", BackendGemini)),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		ProjectID:          firstNonEmpty(os.Getenv("PROJECT_ID"), os.Getenv("GOOGLE_CLOUD_PROJECT")),
		Location:           getEnv("LOCATION", "us-central1"),
		ImageModel:         getEnv("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image"),
		AspectRatio:        os.Getenv("ASPECT_RATIO"),
		BrandName:          getEnv("BRAND_NAME", "ANA SHARIF"),
		DownloadName:       getEnv("DOWNLOAD_NAME", "ana-sharif-reimagined.png"),
		MaxUploadBytes:     int64(intEnv("MAX_UPLOAD_BYTES", 10<<20)),
		CompressUploads:    boolEnv("COMPRESS_UPLOADS", false),
		CompressQuality:    intEnv("COMPRESS_QUALITY", 75),
		SessionIdleTimeout: time.Minute * time.Duration(intEnv("SESSION_IDLE_MINUTES", 30)),
		HTTPReadTimeout:    time.Second * time.Duration(intEnv("HTTP_READ_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:    time.Second * time.Duration(intEnv("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	level, err := parseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	if v := os.Getenv("GENERATION_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("GENERATION_SEED must be an integer: %w", err)
		}
		cfg.Seed = &seed
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required")
		}
	case BackendVertex:
		if c.ProjectID == "" {
			return fmt.Errorf("PROJECT_ID is required for the vertex backend")
		}
	default:
		return fmt.Errorf("unknown GENAI_BACKEND: %q", c.Backend)
	}
	if strings.TrimSpace(c.BrandName) == "" {
		return fmt.Errorf("BRAND_NAME must not be blank")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	if c.CompressQuality < 1 || c.CompressQuality > 100 {
		return fmt.Errorf("COMPRESS_QUALITY must be between 1 and 100")
	}
	if c.SessionIdleTimeout <= 0 {
		return fmt.Errorf("SESSION_IDLE_MINUTES must be positive")
	}
	if c.HTTPReadTimeout <= 0 || c.HTTPIdleTimeout <= 0 {
		return fmt.Errorf("HTTP_READ_TIMEOUT_SECONDS and HTTP_IDLE_TIMEOUT_SECONDS must be positive")
	}
	// SDK へは int32 で渡すため
	if c.Seed != nil && (*c.Seed < math.MinInt32 || *c.Seed > math.MaxInt32) {
		return fmt.Errorf("GENERATION_SEED must fit in a 32-bit integer: %d", *c.Seed)
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fallback, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return i, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fallback, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return b, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
