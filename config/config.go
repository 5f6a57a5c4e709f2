package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"aqua-vision/internal/domain/entity"
)

// Config настройки сервиса.
type Config struct {
	TelegramToken  string // пустой токен отключает бота
	HTTPAddr       string
	LogLevel       string
	MaxUploadBytes int64
	OutputFormat   string // jpeg или png
	JPEGQuality    int
	Analysis       entity.AnalysisParams
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		HTTPAddr:      getEnv("HTTP_ADDR", ":5000"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		OutputFormat:  strings.ToLower(getEnv("OUTPUT_FORMAT", "jpeg")),
		Analysis:      entity.DefaultAnalysisParams(),
	}

	var err error
	if cfg.MaxUploadBytes, err = getInt64("MAX_UPLOAD_BYTES", 16<<20); err != nil {
		return nil, err
	}
	if cfg.JPEGQuality, err = getInt("JPEG_QUALITY", 90); err != nil {
		return nil, err
	}
	if cfg.Analysis.ROIFraction, err = getFloat("ROI_FRACTION", cfg.Analysis.ROIFraction); err != nil {
		return nil, err
	}
	if cfg.Analysis.BubbleValueThreshold, err = getFloat("BUBBLE_VALUE_THRESHOLD", cfg.Analysis.BubbleValueThreshold); err != nil {
		return nil, err
	}
	if cfg.Analysis.AlgaeValueThreshold, err = getFloat("ALGAE_VALUE_THRESHOLD", cfg.Analysis.AlgaeValueThreshold); err != nil {
		return nil, err
	}
	if cfg.Analysis.PPMThreshold, err = getFloat("PPM_THRESHOLD", cfg.Analysis.PPMThreshold); err != nil {
		return nil, err
	}

	if cfg.OutputFormat != "jpeg" && cfg.OutputFormat != "png" {
		return nil, fmt.Errorf("invalid OUTPUT_FORMAT: %q", cfg.OutputFormat)
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES must be > 0 (got %d)", cfg.MaxUploadBytes)
	}
	if cfg.JPEGQuality < 1 || cfg.JPEGQuality > 100 {
		return nil, fmt.Errorf("JPEG_QUALITY must be in [1, 100] (got %d)", cfg.JPEGQuality)
	}
	if err := cfg.Analysis.Validate(); err != nil {
		return nil, fmt.Errorf("invalid analysis settings: %w", err)
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}

func getFloat(key string, defaultVal float64) (float64, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, val)
	}
	return f, nil
}

func getInt(key string, defaultVal int) (int, error) {
	v, err := getInt64(key, int64(defaultVal))
	return int(v), err
}

func getInt64(key string, defaultVal int64) (int64, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, val)
	}
	return i, nil
}
