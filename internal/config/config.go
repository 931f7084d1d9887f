// Package config holds runtime configuration: defaults, environment loading
// via viper, and validation.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds the HTTP listen address.
type ServerConfig struct {
	Host string
	Port string
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// VisionConfig holds the inference-service client settings. BaseURL points
// at an OpenAI-compatible endpoint; for a local Ollama instance that is
// http://localhost:11434/v1.
type VisionConfig struct {
	BaseURL        string
	APIKey         string
	Model          string
	Timeout        time.Duration // Per-request budget for one description call.
	MaxImageWidth  int           // Images wider than this are downscaled before upload.
	RequestsPerSec float64       // Inference call rate limit.
}

// OCRConfig holds the text-recognition settings.
type OCRConfig struct {
	Languages string        // tesseract language string, e.g. "chi_sim+eng".
	Timeout   time.Duration // Per-file budget for all preprocessing variants.
}

// Config holds all runtime settings. It is populated by [Load] and passed
// (by pointer) to packages that need it.
type Config struct {
	Server  ServerConfig
	Vision  VisionConfig
	OCR     OCRConfig
	Workers int // Concurrent files per batch.
}

// Load reads settings from the environment with defaults applied, then
// validates the result.
func Load() (*Config, error) {
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("VISION_BASE_URL", "http://localhost:11434/v1")
	viper.SetDefault("VISION_API_KEY", "ollama")
	viper.SetDefault("VISION_MODEL", "qwen3-vl:4b")
	viper.SetDefault("VISION_TIMEOUT", "30s")
	viper.SetDefault("VISION_MAX_IMAGE_WIDTH", 1024)
	viper.SetDefault("VISION_REQUESTS_PER_SEC", 2.0)
	viper.SetDefault("OCR_LANGUAGES", "chi_sim+eng")
	viper.SetDefault("OCR_TIMEOUT", "30s")
	viper.SetDefault("WORKERS", 4)

	viper.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("SERVER_HOST"),
			Port: viper.GetString("SERVER_PORT"),
		},
		Vision: VisionConfig{
			BaseURL:        viper.GetString("VISION_BASE_URL"),
			APIKey:         viper.GetString("VISION_API_KEY"),
			Model:          viper.GetString("VISION_MODEL"),
			Timeout:        viper.GetDuration("VISION_TIMEOUT"),
			MaxImageWidth:  viper.GetInt("VISION_MAX_IMAGE_WIDTH"),
			RequestsPerSec: viper.GetFloat64("VISION_REQUESTS_PER_SEC"),
		},
		OCR: OCRConfig{
			Languages: viper.GetString("OCR_LANGUAGES"),
			Timeout:   viper.GetDuration("OCR_TIMEOUT"),
		},
		Workers: viper.GetInt("WORKERS"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks ranges and required fields.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server port must not be empty")
	}
	if c.Vision.BaseURL == "" {
		return errors.New("vision base URL must not be empty")
	}
	if c.Vision.Model == "" {
		return errors.New("vision model must not be empty")
	}
	if c.Vision.Timeout <= 0 {
		return errors.New("vision timeout must be positive")
	}
	if c.Vision.MaxImageWidth <= 0 {
		return errors.New("vision max image width must be positive")
	}
	if c.Vision.RequestsPerSec <= 0 {
		return errors.New("vision requests per second must be positive")
	}
	if c.OCR.Languages == "" {
		return errors.New("ocr languages must not be empty")
	}
	if c.OCR.Timeout <= 0 {
		return errors.New("ocr timeout must be positive")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	return nil
}
