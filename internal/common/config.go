package common

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Storage     StorageConfig   `toml:"storage"`
	Queue       QueueConfig     `toml:"queue"`
	OCR         OCRConfig       `toml:"ocr"`
	Retention   RetentionConfig `toml:"retention"`
	Logging     LoggingConfig   `toml:"logging"`
}

// StorageConfig holds embedded database settings
type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"` // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"`         // Delete database on startup for clean test runs
}

// QueueConfig controls the processing worker pool
type QueueConfig struct {
	Concurrency  int    `toml:"concurrency" validate:"gte=1"`    // Number of concurrent workers
	PollInterval string `toml:"poll_interval"`                   // e.g. "500ms" - how often workers poll for messages
	RateLimit    int    `toml:"rate_limit" validate:"gte=1"`     // Max jobs started per rate window
	RateWindow   string `toml:"rate_window" validate:"required"` // e.g. "60s"
}

// OCRConfig controls rasterization and the OCR engine invocation
type OCRConfig struct {
	EnginePath    string  `toml:"engine_path"`     // tesseract binary (default: "tesseract" on PATH)
	RendererPath  string  `toml:"renderer_path"`   // pdftoppm binary (default: "pdftoppm" on PATH)
	Language      string  `toml:"language"`        // OCR language pack (default: "eng")
	UpscaleFactor float64 `toml:"upscale_factor"`  // Raster upscale before recognition (default: 2.0)
	MinTextLength int     `toml:"min_text_length"` // Below this many native chars, OCR runs instead
}

// RetentionConfig controls the artifact cleanup scheduler
type RetentionConfig struct {
	ArtifactTTL   string `toml:"artifact_ttl"`   // Lifetime of reconstructed artifacts (default: "2h")
	SweepSchedule string `toml:"sweep_schedule"` // Cron schedule for the cleanup sweep
}

// LoggingConfig mirrors the arbor writer setup
type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// DefaultConfig returns the configuration used when no file is supplied
func DefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/docforge",
			},
		},
		Queue: QueueConfig{
			Concurrency:  3,
			PollInterval: "500ms",
			RateLimit:    10,
			RateWindow:   "60s",
		},
		OCR: OCRConfig{
			EnginePath:    "tesseract",
			RendererPath:  "pdftoppm",
			Language:      "eng",
			UpscaleFactor: 2.0,
			MinTextLength: 100,
		},
		Retention: RetentionConfig{
			ArtifactTTL:   "2h",
			SweepSchedule: "*/1 * * * *",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
	}
}

// LoadFromFile loads configuration from a TOML file layered over defaults.
// A missing path returns defaults without error so the binary runs standalone.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks structural constraints and duration fields
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	for name, value := range map[string]string{
		"queue.poll_interval":    c.Queue.PollInterval,
		"queue.rate_window":      c.Queue.RateWindow,
		"retention.artifact_ttl": c.Retention.ArtifactTTL,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid configuration: %s: %w", name, err)
		}
	}

	return nil
}

// PollInterval returns the parsed worker poll interval
func (c *QueueConfig) PollIntervalDuration() time.Duration {
	d, err := time.ParseDuration(c.PollInterval)
	if err != nil || d <= 0 {
		return 500 * time.Millisecond
	}
	return d
}

// RateWindowDuration returns the parsed rate ceiling window
func (c *QueueConfig) RateWindowDuration() time.Duration {
	d, err := time.ParseDuration(c.RateWindow)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// ArtifactTTLDuration returns the parsed artifact lifetime
func (c *RetentionConfig) ArtifactTTLDuration() time.Duration {
	d, err := time.ParseDuration(c.ArtifactTTL)
	if err != nil || d <= 0 {
		return 2 * time.Hour
	}
	return d
}
