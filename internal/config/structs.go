// Package config defines the application configuration and its loading
// from files, environment variables and command-line flags.
package config

import (
	"fmt"

	"github.com/slipscan/slipscan/internal/extract"
	"github.com/slipscan/slipscan/internal/normalize"
	"github.com/slipscan/slipscan/internal/recognize"
)

// Config represents the complete configuration for the slipscan
// application. It covers all commands (scan, batch, serve) and supports
// loading from configuration files, environment variables and flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Pipeline configuration
	Pipeline PipelineConfig `mapstructure:"pipeline" yaml:"pipeline" json:"pipeline"`

	// Output configuration
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`

	// Batch processing configuration
	Batch BatchConfig `mapstructure:"batch" yaml:"batch" json:"batch"`
}

// PipelineConfig contains scan pipeline settings.
type PipelineConfig struct {
	// Normalization step selection
	Normalize normalize.Options `mapstructure:"normalize" yaml:"normalize" json:"normalize"`

	// Extraction scan windows
	Extract extract.Config `mapstructure:"extract" yaml:"extract" json:"extract"`

	// Recognition engine settings
	Recognizer RecognizerConfig `mapstructure:"recognizer" yaml:"recognizer" json:"recognizer"`
}

// RecognizerConfig contains text recognition engine settings.
type RecognizerConfig struct {
	Language    string `mapstructure:"language" yaml:"language" json:"language"`
	PageSegMode int    `mapstructure:"page_seg_mode" yaml:"page_seg_mode" json:"page_seg_mode"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"`
	File   string `mapstructure:"file" yaml:"file" json:"file"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	MaxUploadMB     int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// BatchConfig contains batch processing settings.
type BatchConfig struct {
	Workers         int    `mapstructure:"workers" yaml:"workers" json:"workers"`
	OutputDir       string `mapstructure:"output_dir" yaml:"output_dir" json:"output_dir"`
	ContinueOnError bool   `mapstructure:"continue_on_error" yaml:"continue_on_error" json:"continue_on_error"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Verbose:  false,
		Pipeline: PipelineConfig{
			Normalize: normalize.DefaultOptions(),
			Extract:   extract.DefaultConfig(),
			Recognizer: RecognizerConfig{
				Language:    recognize.DefaultConfig().Language,
				PageSegMode: recognize.DefaultConfig().PageSegMode,
			},
		},
		Output: OutputConfig{
			Format: "json",
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			MaxUploadMB:     20,
			TimeoutSec:      60,
			ShutdownTimeout: 10,
		},
		Batch: BatchConfig{
			Workers:         4,
			ContinueOnError: true,
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	switch c.Output.Format {
	case "", "json", "yaml", "text":
	default:
		return fmt.Errorf("invalid output format %q", c.Output.Format)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("max upload size must be positive, got %d", c.Server.MaxUploadMB)
	}
	if c.Batch.Workers <= 0 {
		return fmt.Errorf("batch workers must be positive, got %d", c.Batch.Workers)
	}
	if c.Pipeline.Normalize.Scale && c.Pipeline.Normalize.ScaleFactor <= 0 {
		return fmt.Errorf("scale factor must be positive when scaling is enabled")
	}
	return nil
}
