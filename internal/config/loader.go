package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name of the config file (without extension).
	ConfigFileName = "slipscan"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "SLIPSCAN"
)

// Loader handles configuration loading from multiple sources with the
// precedence flags > environment > config file > defaults.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a configured loader.
func NewLoader() *Loader {
	v := viper.New()

	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME")
	v.AddConfigPath("$HOME/.config/slipscan")
	v.AddConfigPath("/etc/slipscan")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	return &Loader{v: v}
}

// Viper exposes the underlying viper instance for flag binding.
func (l *Loader) Viper() *viper.Viper { return l.v }

// Load reads configuration from all sources. A missing config file is not
// an error; defaults and environment variables still apply.
func (l *Loader) Load() (Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}
	return l.unmarshal()
}

// LoadWithFile reads configuration from an explicit config file path.
func (l *Loader) LoadWithFile(path string) (Config, error) {
	l.v.SetConfigFile(path)
	if err := l.v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return l.unmarshal()
}

func (l *Loader) unmarshal() (Config, error) {
	cfg := DefaultConfig()
	if err := l.v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// setDefaults registers the default configuration values so environment
// variables are picked up even without a config file.
func setDefaults(v *viper.Viper) {
	def := DefaultConfig()

	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("verbose", def.Verbose)

	v.SetDefault("pipeline.normalize.scale", def.Pipeline.Normalize.Scale)
	v.SetDefault("pipeline.normalize.scale_factor", def.Pipeline.Normalize.ScaleFactor)
	v.SetDefault("pipeline.normalize.deskew", def.Pipeline.Normalize.Deskew)
	v.SetDefault("pipeline.normalize.grayscale", def.Pipeline.Normalize.Grayscale)
	v.SetDefault("pipeline.normalize.denoise", def.Pipeline.Normalize.Denoise)
	v.SetDefault("pipeline.normalize.contrast", def.Pipeline.Normalize.Contrast)
	v.SetDefault("pipeline.normalize.sharpen", def.Pipeline.Normalize.Sharpen)
	v.SetDefault("pipeline.normalize.binarize", def.Pipeline.Normalize.Binarize)

	v.SetDefault("pipeline.extract.merchant_blocks", def.Pipeline.Extract.MerchantBlocks)
	v.SetDefault("pipeline.extract.date_blocks", def.Pipeline.Extract.DateBlocks)
	v.SetDefault("pipeline.extract.time_blocks_fallback", def.Pipeline.Extract.TimeBlocksFallback)
	v.SetDefault("pipeline.extract.item_skip_head", def.Pipeline.Extract.ItemSkipHead)
	v.SetDefault("pipeline.extract.item_skip_tail", def.Pipeline.Extract.ItemSkipTail)

	v.SetDefault("pipeline.recognizer.language", def.Pipeline.Recognizer.Language)
	v.SetDefault("pipeline.recognizer.page_seg_mode", def.Pipeline.Recognizer.PageSegMode)

	v.SetDefault("output.format", def.Output.Format)
	v.SetDefault("output.file", def.Output.File)

	v.SetDefault("server.host", def.Server.Host)
	v.SetDefault("server.port", def.Server.Port)
	v.SetDefault("server.max_upload_mb", def.Server.MaxUploadMB)
	v.SetDefault("server.timeout_sec", def.Server.TimeoutSec)
	v.SetDefault("server.shutdown_timeout", def.Server.ShutdownTimeout)

	v.SetDefault("batch.workers", def.Batch.Workers)
	v.SetDefault("batch.output_dir", def.Batch.OutputDir)
	v.SetDefault("batch.continue_on_error", def.Batch.ContinueOnError)
}
