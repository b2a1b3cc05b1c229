package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level formwatch configuration.
type Config struct {
	Scoring Scoring `mapstructure:"scoring"`
	Live    Live    `mapstructure:"live"`
	Batch   Batch   `mapstructure:"batch"`
	Log     Log     `mapstructure:"log"`
	Metrics Metrics `mapstructure:"metrics"`
	Output  Output  `mapstructure:"output"`
}

// Scoring configures the frame scorer.
type Scoring struct {
	// MinConfidence is the 2D confidence a joint must exceed to be used.
	MinConfidence float64 `mapstructure:"min_confidence"`
}

// Live configures the real-time mode.
type Live struct {
	MaxRate        float64       `mapstructure:"max_rate"`
	FeedbackWindow time.Duration `mapstructure:"feedback_window"`
}

// Batch configures the offline mode.
type Batch struct {
	SampleRate    float64       `mapstructure:"sample_rate"`
	Workers       int           `mapstructure:"workers"`
	PoseTolerance time.Duration `mapstructure:"pose_tolerance"`
}

// Log configures logging.
type Log struct {
	Level  string `mapstructure:"level"`
	File   string `mapstructure:"file"`
	JSON   bool   `mapstructure:"json"`
	Stdout bool   `mapstructure:"stdout"`
}

// Metrics configures the Prometheus text export.
type Metrics struct {
	// File receives the metrics at exit. Empty disables the export.
	File string `mapstructure:"file"`
}

// Output defines output preferences.
type Output struct {
	Color bool `mapstructure:"color"`
	Width int  `mapstructure:"width"`
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default location)
// and returns a Config with all defaults applied.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("scoring.min_confidence", DefaultScoring.MinConfidence)
	v.SetDefault("live.max_rate", DefaultLive.MaxRate)
	v.SetDefault("live.feedback_window", DefaultLive.FeedbackWindow)
	v.SetDefault("batch.sample_rate", DefaultBatch.SampleRate)
	v.SetDefault("batch.workers", DefaultBatch.Workers)
	v.SetDefault("batch.pose_tolerance", DefaultBatch.PoseTolerance)
	v.SetDefault("log.level", DefaultLog.Level)
	v.SetDefault("log.file", DefaultLog.File)
	v.SetDefault("log.json", DefaultLog.JSON)
	v.SetDefault("log.stdout", DefaultLog.Stdout)
	v.SetDefault("metrics.file", "")
	v.SetDefault("output.color", DefaultOutput.Color)
	v.SetDefault("output.width", DefaultOutput.Width)

	v.SetEnvPrefix("FORMWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		v.AddConfigPath(expandPath(DefaultConfigDir))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Read config file if it exists; missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.Log.File = expandPath(cfg.Log.File)
	cfg.Metrics.File = expandPath(cfg.Metrics.File)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the pipelines cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Scoring.MinConfidence < 0 || c.Scoring.MinConfidence >= 1 {
		errs = append(errs, fmt.Errorf("scoring.min_confidence must be in [0,1), got %v", c.Scoring.MinConfidence))
	}
	if c.Live.MaxRate < 0 {
		errs = append(errs, fmt.Errorf("live.max_rate must not be negative, got %v", c.Live.MaxRate))
	}
	if c.Live.FeedbackWindow <= 0 {
		errs = append(errs, fmt.Errorf("live.feedback_window must be positive, got %v", c.Live.FeedbackWindow))
	}
	if c.Batch.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("batch.sample_rate must be positive, got %v", c.Batch.SampleRate))
	}
	if c.Batch.Workers < 1 {
		errs = append(errs, fmt.Errorf("batch.workers must be at least 1, got %d", c.Batch.Workers))
	}
	if c.Batch.PoseTolerance < 0 {
		errs = append(errs, fmt.Errorf("batch.pose_tolerance must not be negative, got %v", c.Batch.PoseTolerance))
	}
	return errors.Join(errs...)
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}
