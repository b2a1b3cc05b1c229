// Package config provides configuration loading and defaults for formwatch.
package config

import "time"

// DefaultConfigDir is the default location for formwatch configuration.
const DefaultConfigDir = "~/.config/formwatch"

// DefaultScoring holds the scorer defaults.
var DefaultScoring = Scoring{
	MinConfidence: 0.5,
}

// DefaultLive holds the real-time mode defaults.
var DefaultLive = Live{
	MaxRate:        10,
	FeedbackWindow: 3 * time.Second,
}

// DefaultBatch holds the batch mode defaults.
var DefaultBatch = Batch{
	SampleRate:    5,
	Workers:       4,
	PoseTolerance: 100 * time.Millisecond,
}

// DefaultLog holds the logging defaults.
var DefaultLog = Log{
	Level:  "info",
	Stdout: true,
}

// DefaultOutput holds the terminal output defaults.
var DefaultOutput = Output{
	Color: true,
	Width: 80,
}

// Default returns a Config holding every default, as Load does with no
// file and no environment overrides.
func Default() *Config {
	return &Config{
		Scoring: DefaultScoring,
		Live:    DefaultLive,
		Batch:   DefaultBatch,
		Log:     DefaultLog,
		Output:  DefaultOutput,
	}
}
