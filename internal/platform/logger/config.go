package logger

import "os"

// LoggerConfig controls the zap setup. Values come from the
// environment so logging can be tuned without touching the main
// config file.
type LoggerConfig struct {
	Level      string // debug, info, warn, error
	Format     string // json or console
	OutputFile string // stdout, stderr, or a file path
}

func DefaultConfig() *LoggerConfig {
	cfg := &LoggerConfig{
		Level:      "info",
		Format:     "json",
		OutputFile: "stdout",
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("LOG_OUTPUT"); v != "" {
		cfg.OutputFile = v
	}
	return cfg
}
