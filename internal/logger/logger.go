package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls the rotated log file.
type Config struct {
	LogDir     string
	LogFile    string
	MaxSize    int  // MB per file before rotation
	MaxBackups int  // rotated files to retain
	MaxAge     int  // days to retain rotated files
	Compress   bool // gzip rotated files
	Console    bool // mirror to stdout
}

// DefaultConfig returns the stock logging configuration.
func DefaultConfig() *Config {
	return &Config{
		LogDir:     "logs",
		LogFile:    "screentimed.log",
		MaxSize:    100,
		MaxBackups: 10,
		MaxAge:     30,
		Compress:   true,
		Console:    true,
	}
}

// Setup routes the standard library logger to a size-rotated file, and
// optionally to stdout as well. Everything in the daemon logs through the
// stdlib log package, so this is the single switch for log output.
func Setup(cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := os.MkdirAll(cfg.LogDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	logPath := filepath.Join(cfg.LogDir, cfg.LogFile)
	rotated := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	var writer io.Writer = rotated
	if cfg.Console {
		writer = io.MultiWriter(os.Stdout, rotated)
	}

	log.SetOutput(writer)
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)

	log.Printf("📝 Logging to %s (rotate at %dMB, keep %d files / %d days)",
		logPath, cfg.MaxSize, cfg.MaxBackups, cfg.MaxAge)
	return nil
}
