// Package logging provides structured logging functionality.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string
	Console    bool
	File       bool
	FilePath   string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
}

// DefaultLogConfig returns the default logging configuration.
func DefaultLogConfig() LogConfig {
	home, _ := os.UserHomeDir()
	return LogConfig{
		Level:      "info",
		Console:    true,
		File:       true,
		FilePath:   filepath.Join(home, ".config", "panwatch", "logs", "panwatch.log"),
		MaxSize:    100,
		MaxBackups: 7,
		MaxAge:     30,
	}
}

// NewLogger creates a new logger with default configuration.
func NewLogger() zerolog.Logger {
	return NewLoggerWithConfig(DefaultLogConfig())
}

// NewLoggerWithConfig creates a new logger with the specified configuration.
func NewLoggerWithConfig(cfg LogConfig) zerolog.Logger {
	var writers []io.Writer

	// Console writer
	if cfg.Console {
		consoleWriter := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
			FormatLevel: func(i interface{}) string {
				if ll, ok := i.(string); ok {
					switch ll {
					case "debug":
						return "\033[36mDBG\033[0m"
					case "info":
						return "\033[32mINF\033[0m"
					case "warn":
						return "\033[33mWRN\033[0m"
					case "error":
						return "\033[31mERR\033[0m"
					default:
						return ll
					}
				}
				return "???"
			},
		}
		writers = append(writers, consoleWriter)
	}

	// File writer with rotation
	if cfg.File {
		// Ensure log directory exists
		logDir := filepath.Dir(cfg.FilePath)
		if err := os.MkdirAll(logDir, 0755); err == nil {
			fileWriter := &lumberjack.Logger{
				Filename:   cfg.FilePath,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   true,
			}
			writers = append(writers, fileWriter)
		}
	}

	// Create multi-writer
	var writer io.Writer
	if len(writers) == 0 {
		writer = os.Stdout
	} else if len(writers) == 1 {
		writer = writers[0]
	} else {
		writer = zerolog.MultiLevelWriter(writers...)
	}

	// Set log level
	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	// Create logger
	logger := zerolog.New(writer).
		With().
		Timestamp().
		Caller().
		Logger()

	return logger
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// SetDebugLevel sets the global log level to debug.
func SetDebugLevel() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
}

// WithAgent adds an agent name to the logger context.
func WithAgent(logger zerolog.Logger, agentName string) zerolog.Logger {
	return logger.With().Str("agent", agentName).Logger()
}

// WithMarket adds a market code to the logger context.
func WithMarket(logger zerolog.Logger, marketCode string) zerolog.Logger {
	return logger.With().Str("market", marketCode).Logger()
}

// WithRunID adds a run ID to the logger context.
func WithRunID(logger zerolog.Logger, runID string) zerolog.Logger {
	return logger.With().Str("run_id", runID).Logger()
}

// LogRun logs the outcome of one agent run.
func LogRun(logger zerolog.Logger, agentName, status string, duration time.Duration, err error) {
	if err != nil {
		logger.Error().
			Str("event", "agent_run").
			Str("agent", agentName).
			Str("status", status).
			Dur("duration", duration).
			Err(err).
			Msg("Agent run finished")
		return
	}
	logger.Info().
		Str("event", "agent_run").
		Str("agent", agentName).
		Str("status", status).
		Dur("duration", duration).
		Msg("Agent run finished")
}

// LogCollection logs one market quote collection.
func LogCollection(logger zerolog.Logger, marketCode string, requested, received int, duration time.Duration) {
	logger.Debug().
		Str("event", "collection").
		Str("market", marketCode).
		Int("requested", requested).
		Int("received", received).
		Dur("duration", duration).
		Msg("Quote collection completed")
}

// LogSchedule logs a registration event on the scheduler.
func LogSchedule(logger zerolog.Logger, agentName, trigger string, nextRun time.Time) {
	logger.Info().
		Str("event", "schedule").
		Str("agent", agentName).
		Str("trigger", trigger).
		Time("next_run", nextRun).
		Msg("Agent scheduled")
}

// LogNotification logs a notification delivery attempt.
func LogNotification(logger zerolog.Logger, channel string, attempts int, err error) {
	event := logger.Debug().
		Str("event", "notification").
		Str("channel", channel).
		Int("attempts", attempts)

	if err != nil {
		event.Err(err).Msg("Notification failed")
	} else {
		event.Msg("Notification sent")
	}
}
