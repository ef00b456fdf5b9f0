package config

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// NewLogger builds the process logger from LoggingConfig and installs it as
// the zerolog global so library code logging through log.Logger agrees with
// the request pipeline. Unknown levels fall back to info rather than fail.
func NewLogger(cfg LoggingConfig) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	logger := zerolog.New(logWriter(cfg.Format)).
		Level(logLevel(cfg.Level)).
		With().Timestamp().Logger()

	log.Logger = logger
	return logger
}

func logLevel(name string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(name))
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// logWriter picks the output: JSON to stdout by default, or the human
// console writer when the config asks for it.
func logWriter(format string) io.Writer {
	if strings.EqualFold(format, "console") {
		return zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return os.Stdout
}
