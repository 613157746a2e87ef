// Package logger configures the process-wide zerolog logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config selects the output format, level and optional log file.
type Config struct {
	// Env "production" writes JSON; anything else writes console lines.
	Env   string
	Level string
	// File, when set, also receives every event as JSON.
	File string
}

// levelRouter sends ERROR and above to stderr and everything else to
// stdout. When file is set it receives all events too.
type levelRouter struct {
	stdout io.Writer
	stderr io.Writer
	file   io.Writer
}

func (lr levelRouter) Write(p []byte) (int, error) {
	return lr.WriteLevel(zerolog.NoLevel, p)
}

func (lr levelRouter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	w := lr.stdout
	if level >= zerolog.ErrorLevel && level <= zerolog.PanicLevel {
		w = lr.stderr
	}
	if lr.file != nil {
		if _, err := lr.file.Write(p); err != nil {
			return 0, err
		}
	}
	return w.Write(p)
}

// Setup installs the global logger described by cfg and returns a cleanup
// function that closes the log file, if any.
func Setup(cfg Config) (func(), error) {
	l, cleanup, err := New(cfg, os.Stdout, os.Stderr)
	if err != nil {
		return nil, err
	}
	log.Logger = l
	zerolog.DefaultContextLogger = &log.Logger
	return cleanup, nil
}

// New builds a logger writing to stdout and stderr per cfg.
func New(cfg Config, stdout, stderr io.Writer) (zerolog.Logger, func(), error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if cfg.Env != "production" {
		stdout = zerolog.ConsoleWriter{Out: stdout, TimeFormat: time.TimeOnly}
		stderr = zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.TimeOnly}
	}
	router := levelRouter{stdout: stdout, stderr: stderr}

	cleanup := func() {}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Logger{}, nil, fmt.Errorf("opening log file: %w", err)
		}
		router.file = f
		cleanup = func() { f.Close() }
	}

	l := zerolog.New(router).Level(level).With().Timestamp().Logger()
	return l, cleanup, nil
}
