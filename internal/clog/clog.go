// Package clog initializes the ambient structured logger: a slog handler
// fanned out across console/file outputs, with file output rotated by
// lumberjack.
package clog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"cyre.run/cyre/internal/config"
)

// Init builds the global slog logger from cfg and installs it as the
// package default. Safe to call more than once (e.g. on façade re-init).
func Init(cfg config.LogConfig) error {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("clog: %w", err)
	}

	var writers []io.Writer
	for i, out := range cfg.Outputs {
		w, err := createWriter(out)
		if err != nil {
			return fmt.Errorf("clog: output[%d] (%s): %w", i, out.Type, err)
		}
		if w != nil {
			writers = append(writers, w)
		}
	}
	if len(writers) == 0 {
		writers = append(writers, os.Stdout)
	}
	dest := io.MultiWriter(writers...)

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "text":
		handler = slog.NewTextHandler(dest, opts)
	case "", "json":
		handler = slog.NewJSONHandler(dest, opts)
	default:
		return fmt.Errorf("clog: unsupported format %q", cfg.Format)
	}

	slog.SetDefault(slog.New(handler))
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

func createWriter(out config.OutputConfig) (io.Writer, error) {
	switch strings.ToLower(out.Type) {
	case "", "console", "stdout":
		return os.Stdout, nil
	case "file":
		if out.Path == "" {
			return nil, fmt.Errorf("file output requires a path")
		}
		return &lumberjack.Logger{
			Filename:   out.Path,
			MaxSize:    out.MaxSizeMB,
			MaxBackups: out.MaxBackups,
			MaxAge:     out.MaxAgeDays,
			Compress:   out.Compress,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported output type %q", out.Type)
	}
}
