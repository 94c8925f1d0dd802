// Copyright (c) 2026 Ripple contributors
// SPDX-License-Identifier: MIT

// Package logging provides structured logging for Ripple components.
//
// It is a thin wrapper around log/slog: a CLI-friendly default (Info level,
// stderr, text format) plus JSON/Quiet switches for scripting. Unlike the
// teacher's pkg/logging, there is no file sink or LogExporter — Ripple is a
// library plus a single CLI with no persistence layer (see DESIGN.md for
// why that enterprise surface was dropped rather than adapted).
package logging

import (
	"log/slog"
	"os"
)

// Level is the logging severity, ordered Debug < Info < Warn < Error.
type Level int

const (
	LevelDebug Level = iota - 1
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) toSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config configures a Logger. The zero value is a usable Info/text/stderr
// logger.
type Config struct {
	// Level sets the minimum severity that is emitted. Default: LevelInfo.
	Level Level

	// JSON selects JSON-formatted output over human-readable text.
	JSON bool

	// Quiet discards everything; useful for tests that don't want log
	// noise but still need a non-nil *Logger to pass around.
	Quiet bool
}

// Logger wraps a *slog.Logger with Ripple's four-level API.
type Logger struct {
	slog *slog.Logger
}

// New builds a Logger from config.
func New(config Config) *Logger {
	if config.Quiet {
		return &Logger{slog: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1}))}
	}
	opts := &slog.HandlerOptions{Level: config.Level.toSlogLevel()}
	var handler slog.Handler
	if config.JSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return &Logger{slog: slog.New(handler)}
}

// Default returns an Info-level, text-format, stderr logger.
func Default() *Logger {
	return New(Config{Level: LevelInfo})
}

func (l *Logger) Debug(msg string, args ...any) { l.slog.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.slog.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.slog.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.slog.Error(msg, args...) }

// With returns a child Logger carrying the given attributes on every entry.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{slog: l.slog.With(args...)}
}

// Slog returns the underlying slog.Logger for callers that need direct
// access (e.g. slog.NewLogLogger bridges, LogAttrs).
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}
