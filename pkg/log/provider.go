// Package log: default provider implementation.
//
// This file supplies the package-level GetLogger/GetLoggerWithName entry
// points backed by log/slog, so library code can log without wiring a
// provider. Applications may replace the provider (e.g. with a
// TestLoggerProvider) via SetProvider.

package log

import (
	"context"
	"log/slog"
	"os"
	"sync"
)

var (
	providerMu      sync.RWMutex
	defaultProvider LoggerProvider = newSlogProvider()
)

// SetProvider replaces the package-level logger provider.
func SetProvider(p LoggerProvider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	defaultProvider = p
}

// GetLogger returns the default logger of the current provider.
func GetLogger() Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return defaultProvider.GetLogger()
}

// GetLoggerWithName returns a named component logger from the current
// provider.
func GetLoggerWithName(name string) Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return defaultProvider.GetLoggerWithName(name)
}

// SetLevel sets the minimum level on the current provider.
func SetLevel(level Level) {
	providerMu.RLock()
	defer providerMu.RUnlock()
	defaultProvider.SetLevel(level)
}

// slogProvider is the default LoggerProvider. It writes JSON records to
// stderr through the stacktrace-formatting handler and stays at Warn level
// so library internals are quiet unless an application opts in.
type slogProvider struct {
	level  *slog.LevelVar
	logger *slog.Logger
}

func newSlogProvider() *slogProvider {
	level := new(slog.LevelVar)
	level.Set(slog.LevelWarn)
	handler := WrapByErrFmtHandler(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	return &slogProvider{
		level:  level,
		logger: slog.New(handler),
	}
}

func (p *slogProvider) GetLogger() Logger {
	return &slogLogger{l: p.logger}
}

func (p *slogProvider) GetLoggerWithName(name string) Logger {
	return &slogLogger{l: p.logger.With(ComponentKey, name)}
}

func (p *slogProvider) SetLevel(level Level) {
	p.level.Set(slog.Level(level))
}

// slogLogger adapts *slog.Logger to the Logger interface.
type slogLogger struct {
	l *slog.Logger
}

func (s *slogLogger) Debug(msg string, fields ...any) { s.l.Debug(msg, fields...) }
func (s *slogLogger) Info(msg string, fields ...any)  { s.l.Info(msg, fields...) }
func (s *slogLogger) Warn(msg string, fields ...any)  { s.l.Warn(msg, fields...) }
func (s *slogLogger) Error(msg string, fields ...any) { s.l.Error(msg, fields...) }

func (s *slogLogger) With(fields ...any) Logger {
	return &slogLogger{l: s.l.With(fields...)}
}

func (s *slogLogger) Enabled(ctx context.Context, level Level) bool {
	return s.l.Enabled(ctx, slog.Level(level))
}
