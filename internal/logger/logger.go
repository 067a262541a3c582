// Package logger builds the zerolog logger shared by the server, the
// HTTP middleware and the storage layer.
package logger

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"
)

// New returns a logger configured for the given environment.
//
// Development (dev): human-readable console output at DEBUG level.
// Staging: JSON at DEBUG level.
// Production (prod): JSON at INFO level.
func New(env string) zerolog.Logger {
	return NewWithWriter(env, os.Stdout)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(env string, w io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	switch env {
	case "prod":
		return zerolog.New(w).With().Timestamp().Logger().Level(zerolog.InfoLevel)
	case "staging":
		return zerolog.New(w).With().Timestamp().Logger().Level(zerolog.DebugLevel)
	default:
		return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
			With().Timestamp().Logger().Level(zerolog.DebugLevel)
	}
}

// Gorm adapts a zerolog logger to gorm's logger interface. Queries are
// traced at debug level; anything slower than SlowThreshold is a warning.
type Gorm struct {
	Log           zerolog.Logger
	SlowThreshold time.Duration
	level         gormlogger.LogLevel
}

// NewGorm wraps l for use as gorm.Config.Logger.
func NewGorm(l zerolog.Logger) *Gorm {
	return &Gorm{Log: l, SlowThreshold: 200 * time.Millisecond, level: gormlogger.Warn}
}

func (g *Gorm) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *g
	cp.level = level
	return &cp
}

func (g *Gorm) Info(_ context.Context, msg string, args ...any) {
	if g.level >= gormlogger.Info {
		g.Log.Info().Msgf(msg, args...)
	}
}

func (g *Gorm) Warn(_ context.Context, msg string, args ...any) {
	if g.level >= gormlogger.Warn {
		g.Log.Warn().Msgf(msg, args...)
	}
}

func (g *Gorm) Error(_ context.Context, msg string, args ...any) {
	if g.level >= gormlogger.Error {
		g.Log.Error().Msgf(msg, args...)
	}
}

func (g *Gorm) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	// not-found is an expected outcome for lookups, the handler decides
	case err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound) && g.level >= gormlogger.Error:
		g.Log.Error().Err(err).Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("query failed")
	case elapsed > g.SlowThreshold && g.SlowThreshold > 0 && g.level >= gormlogger.Warn:
		g.Log.Warn().Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("slow query")
	case g.level >= gormlogger.Info:
		g.Log.Debug().Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("query")
	}
}
