package logger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

var gormLevels = map[string]gormlogger.LogLevel{
	"silent": gormlogger.Silent,
	"error":  gormlogger.Error,
	"warn":   gormlogger.Warn,
	"info":   gormlogger.Info,
}

// ParseGormLevel maps database.log_level onto gorm's levels, defaulting to warn.
func ParseGormLevel(level string) gormlogger.LogLevel {
	if l, ok := gormLevels[strings.ToLower(level)]; ok {
		return l
	}
	return gormlogger.Warn
}

// GormLogger routes gorm's output through zap. Failed statements log at error,
// slow ones at warn and the rest at debug, each tagged with the request id.
type GormLogger struct {
	log   *zap.Logger
	level gormlogger.LogLevel
	slow  time.Duration
}

func NewGormLogger(log *zap.Logger, level gormlogger.LogLevel, slow time.Duration) *GormLogger {
	return &GormLogger{log: log.Named("gorm"), level: level, slow: slow}
}

func (g *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	c := *g
	c.level = level
	return &c
}

func (g *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	g.printf(ctx, gormlogger.Info, zapcore.InfoLevel, msg, data)
}

func (g *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	g.printf(ctx, gormlogger.Warn, zapcore.WarnLevel, msg, data)
}

func (g *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	g.printf(ctx, gormlogger.Error, zapcore.ErrorLevel, msg, data)
}

func (g *GormLogger) printf(ctx context.Context, need gormlogger.LogLevel, lvl zapcore.Level, msg string, data []any) {
	if g.level < need {
		return
	}
	if ce := g.log.Check(lvl, fmt.Sprintf(msg, data...)); ce != nil {
		ce.Write(requestFields(ctx)...)
	}
}

// Trace renders the statement only when the entry will be written.
func (g *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	var lvl zapcore.Level
	var msg string
	switch {
	case err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound) && g.level >= gormlogger.Error:
		lvl, msg = zapcore.ErrorLevel, "query failed"
	case g.slow > 0 && elapsed > g.slow && g.level >= gormlogger.Warn:
		lvl, msg = zapcore.WarnLevel, "slow query"
	case g.level >= gormlogger.Info:
		lvl, msg = zapcore.DebugLevel, "query"
	default:
		return
	}
	ce := g.log.Check(lvl, msg)
	if ce == nil {
		return
	}

	sql, rows := fc()
	fields := append(requestFields(ctx),
		zap.String("sql", sql),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	)
	switch lvl {
	case zapcore.ErrorLevel:
		fields = append(fields, zap.Error(err))
	case zapcore.WarnLevel:
		fields = append(fields, zap.Duration("threshold", g.slow))
	}
	ce.Write(fields...)
}

func requestFields(ctx context.Context) []zap.Field {
	if id := RequestIDFrom(ctx); id != "" {
		return []zap.Field{zap.String("request_id", id)}
	}
	return nil
}
