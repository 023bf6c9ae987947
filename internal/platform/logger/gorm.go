package logger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSlowThreshold = 200 * time.Millisecond

type gormLogger struct {
	log           *Logger
	slowThreshold time.Duration
	logLevel      gormlogger.LogLevel
}

// NewGormLogger adapts l to gorm's logger interface. Unknown levels fall back to warn.
func NewGormLogger(l *Logger, level string) (gormlogger.Interface, error) {
	lvl, err := ParseGormLogLevel(level)
	return &gormLogger{log: l.With("component", "gorm"), slowThreshold: defaultSlowThreshold, logLevel: lvl}, err
}

func (g *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *g
	clone.logLevel = level
	return &clone
}

func (g *gormLogger) Info(_ context.Context, msg string, data ...interface{}) {
	if g.logLevel >= gormlogger.Info {
		g.log.Info(fmt.Sprintf(msg, data...))
	}
}

func (g *gormLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	if g.logLevel >= gormlogger.Warn {
		g.log.Warn(fmt.Sprintf(msg, data...))
	}
}

func (g *gormLogger) Error(_ context.Context, msg string, data ...interface{}) {
	if g.logLevel >= gormlogger.Error {
		g.log.Error(fmt.Sprintf(msg, data...))
	}
}

func (g *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.logLevel == gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && g.logLevel >= gormlogger.Error:
		sql, rows := fc()
		g.log.Error("gorm query error", "elapsed", elapsed, "rows", rows, "sql", sql, "error", err)
	case err == nil && elapsed > g.slowThreshold && g.logLevel >= gormlogger.Warn:
		sql, rows := fc()
		g.log.Warn("gorm slow query", "elapsed", elapsed, "rows", rows, "sql", sql, "threshold", g.slowThreshold)
	case err == nil && g.logLevel >= gormlogger.Info:
		sql, rows := fc()
		g.log.Debug("gorm query", "elapsed", elapsed, "rows", rows, "sql", sql)
	}
}

func ParseGormLogLevel(value string) (gormlogger.LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "silent":
		return gormlogger.Silent, nil
	case "error":
		return gormlogger.Error, nil
	case "", "warn":
		return gormlogger.Warn, nil
	case "info":
		return gormlogger.Info, nil
	default:
		return gormlogger.Warn, fmt.Errorf("invalid gorm log level %q", value)
	}
}
