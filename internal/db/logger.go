package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"expensetracker/internal/log"
)

const slowQueryThreshold = 200 * time.Millisecond

// Field names used by the query logger.
const (
	fieldSQL  = "sql"
	fieldRows = "rows"
)

// queryLogger forwards GORM output to the service logger so queries follow
// the configured format and level. Missing records are not errors here:
// callers check gorm.ErrRecordNotFound themselves.
type queryLogger struct {
	log   *log.Logger
	level gormlogger.LogLevel
	slow  time.Duration
}

// NewQueryLogger adapts logger to GORM's logger interface. Failed and slow
// queries are logged at error and warn; every query is logged at debug when
// GORM runs in info mode.
func NewQueryLogger(logger *log.Logger) gormlogger.Interface {
	return &queryLogger{log: logger, level: gormlogger.Warn, slow: slowQueryThreshold}
}

func (l *queryLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *queryLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		l.log.InfoContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *queryLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.log.WarnContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *queryLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		l.log.ErrorContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *queryLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	switch {
	case err != nil && l.level >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		l.log.ErrorContext(ctx, "query failed",
			log.FieldError, err.Error(), fieldSQL, sql, fieldRows, rows, log.FieldDuration, elapsed.Milliseconds())
	case l.slow > 0 && elapsed > l.slow && l.level >= gormlogger.Warn:
		sql, rows := fc()
		l.log.WarnContext(ctx, "slow query",
			fieldSQL, sql, fieldRows, rows, log.FieldDuration, elapsed.Milliseconds())
	case l.level >= gormlogger.Info:
		sql, rows := fc()
		l.log.DebugContext(ctx, "query",
			fieldSQL, sql, fieldRows, rows, log.FieldDuration, elapsed.Milliseconds())
	}
}
