package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/xiebiao/bookreview/pkg/logger"
)

// GormLogger 把GORM的SQL日志输出到zap
// 1. 默认只记录错误和慢查询(Warn级别)
// 2. LogMode(Info)时记录每条SQL(开发环境)
// 3. 记录不存在(ErrRecordNotFound)不算错误,由Repository转换为业务错误
// 4. 优先使用ctx中的请求级Logger,日志自动带上request_id
type GormLogger struct {
	base          *zap.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

// NewGormLogger 创建GORM日志适配器
func NewGormLogger(base *zap.Logger, slowThreshold time.Duration) *GormLogger {
	return &GormLogger{
		base:          base.WithOptions(zap.AddCallerSkip(3)).With(zap.String("component", "gorm")),
		level:         gormlogger.Warn,
		slowThreshold: slowThreshold,
	}
}

// LogMode 实现gormlogger.Interface
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		l.logger(ctx).Info(fmt.Sprintf(msg, args...))
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.logger(ctx).Warn(fmt.Sprintf(msg, args...))
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		l.logger(ctx).Error(fmt.Sprintf(msg, args...))
	}
}

// Trace 记录SQL执行情况
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	fields := []zap.Field{
		zap.String("sql", sql),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	}

	switch {
	case err != nil && l.level >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		l.logger(ctx).Error("SQL执行失败", append(fields, zap.Error(err))...)
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		l.logger(ctx).Warn("慢查询", append(fields, zap.Duration("threshold", l.slowThreshold))...)
	case l.level >= gormlogger.Info:
		l.logger(ctx).Debug("SQL", fields...)
	}
}

func (l *GormLogger) logger(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if reqLogger := logger.FromContext(ctx); reqLogger != zap.L() {
			return reqLogger.WithOptions(zap.AddCallerSkip(3)).With(zap.String("component", "gorm"))
		}
	}
	return l.base
}
