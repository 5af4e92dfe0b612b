// Package logger 基于zap的结构化日志
//
// 设计说明：
// 1. 启动时根据配置构建*zap.Logger，并替换zap全局Logger（zap.L()）
// 2. 请求级Logger（带request_id、trace_id）通过context.Context传递
// 3. 业务代码统一使用 logger.FromContext(ctx) 获取Logger，取不到时退回全局Logger
package logger

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options 日志配置
type Options struct {
	Level        string // debug | info | warn | error
	Format       string // console | json
	Output       string // stdout | stderr | /path/to/file
	EnableCaller bool
}

type ctxKey struct{}

// New 创建zap Logger并设置为全局Logger
func New(opts Options) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(defaultString(opts.Level, "info")))
	if err != nil {
		return nil, fmt.Errorf("无效的日志级别 %q: %w", opts.Level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableCaller = !opts.EnableCaller

	switch strings.ToLower(defaultString(opts.Format, "json")) {
	case "console":
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	case "json":
		cfg.Encoding = "json"
	default:
		return nil, fmt.Errorf("无效的日志格式: %s", opts.Format)
	}

	output := defaultString(opts.Output, "stdout")
	cfg.OutputPaths = []string{output}
	cfg.ErrorOutputPaths = []string{"stderr"}

	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("创建日志失败: %w", err)
	}

	zap.ReplaceGlobals(l)
	return l, nil
}

// WithContext 把Logger放入Context
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext 从Context取Logger，没有则返回全局Logger
func FromContext(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return zap.L()
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
