package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xiebiao/bookreview/pkg/logger"
	"github.com/xiebiao/bookreview/pkg/tracing"
)

const headerRequestID = "X-Request-Id"

// RequestLogger 请求日志中间件
// 1. 生成（或透传）request_id，写入响应头
// 2. 把带request_id、trace_id的logger放进请求Context，后续各层用logger.FromContext获取
// 3. 请求结束后按状态码选择日志级别
func RequestLogger(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := strings.TrimSpace(c.GetHeader(headerRequestID))
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Writer.Header().Set(headerRequestID, reqID)
		c.Set("request_id", reqID)

		fields := []zap.Field{zap.String("request_id", reqID)}
		if traceID := tracing.ExtractTraceID(c.Request.Context()); traceID != "" {
			fields = append(fields, zap.String("trace_id", traceID))
		}
		reqLogger := base.With(fields...)
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), reqLogger))

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		status := c.Writer.Status()
		logFields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.String("client_ip", c.ClientIP()),
		}
		if userID := GetUserID(c); userID != 0 {
			logFields = append(logFields, zap.Uint("user_id", userID))
		}

		switch {
		case status >= 500:
			reqLogger.Error("HTTP request", logFields...)
		case status >= 400:
			reqLogger.Warn("HTTP request", logFields...)
		default:
			reqLogger.Info("HTTP request", logFields...)
		}
	}
}
