package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/bookreview/pkg/metrics"
)

// Metrics HTTP请求指标中间件
// route使用路由模板（/api/v1/books/:id），避免按实际路径产生高基数标签
func Metrics() gin.HandlerFunc {
	metrics.InitMetrics()

	return func(c *gin.Context) {
		start := time.Now()
		metrics.HTTPRequestsInProgress.Inc()
		defer metrics.HTTPRequestsInProgress.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		metrics.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
