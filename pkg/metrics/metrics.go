// Package metrics 基于Prometheus的指标收集
//
// 指标分三类：
//   - HTTP：请求数、耗时、处理中的请求数（由middleware.Metrics记录）
//   - 评论业务：评论写操作结果、重复评论冲突、搜索耗时
//   - 基础设施：熔断器状态、消息发布结果
//
// 使用方式：
//
//	metrics.InitMetrics()
//	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
//
// 命名规范：Counter以_total结尾，Histogram以单位结尾（_seconds）。
// 标签只使用有限取值的维度（method、route、op、result），不使用user_id、book_id。
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bookreview"

// 操作结果标签值
const (
	ResultSuccess  = "success"
	ResultFailure  = "failure"
	ResultRejected = "rejected"
)

var (
	initOnce sync.Once

	// HTTPRequestsTotal HTTP请求总数
	// 标签：method、route（路由模板，如/api/v1/books/:id）、status
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress prometheus.Gauge

	// ReviewOperationsTotal 评论写操作总数
	// 标签：op（create/update/delete）、result（success/failure）
	ReviewOperationsTotal *prometheus.CounterVec

	// ReviewConflictsTotal 重复评论被拒绝的次数
	ReviewConflictsTotal prometheus.Counter

	// SearchDuration 图书搜索耗时
	SearchDuration prometheus.Histogram

	// CircuitBreakerState 熔断器状态（0=CLOSED, 1=HALF_OPEN, 2=OPEN）
	CircuitBreakerState *prometheus.GaugeVec

	// CircuitBreakerRequests 熔断器请求总数
	// 标签：name、result（success/failure/rejected）
	CircuitBreakerRequests *prometheus.CounterVec

	// MessagesPublishedTotal 消息发布总数
	// 标签：exchange、routing_key、result
	MessagesPublishedTotal *prometheus.CounterVec
)

// InitMetrics 注册所有指标到默认Registry（可重复调用，只注册一次）
func InitMetrics() {
	initOnce.Do(func() {
		HTTPRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP请求总数",
			},
			[]string{"method", "route", "status"},
		)

		HTTPRequestDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP请求耗时（秒）",
				Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"method", "route"},
		)

		HTTPRequestsInProgress = promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_progress",
				Help:      "正在处理的HTTP请求数",
			},
		)

		ReviewOperationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "review_operations_total",
				Help:      "评论写操作总数",
			},
			[]string{"op", "result"},
		)

		ReviewConflictsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "review_conflicts_total",
				Help:      "重复评论被拒绝次数",
			},
		)

		SearchDuration = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "search_duration_seconds",
				Help:      "图书搜索耗时（秒）",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
		)

		CircuitBreakerState = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "circuit_breaker_state",
				Help:      "熔断器状态（0=CLOSED, 1=HALF_OPEN, 2=OPEN）",
			},
			[]string{"name"},
		)

		CircuitBreakerRequests = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "circuit_breaker_requests_total",
				Help:      "熔断器请求总数",
			},
			[]string{"name", "result"},
		)

		MessagesPublishedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_published_total",
				Help:      "消息发布总数",
			},
			[]string{"exchange", "routing_key", "result"},
		)
	})
}

// ObserveReviewOperation 记录一次评论写操作
func ObserveReviewOperation(op string, err error) {
	InitMetrics()
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	ReviewOperationsTotal.WithLabelValues(op, result).Inc()
}

// IncReviewConflict 记录一次重复评论冲突
func IncReviewConflict() {
	InitMetrics()
	ReviewConflictsTotal.Inc()
}

// ObserveSearch 记录搜索耗时（秒）
func ObserveSearch(seconds float64) {
	InitMetrics()
	SearchDuration.Observe(seconds)
}

// SetCircuitBreakerState 记录熔断器状态
func SetCircuitBreakerState(name string, state float64) {
	InitMetrics()
	CircuitBreakerState.WithLabelValues(name).Set(state)
}

// IncCircuitBreakerRequest 记录熔断器请求结果
func IncCircuitBreakerRequest(name, result string) {
	InitMetrics()
	CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}

// IncMessagePublished 记录消息发布结果
func IncMessagePublished(exchange, routingKey string, err error) {
	InitMetrics()
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	MessagesPublishedTotal.WithLabelValues(exchange, routingKey, result).Inc()
}
