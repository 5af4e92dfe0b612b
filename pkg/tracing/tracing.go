// Package tracing 基于OpenTelemetry的分布式追踪
//
// 调用链：
//
//	otelgin中间件（HTTP根Span）
//	  → 用例层 StartSpan("review.add")
//	    → GORM查询 / Redis / RabbitMQ
//
// 关闭追踪（tracing.enabled=false）时不创建Exporter，全局Provider保持otel默认的no-op实现，
// 业务代码中的StartSpan依然可以安全调用。
package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// TracerName 本服务Tracer名称
const TracerName = "github.com/xiebiao/bookreview"

// Options 追踪配置
type Options struct {
	Enabled     bool
	ServiceName string
	Environment string
	Endpoint    string  // OTLP gRPC端点，如 localhost:4317
	SampleRatio float64 // 采样率，0~1
}

// ShutdownFunc 关闭函数，程序退出前调用以刷新剩余Span
type ShutdownFunc func(context.Context) error

// InitTracer 初始化全局TracerProvider
func InitTracer(ctx context.Context, opts Options) (ShutdownFunc, error) {
	if !opts.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exporter, err := otlptracegrpc.New(
		dialCtx,
		otlptracegrpc.WithEndpoint(opts.Endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("创建OTLP exporter失败: %w", err)
	}

	res, err := resource.New(
		ctx,
		resource.WithAttributes(
			semconv.ServiceName(opts.ServiceName),
			semconv.DeploymentEnvironment(opts.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("创建资源属性失败: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(opts.SampleRatio))),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return tp.Shutdown(ctx)
	}, nil
}

// StartSpan 创建Span（ctx中有父Span时自动成为子Span）
func StartSpan(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, spanName, opts...)
}

// End 根据错误设置Span状态并结束Span
//
//	ctx, span := tracing.StartSpan(ctx, "review.add")
//	defer func() { tracing.End(span, err) }()
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// ExtractTraceID 从Context提取TraceID（用于日志关联）
func ExtractTraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}

// ExtractSpanID 从Context提取SpanID
func ExtractSpanID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return sc.SpanID().String()
}
