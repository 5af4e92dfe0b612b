package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "github.com/xiebiao/bookreview/docs"
	"github.com/xiebiao/bookreview/internal/infrastructure/config"
	"github.com/xiebiao/bookreview/pkg/logger"
	"github.com/xiebiao/bookreview/pkg/metrics"
	"github.com/xiebiao/bookreview/pkg/tracing"
)

// @title           图书评论服务 API
// @version         1.0
// @description     图书目录、搜索与评论服务：每个用户对每本书最多一条评论，评分统计实时计算
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
// @description     格式：Bearer {token}
func main() {
	if err := run(); err != nil {
		log.Fatalf("服务异常退出: %v", err)
	}
}

// run 启动流程：配置 → 日志 → 追踪 → 依赖注入 → HTTP服务/消费者 → 优雅关闭
func run() error {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// 2. 初始化日志
	zl, err := logger.New(logger.Options{
		Level:        cfg.Log.Level,
		Format:       cfg.Log.Format,
		Output:       cfg.Log.Output,
		EnableCaller: cfg.Log.EnableCaller,
	})
	if err != nil {
		return err
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. 初始化链路追踪（未启用时为空实现）
	shutdownTracer, err := tracing.InitTracer(ctx, tracing.Options{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Server.Name,
		Environment: cfg.Server.Env,
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		return err
	}

	metrics.InitMetrics()

	// 4. 依赖注入（wire_gen.go）
	app, cleanup, err := InitializeApp(cfg, zl)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := app.newServer()
	g, gctx := errgroup.WithContext(ctx)

	// 5. 启动HTTP服务
	g.Go(func() error {
		zl.Info("服务启动成功",
			zap.String("addr", srv.Addr),
			zap.String("mode", cfg.Server.Mode),
			zap.String("db_driver", cfg.Database.Driver),
			zap.Bool("mq_enabled", cfg.MQ.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// 6. 评论审计消费者（mq.enabled=false时直接返回）
	g.Go(func() error {
		return app.consumeAudit(gctx)
	})

	// 7. 优雅关闭：收到信号或任一组件退出后，停止接收新请求，等待处理中的请求完成
	g.Go(func() error {
		<-gctx.Done()
		zl.Info("正在优雅关闭服务...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			zl.Error("HTTP服务器强制关闭", zap.Error(err))
		}
		if err := shutdownTracer(shutdownCtx); err != nil {
			zl.Warn("关闭TracerProvider失败", zap.Error(err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	zl.Info("服务已关闭")
	return nil
}
