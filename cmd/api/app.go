package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xiebiao/bookreview/internal/domain/book"
	"github.com/xiebiao/bookreview/internal/domain/review"
	"github.com/xiebiao/bookreview/internal/infrastructure/config"
	"github.com/xiebiao/bookreview/internal/infrastructure/messaging/rabbitmq"
	"github.com/xiebiao/bookreview/internal/infrastructure/persistence/database"
	"github.com/xiebiao/bookreview/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookreview/pkg/jwt"
	"github.com/xiebiao/bookreview/pkg/mq"
)

// App 组装完成的应用
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	engine *gin.Engine

	// auditConsumer 未启用消息队列时为nil
	auditConsumer *mq.Consumer
}

func newApp(cfg *config.Config, logger *zap.Logger, engine *gin.Engine, auditConsumer *mq.Consumer) *App {
	return &App{
		cfg:           cfg,
		logger:        logger,
		engine:        engine,
		auditConsumer: auditConsumer,
	}
}

// newServer 创建HTTP服务器
func (a *App) newServer() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:      a.engine,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}
}

// consumeAudit 运行评论审计消费者，直到ctx取消
func (a *App) consumeAudit(ctx context.Context) error {
	if a.auditConsumer == nil {
		return nil
	}
	err := a.auditConsumer.Consume(ctx, rabbitmq.NewAuditHandler(a.logger))
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("评论审计消费者异常退出: %w", err)
	}
	return nil
}

// ========================================
// Custom Providers
// ========================================
// 构造函数的参数不能直接由其他Provider提供时（需要从Config提取、需要cleanup），
// 在这里包一层

// provideDB 创建数据库连接，cleanup时关闭连接池
func provideDB(cfg *config.Config, logger *zap.Logger) (*gorm.DB, func(), error) {
	db, err := database.NewDB(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := database.Close(db); err != nil {
			logger.Warn("关闭数据库连接失败", zap.Error(err))
		}
	}
	return db, cleanup, nil
}

// provideRedisClient 创建Redis客户端，cleanup时关闭
func provideRedisClient(cfg *config.Config, logger *zap.Logger) (*goredis.Client, func(), error) {
	client, err := redis.NewClient(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := client.Close(); err != nil {
			logger.Warn("关闭Redis连接失败", zap.Error(err))
		}
	}
	return client, cleanup, nil
}

// provideBookCache 图书缓存（带熔断）
func provideBookCache(client *goredis.Client, cfg *config.Config, logger *zap.Logger) book.Cache {
	return redis.NewBookCache(client, cfg, logger)
}

// provideJWTManager 从配置创建JWT管理器
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpire)
}

// provideEventPublisher 评论事件发布者
// mq.enabled=false时使用NopPublisher，不连接RabbitMQ
func provideEventPublisher(cfg *config.Config, logger *zap.Logger) (review.EventPublisher, func(), error) {
	if !cfg.MQ.Enabled {
		return review.NopPublisher{}, func() {}, nil
	}

	pub, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.ExchangeType, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := pub.Close(); err != nil {
			logger.Warn("关闭消息发布者失败", zap.Error(err))
		}
	}
	return rabbitmq.NewReviewPublisher(pub, logger), cleanup, nil
}

// provideAuditConsumer 评论审计消费者，未启用消息队列时返回nil
func provideAuditConsumer(cfg *config.Config, logger *zap.Logger) (*mq.Consumer, func(), error) {
	if !cfg.MQ.Enabled {
		return nil, func() {}, nil
	}

	consumer, err := mq.NewConsumer(
		cfg.MQ.URL,
		cfg.MQ.Exchange,
		cfg.MQ.ExchangeType,
		cfg.MQ.AuditQueue,
		rabbitmq.ReviewRoutingKeys,
		logger,
	)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := consumer.Close(); err != nil {
			logger.Warn("关闭消息消费者失败", zap.Error(err))
		}
	}
	return consumer, cleanup, nil
}
