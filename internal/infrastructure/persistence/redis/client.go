package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xiebiao/bookreview/internal/infrastructure/config"
)

// NewClient 创建Redis客户端
// 设计说明：
// 1. 配置连接池参数（PoolSize、MinIdleConns）
// 2. 配置超时参数（DialTimeout、ReadTimeout、WriteTimeout）
// 3. 启动时测试连接可用性，失败直接返回错误（进程以非0状态退出）
func NewClient(cfg *config.Config, log *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(newOptions(cfg.Redis))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Redis.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("Redis连接失败: %w", err)
	}

	log.Info("Redis连接成功", zap.String("addr", cfg.Redis.Addr()))
	return client, nil
}

func newOptions(cfg config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}
