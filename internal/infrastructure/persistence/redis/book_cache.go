package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/xiebiao/bookreview/internal/domain/book"
	"github.com/xiebiao/bookreview/internal/infrastructure/config"
	"github.com/xiebiao/bookreview/pkg/metrics"
)

const bookCacheBreaker = "redis_book_cache"

// bookCacheEntry 缓存中的图书元数据
type bookCacheEntry struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Genre     string    `json:"genre"`
	CreatedBy uint      `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// BookCache 图书元数据缓存（Cache-Aside）
// 设计说明：
// 1. 图书创建后不可修改，只缓存元数据，依靠TTL过期，不需要删除逻辑
// 2. 评分统计永远不进缓存，每次由评论表实时计算
// 3. 读写都经过熔断器，Redis故障时快速失败，由领域服务降级为直接查库
// 4. redis.Nil（未命中）不计入熔断失败
type BookCache struct {
	client  *redis.Client
	ttl     time.Duration
	breaker *gobreaker.CircuitBreaker[[]byte]
}

// NewBookCache 创建图书缓存
func NewBookCache(client *redis.Client, cfg *config.Config, log *zap.Logger) *BookCache {
	return &BookCache{
		client:  client,
		ttl:     cfg.Cache.BookTTL,
		breaker: newBreaker(bookCacheBreaker, cfg.Cache, log),
	}
}

func newBreaker(name string, cfg config.CacheConfig, log *zap.Logger) *gobreaker.CircuitBreaker[[]byte] {
	metrics.SetCircuitBreakerState(name, float64(gobreaker.StateClosed))

	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.BreakerMinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= cfg.BreakerFailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("熔断器状态变化",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			metrics.SetCircuitBreakerState(name, float64(to))
		},
	})
}

// Get 获取图书缓存
// 未命中返回book.ErrCacheMiss；熔断打开时返回gobreaker.ErrOpenState
func (c *BookCache) Get(ctx context.Context, id uint) (*book.Book, error) {
	data, err := c.execute(func() ([]byte, error) {
		return c.client.Get(ctx, bookKey(id)).Bytes()
	})
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, book.ErrCacheMiss
		}
		return nil, fmt.Errorf("获取图书缓存失败: %w", err)
	}

	var entry bookCacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("反序列化图书缓存失败: %w", err)
	}

	return &book.Book{
		ID:        entry.ID,
		Title:     entry.Title,
		Author:    entry.Author,
		Genre:     entry.Genre,
		CreatedBy: entry.CreatedBy,
		CreatedAt: entry.CreatedAt,
	}, nil
}

// Set 写入图书缓存
func (c *BookCache) Set(ctx context.Context, b *book.Book) error {
	data, err := json.Marshal(bookCacheEntry{
		ID:        b.ID,
		Title:     b.Title,
		Author:    b.Author,
		Genre:     b.Genre,
		CreatedBy: b.CreatedBy,
		CreatedAt: b.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("序列化图书缓存失败: %w", err)
	}

	_, err = c.execute(func() ([]byte, error) {
		return nil, c.client.Set(ctx, bookKey(b.ID), data, c.ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("设置图书缓存失败: %w", err)
	}
	return nil
}

// execute 通过熔断器执行Redis命令并记录指标
func (c *BookCache) execute(fn func() ([]byte, error)) ([]byte, error) {
	data, err := c.breaker.Execute(fn)

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.IncCircuitBreakerRequest(bookCacheBreaker, metrics.ResultRejected)
	case err != nil && !errors.Is(err, redis.Nil):
		metrics.IncCircuitBreakerRequest(bookCacheBreaker, metrics.ResultFailure)
	default:
		metrics.IncCircuitBreakerRequest(bookCacheBreaker, metrics.ResultSuccess)
	}

	return data, err
}

func bookKey(id uint) string {
	return fmt.Sprintf("bookreview:book:%d", id)
}
