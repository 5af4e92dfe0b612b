package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

// TokenBlacklist JWT黑名单
// 设计说明：
// 1. JWT是无状态的，登出时把Token的jti写入Redis，鉴权中间件拒绝黑名单中的Token
// 2. Key设计：bookreview:blacklist:{jti}
// 3. 过期时间等于Token剩余有效期，Token自然过期后黑名单记录自动删除
type TokenBlacklist struct {
	client *redis.Client
}

// NewTokenBlacklist 创建Token黑名单
func NewTokenBlacklist(client *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{client: client}
}

// Add 将Token加入黑名单
// ttl<=0说明Token已经过期，无需记录
func (b *TokenBlacklist) Add(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	if err := b.client.Set(ctx, blacklistKey(tokenID), "revoked", ttl).Err(); err != nil {
		return apperrors.Wrap(err, "添加Token到黑名单失败")
	}
	return nil
}

// IsBlacklisted 检查Token是否在黑名单中
func (b *TokenBlacklist) IsBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	n, err := b.client.Exists(ctx, blacklistKey(tokenID)).Result()
	if err != nil {
		return false, apperrors.Wrap(err, "检查黑名单失败")
	}
	return n > 0, nil
}

func blacklistKey(tokenID string) string {
	return fmt.Sprintf("bookreview:blacklist:%s", tokenID)
}
