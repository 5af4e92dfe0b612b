package rabbitmq

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/bookreview/internal/domain/review"
	"github.com/xiebiao/bookreview/pkg/metrics"
)

// publisher pkg/mq.Publisher的最小接口（便于测试替换）
type publisher interface {
	Exchange() string
	Publish(ctx context.Context, routingKey string, message interface{}) error
}

// ReviewPublisher 评论事件发布者
// 事件类型直接作为routing key（review.created / review.updated / review.deleted）
type ReviewPublisher struct {
	pub    publisher
	logger *zap.Logger
}

// NewReviewPublisher 创建评论事件发布者
func NewReviewPublisher(pub publisher, logger *zap.Logger) *ReviewPublisher {
	return &ReviewPublisher{pub: pub, logger: logger}
}

// Publish 发布评论事件
func (p *ReviewPublisher) Publish(ctx context.Context, event review.Event) error {
	err := p.pub.Publish(ctx, event.Type, event)
	metrics.IncMessagePublished(p.pub.Exchange(), event.Type, err)
	if err != nil {
		return err
	}

	p.logger.Debug("评论事件已发布",
		zap.String("type", event.Type),
		zap.Uint("review_id", event.ReviewID),
		zap.Uint("book_id", event.BookID),
	)
	return nil
}
