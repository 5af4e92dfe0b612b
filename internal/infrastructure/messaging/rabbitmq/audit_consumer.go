package rabbitmq

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/xiebiao/bookreview/internal/domain/review"
	"github.com/xiebiao/bookreview/pkg/mq"
)

// ReviewRoutingKeys 审计队列绑定的routing key
var ReviewRoutingKeys = []string{"review.*"}

// NewAuditHandler 创建评论审计处理函数
// 把每条评论事件写入结构化日志；消息体无法解析时直接丢弃（返回nil，避免毒消息反复入队）
func NewAuditHandler(logger *zap.Logger) mq.Handler {
	return func(ctx context.Context, routingKey string, body []byte) error {
		var event review.Event
		if err := json.Unmarshal(body, &event); err != nil {
			logger.Error("无法解析评论事件，丢弃",
				zap.String("routing_key", routingKey),
				zap.ByteString("body", body),
				zap.Error(err),
			)
			return nil
		}

		if event.Type != routingKey {
			logger.Warn("事件类型与routing key不一致",
				zap.String("routing_key", routingKey),
				zap.String("type", event.Type),
			)
		}

		logger.Info("评论审计",
			zap.String("type", event.Type),
			zap.Uint("review_id", event.ReviewID),
			zap.Uint("book_id", event.BookID),
			zap.Uint("user_id", event.UserID),
			zap.Int("rating", event.Rating),
			zap.Time("occurred_at", event.OccurredAt),
		)
		return nil
	}
}
