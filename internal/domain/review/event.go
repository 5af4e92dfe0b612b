package review

import (
	"context"
	"time"
)

// 评论事件类型(同时作为消息的routing key)
const (
	EventCreated = "review.created"
	EventUpdated = "review.updated"
	EventDeleted = "review.deleted"
)

// Event 评论变更事件
// 在事务提交后发布,发布失败只记录日志,不影响请求结果
type Event struct {
	Type       string    `json:"type"`
	ReviewID   uint      `json:"review_id"`
	BookID     uint      `json:"book_id"`
	UserID     uint      `json:"user_id"`
	Rating     int       `json:"rating,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent 根据评论构造事件
func NewEvent(eventType string, r *Review, at time.Time) Event {
	return Event{
		Type:       eventType,
		ReviewID:   r.ID,
		BookID:     r.BookID,
		UserID:     r.UserID,
		Rating:     r.Rating,
		OccurredAt: at,
	}
}

// EventPublisher 评论事件发布接口
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher 不发布任何事件(未启用消息队列时使用)
type NopPublisher struct{}

// Publish 直接返回nil
func (NopPublisher) Publish(context.Context, Event) error { return nil }
