package review

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bookreview/internal/domain/book"
	"github.com/xiebiao/bookreview/internal/domain/review"
	"github.com/xiebiao/bookreview/internal/domain/user"
	"github.com/xiebiao/bookreview/pkg/logger"
	"github.com/xiebiao/bookreview/pkg/metrics"
)

// 评论操作名(指标标签和Span名称)
const (
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
)

// ReviewResponse 评论响应DTO
type ReviewResponse struct {
	ID           uint      `json:"id"`
	BookID       uint      `json:"book_id"`
	BookTitle    string    `json:"book_title"`
	UserID       uint      `json:"user_id"`
	ReviewerName string    `json:"reviewer_name"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func newReviewResponse(r *review.Review) *ReviewResponse {
	return &ReviewResponse{
		ID:        r.ID,
		BookID:    r.BookID,
		UserID:    r.UserID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// responseDetails 补充评论者名称和图书标题
// 评论已经提交,查询失败只记录日志,对应字段留空
type responseDetails struct {
	users user.Repository
	books book.Service
}

func (d responseDetails) fill(ctx context.Context, resp *ReviewResponse) {
	if u, err := d.users.FindByID(ctx, resp.UserID); err != nil {
		logger.FromContext(ctx).Warn("查询评论者失败", zap.Uint("user_id", resp.UserID), zap.Error(err))
	} else {
		resp.ReviewerName = u.Name
	}

	if b, err := d.books.GetBookByID(ctx, resp.BookID); err != nil {
		logger.FromContext(ctx).Warn("查询图书失败", zap.Uint("book_id", resp.BookID), zap.Error(err))
	} else {
		resp.BookTitle = b.Title
	}
}

// eventNotifier 事务提交后发布评论事件
// 发布失败只记录日志:评论已经落库,事件是旁路通知
type eventNotifier struct {
	publisher review.EventPublisher
	now       func() time.Time
}

func newEventNotifier(publisher review.EventPublisher) eventNotifier {
	return eventNotifier{publisher: publisher, now: time.Now}
}

func (n eventNotifier) notify(ctx context.Context, eventType string, r *review.Review) {
	event := review.NewEvent(eventType, r, n.now())
	if err := n.publisher.Publish(ctx, event); err != nil {
		logger.FromContext(ctx).Warn("发布评论事件失败",
			zap.String("type", eventType),
			zap.Uint("review_id", r.ID),
			zap.Error(err),
		)
	}
}

// observe 记录评论写操作指标
func observe(op string, err error) {
	metrics.ObserveReviewOperation(op, err)
	if errors.Is(err, review.ErrReviewDuplicate) {
		metrics.IncReviewConflict()
	}
}
