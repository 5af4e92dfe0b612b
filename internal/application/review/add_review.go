package review

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/xiebiao/bookreview/internal/domain/book"
	"github.com/xiebiao/bookreview/internal/domain/review"
	"github.com/xiebiao/bookreview/internal/domain/user"
	"github.com/xiebiao/bookreview/pkg/logger"
	"github.com/xiebiao/bookreview/pkg/tracing"
)

// AddReviewUseCase 发表评论用例
// 设计说明:
// 1. 校验、去重、写入都在领域服务的同一个事务中完成
// 2. 事务提交后才发布review.created事件
// 3. 重复评论返回409,提示用户编辑已有评论
type AddReviewUseCase struct {
	reviewService review.Service
	details       responseDetails
	notifier      eventNotifier
}

// NewAddReviewUseCase 创建发表评论用例
func NewAddReviewUseCase(
	reviewService review.Service,
	users user.Repository,
	books book.Service,
	publisher review.EventPublisher,
) *AddReviewUseCase {
	return &AddReviewUseCase{
		reviewService: reviewService,
		details:       responseDetails{users: users, books: books},
		notifier:      newEventNotifier(publisher),
	}
}

// AddReviewRequest 发表评论请求DTO
type AddReviewRequest struct {
	BookID  uint
	UserID  uint // 当前登录用户ID
	Rating  int
	Comment string
}

// Execute 执行发表评论
func (uc *AddReviewUseCase) Execute(ctx context.Context, req AddReviewRequest) (resp *ReviewResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, "review."+opCreate)
	defer func() {
		observe(opCreate, err)
		tracing.End(span, err)
	}()
	span.SetAttributes(
		attribute.Int64("book.id", int64(req.BookID)),
		attribute.Int64("user.id", int64(req.UserID)),
	)

	r, err := uc.reviewService.AddReview(ctx, req.BookID, req.UserID, req.Rating, req.Comment)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("发表评论",
		zap.Uint("review_id", r.ID),
		zap.Uint("book_id", r.BookID),
		zap.Int("rating", r.Rating),
	)
	uc.notifier.notify(ctx, review.EventCreated, r)

	resp = newReviewResponse(r)
	uc.details.fill(ctx, resp)
	return resp, nil
}
