package review

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/bookreview/internal/domain/review"
	"github.com/xiebiao/bookreview/pkg/tracing"
)

// DeleteReviewUseCase 删除评论用例
type DeleteReviewUseCase struct {
	reviewService review.Service
	notifier      eventNotifier
}

// NewDeleteReviewUseCase 创建删除评论用例
func NewDeleteReviewUseCase(reviewService review.Service, publisher review.EventPublisher) *DeleteReviewUseCase {
	return &DeleteReviewUseCase{
		reviewService: reviewService,
		notifier:      newEventNotifier(publisher),
	}
}

// DeleteReviewRequest 删除评论请求DTO
type DeleteReviewRequest struct {
	ReviewID uint
	UserID   uint
}

// Execute 执行删除评论
func (uc *DeleteReviewUseCase) Execute(ctx context.Context, req DeleteReviewRequest) (err error) {
	ctx, span := tracing.StartSpan(ctx, "review."+opDelete)
	defer func() {
		observe(opDelete, err)
		tracing.End(span, err)
	}()
	span.SetAttributes(
		attribute.Int64("review.id", int64(req.ReviewID)),
		attribute.Int64("user.id", int64(req.UserID)),
	)

	r, err := uc.reviewService.DeleteReview(ctx, req.ReviewID, req.UserID)
	if err != nil {
		return err
	}

	uc.notifier.notify(ctx, review.EventDeleted, r)
	return nil
}
