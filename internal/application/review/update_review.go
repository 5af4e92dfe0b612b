package review

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/bookreview/internal/domain/book"
	"github.com/xiebiao/bookreview/internal/domain/review"
	"github.com/xiebiao/bookreview/internal/domain/user"
	"github.com/xiebiao/bookreview/pkg/tracing"
)

// UpdateReviewUseCase 修改评论用例
// 只有作者本人可以修改;修改会刷新created_at,评论重新排到最前
type UpdateReviewUseCase struct {
	reviewService review.Service
	details       responseDetails
	notifier      eventNotifier
}

// NewUpdateReviewUseCase 创建修改评论用例
func NewUpdateReviewUseCase(
	reviewService review.Service,
	users user.Repository,
	books book.Service,
	publisher review.EventPublisher,
) *UpdateReviewUseCase {
	return &UpdateReviewUseCase{
		reviewService: reviewService,
		details:       responseDetails{users: users, books: books},
		notifier:      newEventNotifier(publisher),
	}
}

// UpdateReviewRequest 修改评论请求DTO
type UpdateReviewRequest struct {
	ReviewID uint
	UserID   uint
	Rating   int
	Comment  string
}

// Execute 执行修改评论
func (uc *UpdateReviewUseCase) Execute(ctx context.Context, req UpdateReviewRequest) (resp *ReviewResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, "review."+opUpdate)
	defer func() {
		observe(opUpdate, err)
		tracing.End(span, err)
	}()
	span.SetAttributes(
		attribute.Int64("review.id", int64(req.ReviewID)),
		attribute.Int64("user.id", int64(req.UserID)),
	)

	r, err := uc.reviewService.UpdateReview(ctx, req.ReviewID, req.UserID, req.Rating, req.Comment)
	if err != nil {
		return nil, err
	}

	uc.notifier.notify(ctx, review.EventUpdated, r)

	resp = newReviewResponse(r)
	uc.details.fill(ctx, resp)
	return resp, nil
}
