package book

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/bookreview/internal/domain/book"
	"github.com/xiebiao/bookreview/internal/domain/review"
	"github.com/xiebiao/bookreview/pkg/tracing"
)

// GetBookDetailUseCase 图书详情用例
// 设计说明:
// 1. 图书元数据走缓存(图书不可修改)
// 2. 评分统计和评论分页在同一个事务中读取,两者描述同一份评论集合
// 3. 评论按created_at倒序(最新优先),超出末页返回空列表
type GetBookDetailUseCase struct {
	bookService   book.Service
	reviewService review.Service
}

// NewGetBookDetailUseCase 创建图书详情用例
func NewGetBookDetailUseCase(bookService book.Service, reviewService review.Service) *GetBookDetailUseCase {
	return &GetBookDetailUseCase{
		bookService:   bookService,
		reviewService: reviewService,
	}
}

// GetBookDetailRequest 图书详情请求DTO
type GetBookDetailRequest struct {
	BookID   uint
	Page     int // 评论页码,默认1
	PageSize int // 评论每页数量,默认5,最大100
}

// ReviewItem 评论DTO(带评论者名称)
type ReviewItem struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	UserName  string    `json:"user_name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BookDetailResponse 图书详情响应DTO
type BookDetailResponse struct {
	Book     BookItem     `json:"book"`
	Reviews  []ReviewItem `json:"reviews"`
	Total    int64        `json:"-"` // 评论总数(用于分页)
	Page     int          `json:"-"`
	PageSize int          `json:"-"`
}

// Execute 执行图书详情查询
func (uc *GetBookDetailUseCase) Execute(ctx context.Context, req GetBookDetailRequest) (resp *BookDetailResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, "book.detail")
	defer func() { tracing.End(span, err) }()
	span.SetAttributes(attribute.Int64("book.id", int64(req.BookID)))

	req.Page, req.PageSize = normalizePage(req.Page, req.PageSize, DefaultReviewPageSize)

	b, err := uc.bookService.GetBookByID(ctx, req.BookID)
	if err != nil {
		return nil, err
	}

	summary, reviews, err := uc.reviewService.BookReviews(ctx, b.ID, req.Page, req.PageSize)
	if err != nil {
		return nil, err
	}

	items := make([]ReviewItem, len(reviews))
	for i, r := range reviews {
		items[i] = ReviewItem{
			ID:        r.ID,
			UserID:    r.UserID,
			UserName:  r.UserName,
			Rating:    r.Rating,
			Comment:   r.Comment,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		}
	}

	return &BookDetailResponse{
		Book:     newBookItem(b, summary),
		Reviews:  items,
		Total:    summary.TotalReviews,
		Page:     req.Page,
		PageSize: req.PageSize,
	}, nil
}
