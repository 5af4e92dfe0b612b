package book

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/bookreview/internal/domain/book"
	"github.com/xiebiao/bookreview/internal/domain/review"
	"github.com/xiebiao/bookreview/pkg/metrics"
	"github.com/xiebiao/bookreview/pkg/tracing"
)

// SearchBooksUseCase 图书搜索用例
// 设计说明:
// 1. 匹配和排序由仓储在完整匹配集上完成,这里只负责组装结果
// 2. 每条结果附带实时评分统计和匹配等级(match_tier)
type SearchBooksUseCase struct {
	bookService   book.Service
	reviewService review.Service
}

// NewSearchBooksUseCase 创建搜索用例
func NewSearchBooksUseCase(bookService book.Service, reviewService review.Service) *SearchBooksUseCase {
	return &SearchBooksUseCase{
		bookService:   bookService,
		reviewService: reviewService,
	}
}

// SearchBooksRequest 搜索请求DTO
type SearchBooksRequest struct {
	Query    string
	Page     int
	PageSize int
}

// SearchItem 搜索结果项
type SearchItem struct {
	BookItem
	MatchTier int `json:"match_tier"` // 0=书名完全匹配 1=作者完全匹配 2=部分匹配
}

// SearchBooksResponse 搜索响应DTO
type SearchBooksResponse struct {
	Query    string       `json:"query"`
	List     []SearchItem `json:"list"`
	Total    int64        `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
}

// Execute 执行搜索
func (uc *SearchBooksUseCase) Execute(ctx context.Context, req SearchBooksRequest) (resp *SearchBooksResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, "book.search")
	defer func() { tracing.End(span, err) }()

	start := time.Now()
	defer func() { metrics.ObserveSearch(time.Since(start).Seconds()) }()

	query, err := book.NormalizeQuery(req.Query)
	if err != nil {
		return nil, err
	}
	req.Page, req.PageSize = normalizePage(req.Page, req.PageSize, DefaultPageSize)
	span.SetAttributes(attribute.String("search.query", query), attribute.Int("search.page", req.Page))

	books, total, err := uc.bookService.SearchBooks(ctx, query, req.Page, req.PageSize)
	if err != nil {
		return nil, err
	}

	summaries, err := uc.reviewService.AggregateForBooks(ctx, bookIDs(books))
	if err != nil {
		return nil, err
	}

	list := make([]SearchItem, len(books))
	for i, b := range books {
		list[i] = SearchItem{
			BookItem:  newBookItem(b, summaries[b.ID]),
			MatchTier: book.MatchTier(query, b),
		}
	}
	span.SetAttributes(attribute.Int64("search.total", total))

	return &SearchBooksResponse{
		Query:    query,
		List:     list,
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
	}, nil
}
