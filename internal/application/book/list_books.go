package book

import (
	"context"

	"github.com/xiebiao/bookreview/internal/domain/book"
	"github.com/xiebiao/bookreview/internal/domain/review"
)

// ListBooksUseCase 图书列表查询用例
// 设计说明:
// 1. 支持按作者、分类过滤(不区分大小写的子串匹配),按id升序
// 2. 每本书附带实时评分统计,一页图书只发一次聚合查询
type ListBooksUseCase struct {
	bookService   book.Service
	reviewService review.Service
}

// NewListBooksUseCase 创建列表查询用例
func NewListBooksUseCase(bookService book.Service, reviewService review.Service) *ListBooksUseCase {
	return &ListBooksUseCase{
		bookService:   bookService,
		reviewService: reviewService,
	}
}

// ListBooksRequest 列表查询请求DTO
type ListBooksRequest struct {
	Page     int    // 页码(从1开始)
	PageSize int    // 每页数量
	Author   string // 作者过滤
	Genre    string // 分类过滤
}

// ListBooksResponse 列表查询响应DTO
type ListBooksResponse struct {
	List     []BookItem `json:"list"`
	Total    int64      `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
}

// Execute 执行列表查询用例
func (uc *ListBooksUseCase) Execute(ctx context.Context, req ListBooksRequest) (*ListBooksResponse, error) {
	req.Page, req.PageSize = normalizePage(req.Page, req.PageSize, DefaultPageSize)

	books, total, err := uc.bookService.ListBooks(ctx, book.ListParams{
		Page:     req.Page,
		PageSize: req.PageSize,
		Author:   req.Author,
		Genre:    req.Genre,
	})
	if err != nil {
		return nil, err
	}

	summaries, err := uc.reviewService.AggregateForBooks(ctx, bookIDs(books))
	if err != nil {
		return nil, err
	}

	list := make([]BookItem, len(books))
	for i, b := range books {
		list[i] = newBookItem(b, summaries[b.ID])
	}

	return &ListBooksResponse{
		List:     list,
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
	}, nil
}
