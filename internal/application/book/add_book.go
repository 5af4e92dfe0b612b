package book

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/bookreview/internal/domain/book"
	"github.com/xiebiao/bookreview/internal/domain/review"
	"github.com/xiebiao/bookreview/pkg/logger"
)

// AddBookUseCase 添加图书用例
// 设计说明:
// 1. 应用层负责用例编排,业务规则校验由领域服务负责
// 2. 输入输出使用DTO,与HTTP层解耦
type AddBookUseCase struct {
	bookService book.Service
}

// NewAddBookUseCase 创建添加图书用例
func NewAddBookUseCase(bookService book.Service) *AddBookUseCase {
	return &AddBookUseCase{
		bookService: bookService,
	}
}

// AddBookRequest 添加图书请求DTO
type AddBookRequest struct {
	Title     string
	Author    string
	Genre     string
	CreatedBy uint // 当前登录用户ID(从认证中间件获取)
}

// Execute 执行添加图书用例
// 新书没有评论,评分统计为{0.0, 0}
func (uc *AddBookUseCase) Execute(ctx context.Context, req AddBookRequest) (*BookItem, error) {
	b, err := uc.bookService.AddBook(ctx, req.Title, req.Author, req.Genre, req.CreatedBy)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("添加图书", zap.Uint("book_id", b.ID), zap.Uint("created_by", req.CreatedBy))

	item := newBookItem(b, review.NewSummary(b.ID, 0, 0))
	return &item, nil
}
