package book

import (
	"time"

	"github.com/xiebiao/bookreview/internal/domain/book"
	"github.com/xiebiao/bookreview/internal/domain/review"
)

// 分页参数
const (
	DefaultPageSize       = 10
	DefaultReviewPageSize = 5
	MaxPageSize           = 100
)

// BookItem 图书DTO(元数据 + 实时评分统计)
type BookItem struct {
	ID            uint                 `json:"id"`
	Title         string               `json:"title"`
	Author        string               `json:"author"`
	Genre         string               `json:"genre"`
	CreatedAt     time.Time            `json:"created_at"`
	AverageRating review.AverageRating `json:"average_rating" swaggertype:"number" example:"4.3"`
	TotalReviews  int64                `json:"total_reviews"`
}

func newBookItem(b *book.Book, s review.Summary) BookItem {
	return BookItem{
		ID:            b.ID,
		Title:         b.Title,
		Author:        b.Author,
		Genre:         b.Genre,
		CreatedAt:     b.CreatedAt,
		AverageRating: s.AverageRating,
		TotalReviews:  s.TotalReviews,
	}
}

// bookIDs 提取图书ID(批量查询评分统计使用)
func bookIDs(books []*book.Book) []uint {
	ids := make([]uint, len(books))
	for i, b := range books {
		ids[i] = b.ID
	}
	return ids
}

// normalizePage 参数默认值与范围限制
// page默认1;pageSize默认def,最大MaxPageSize
func normalizePage(page, pageSize, def int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = def
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}
