package book

import (
	"strings"
	"time"
	"unicode/utf8"
)

// 字段长度上限（与数据库列长度一致）
const (
	MaxTitleLen  = 200
	MaxAuthorLen = 100
	MaxGenreLen  = 50
)

// Book 图书实体(聚合根)
// DDD设计说明:
// 1. 图书创建后不可修改、不会删除,因此元数据可以放心缓存
// 2. 评分统计不属于图书实体,始终由评论实时计算(见review.Summary)
// 3. CreatedBy记录添加图书的用户
type Book struct {
	ID        uint
	Title     string // 书名
	Author    string // 作者
	Genre     string // 分类
	CreatedBy uint   // 添加者用户ID
	CreatedAt time.Time
}

// NewBook 创建新图书(工厂方法)
// 业务规则:书名、作者、分类去除首尾空白后不能为空,且不超过列长度
func NewBook(title, author, genre string, createdBy uint) (*Book, error) {
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)
	genre = strings.TrimSpace(genre)

	if title == "" || utf8.RuneCountInString(title) > MaxTitleLen {
		return nil, ErrInvalidTitle
	}
	if author == "" || utf8.RuneCountInString(author) > MaxAuthorLen {
		return nil, ErrInvalidAuthor
	}
	if genre == "" || utf8.RuneCountInString(genre) > MaxGenreLen {
		return nil, ErrInvalidGenre
	}

	return &Book{
		Title:     title,
		Author:    author,
		Genre:     genre,
		CreatedBy: createdBy,
		CreatedAt: time.Now(),
	}, nil
}
