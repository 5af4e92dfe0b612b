package book

import (
	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.New(apperrors.ErrCodeBookNotFound, "图书不存在")

	// ErrInvalidTitle 书名不合法
	ErrInvalidTitle = apperrors.New(apperrors.ErrCodeInvalidParams, "书名不能为空且不超过200个字符")

	// ErrInvalidAuthor 作者不合法
	ErrInvalidAuthor = apperrors.New(apperrors.ErrCodeInvalidParams, "作者不能为空且不超过100个字符")

	// ErrInvalidGenre 分类不合法
	ErrInvalidGenre = apperrors.New(apperrors.ErrCodeInvalidParams, "分类不能为空且不超过50个字符")

	// ErrEmptyQuery 搜索关键词为空
	ErrEmptyQuery = apperrors.New(apperrors.ErrCodeEmptyQuery, "搜索关键词不能为空")

	// ErrCacheMiss 缓存未命中(仅在缓存层内部使用,不返回给客户端)
	ErrCacheMiss = apperrors.New(apperrors.ErrCodeNotFound, "缓存未命中")
)
