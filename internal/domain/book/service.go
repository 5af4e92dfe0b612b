package book

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/xiebiao/bookreview/pkg/logger"
)

// Service 图书领域服务接口
// 设计说明:
// 1. 领域服务封装业务规则校验
// 2. 不依赖具体的Repository实现(依赖倒置)
type Service interface {
	// AddBook 添加图书(需要登录)
	AddBook(ctx context.Context, title, author, genre string, createdBy uint) (*Book, error)

	// GetBookByID 根据ID获取图书,优先读缓存
	GetBookByID(ctx context.Context, id uint) (*Book, error)

	// ListBooks 分页查询图书列表
	ListBooks(ctx context.Context, params ListParams) ([]*Book, int64, error)

	// SearchBooks 搜索图书
	// 关键词为空(去空白后)返回ErrEmptyQuery
	SearchBooks(ctx context.Context, query string, page, pageSize int) ([]*Book, int64, error)
}

// service 领域服务实现
type service struct {
	repo  Repository
	cache Cache
}

// NewService 创建图书领域服务
// cache可以为nil(不使用缓存)
func NewService(repo Repository, cache Cache) Service {
	return &service{repo: repo, cache: cache}
}

// AddBook 添加图书
func (s *service) AddBook(ctx context.Context, title, author, genre string, createdBy uint) (*Book, error) {
	b, err := NewBook(title, author, genre, createdBy)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	s.fillCache(ctx, b)
	return b, nil
}

// GetBookByID 根据ID获取图书(Cache-Aside)
// 1. 先查缓存,命中直接返回
// 2. 缓存故障或未命中时查数据库,缓存故障不影响主流程
// 3. 查到后回填缓存
func (s *service) GetBookByID(ctx context.Context, id uint) (*Book, error) {
	if s.cache != nil {
		b, err := s.cache.Get(ctx, id)
		if err == nil {
			return b, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			logger.FromContext(ctx).Warn("读取图书缓存失败,回源数据库", zap.Uint("book_id", id), zap.Error(err))
		}
	}

	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.fillCache(ctx, b)
	return b, nil
}

// ListBooks 分页查询图书列表
func (s *service) ListBooks(ctx context.Context, params ListParams) ([]*Book, int64, error) {
	return s.repo.List(ctx, params)
}

// SearchBooks 搜索图书
func (s *service) SearchBooks(ctx context.Context, query string, page, pageSize int) ([]*Book, int64, error) {
	q, err := NormalizeQuery(query)
	if err != nil {
		return nil, 0, err
	}

	return s.repo.Search(ctx, SearchParams{
		Query:    q,
		Page:     page,
		PageSize: pageSize,
	})
}

func (s *service) fillCache(ctx context.Context, b *Book) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, b); err != nil {
		logger.FromContext(ctx).Warn("写入图书缓存失败", zap.Uint("book_id", b.ID), zap.Error(err))
	}
}
