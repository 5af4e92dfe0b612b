package database

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookreview/internal/domain/book"
	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

// searchOrderSQL 搜索结果排序(等级常量直接写入SQL,避免参数类型推断差异)
var searchOrderSQL = fmt.Sprintf(
	"CASE WHEN title_folded = ? THEN %d WHEN author_folded = ? THEN %d ELSE %d END, title ASC, id ASC",
	book.TierExactTitle, book.TierExactAuthor, book.TierPartial,
)

// bookRepository 图书仓储实现
// 设计说明:
// 1. 实现domain/book/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. 所有查询都通过getDB(ctx)执行,在事务中调用时自动加入事务
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

// Create 创建图书
func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	model := &BookModel{
		Title:     b.Title,
		Author:    b.Author,
		Genre:     b.Genre,
		CreatedBy: b.CreatedBy,
		CreatedAt: b.CreatedAt,
	}

	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建图书失败")
	}

	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	return nil
}

// FindByID 根据ID查找图书
func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	if err := getDB(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}
	return toBookEntity(&model), nil
}

// Exists 判断图书是否存在
func (r *bookRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := getDB(ctx, r.db).Model(&BookModel{}).Where("id = ?", id).Limit(1).Count(&count).Error
	if err != nil {
		return false, apperrors.Wrap(err, "查询图书失败")
	}
	return count > 0, nil
}

// List 分页查询图书列表
// author/genre为不区分大小写的子串过滤(匹配检索列),结果按id升序
func (r *bookRepository) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	filtered := func() *gorm.DB {
		q := getDB(ctx, r.db).Model(&BookModel{})
		if params.Author != "" {
			q = q.Where("author_folded LIKE ? ESCAPE '"+likeEscape+"'", containsPattern(params.Author))
		}
		if params.Genre != "" {
			q = q.Where("genre_folded LIKE ? ESCAPE '"+likeEscape+"'", containsPattern(params.Genre))
		}
		return q
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书总数失败")
	}

	var models []BookModel
	err := filtered().
		Order("id ASC").
		Limit(params.PageSize).
		Offset(offset(params.Page, params.PageSize)).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书列表失败")
	}

	return toBookEntities(models), total, nil
}

// Search 按关键词搜索并排序
// 排序在数据库中基于完整匹配集完成,分页只是对排序结果的切片:
//
//	ORDER BY CASE WHEN title_folded = ? THEN 0
//	              WHEN author_folded = ? THEN 1
//	              ELSE 2 END, title ASC, id ASC
func (r *bookRepository) Search(ctx context.Context, params book.SearchParams) ([]*book.Book, int64, error) {
	pattern := containsPattern(params.Query)
	matched := func() *gorm.DB {
		return getDB(ctx, r.db).Model(&BookModel{}).
			Where("(title_folded LIKE ? ESCAPE '"+likeEscape+"' OR author_folded LIKE ? ESCAPE '"+likeEscape+"')", pattern, pattern)
	}

	var total int64
	if err := matched().Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询搜索结果总数失败")
	}
	if total == 0 {
		return []*book.Book{}, 0, nil
	}

	rank := clause.OrderBy{
		Expression: clause.Expr{
			SQL:                searchOrderSQL,
			Vars:               []interface{}{params.Query, params.Query},
			WithoutParentheses: true,
		},
	}

	var models []BookModel
	err := matched().
		Order(rank).
		Limit(params.PageSize).
		Offset(offset(params.Page, params.PageSize)).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "搜索图书失败")
	}

	return toBookEntities(models), total, nil
}

// toBookEntity GORM模型 → 领域实体
func toBookEntity(m *BookModel) *book.Book {
	return &book.Book{
		ID:        m.ID,
		Title:     m.Title,
		Author:    m.Author,
		Genre:     m.Genre,
		CreatedBy: m.CreatedBy,
		CreatedAt: m.CreatedAt,
	}
}

func toBookEntities(models []BookModel) []*book.Book {
	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}
	return books
}
