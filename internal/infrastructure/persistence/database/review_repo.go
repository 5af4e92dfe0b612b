package database

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookreview/internal/domain/review"
	apperrors "github.com/xiebiao/bookreview/pkg/errors"
	"github.com/xiebiao/bookreview/pkg/logger"
)

// reviewRepository 评论仓储实现
// 设计说明:
// 1. Create依赖(user_id, book_id)唯一索引兜底,冲突转换为ErrReviewDuplicate
// 2. Update/Delete都带user_id条件,RowsAffected为0说明评论已不存在(或已不属于该用户)
// 3. LockByID使用SELECT ... FOR UPDATE(sqlite驱动会忽略该子句,由数据库级写锁串行化)
// 4. 评分统计使用SUM/COUNT整数聚合,不使用AVG(避免数据库侧的浮点舍入)
type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository 创建评论仓储
func NewReviewRepository(db *gorm.DB) review.Repository {
	return &reviewRepository{db: db}
}

// Create 创建评论
func (r *reviewRepository) Create(ctx context.Context, rv *review.Review) error {
	model := toReviewModel(rv)

	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			logger.FromContext(ctx).Info("唯一索引拦截重复评论",
				zap.Uint("user_id", rv.UserID), zap.Uint("book_id", rv.BookID))
			return review.ErrReviewDuplicate
		}
		return apperrors.Wrap(err, "创建评论失败")
	}

	rv.ID = model.ID
	rv.CreatedAt = model.CreatedAt
	rv.UpdatedAt = model.UpdatedAt
	return nil
}

// LockByID 悲观锁查询评论
// 必须在TxManager.Transaction中调用,锁在事务提交或回滚时释放
func (r *reviewRepository) LockByID(ctx context.Context, id uint) (*review.Review, error) {
	var model ReviewModel
	err := getDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, id).Error
	if err != nil {
		return nil, notFoundOr(err, "锁定评论失败")
	}
	return toReviewEntity(&model), nil
}

// FindByUserAndBook 查找用户对某本书的评论
func (r *reviewRepository) FindByUserAndBook(ctx context.Context, userID, bookID uint) (*review.Review, error) {
	var model ReviewModel
	err := getDB(ctx, r.db).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		First(&model).Error
	if err != nil {
		return nil, notFoundOr(err, "查询评论失败")
	}
	return toReviewEntity(&model), nil
}

// Update 更新评论
// UPDATE reviews SET rating=?, comment=?, created_at=?, updated_at=? WHERE id = ? AND user_id = ?
func (r *reviewRepository) Update(ctx context.Context, rv *review.Review) error {
	result := getDB(ctx, r.db).
		Model(&ReviewModel{}).
		Where("id = ? AND user_id = ?", rv.ID, rv.UserID).
		UpdateColumns(map[string]interface{}{
			"rating":     rv.Rating,
			"comment":    rv.Comment,
			"created_at": rv.CreatedAt,
			"updated_at": rv.UpdatedAt,
		})

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新评论失败")
	}
	if result.RowsAffected == 0 {
		return review.ErrReviewNotFound
	}
	return nil
}

// Delete 删除评论(物理删除)
func (r *reviewRepository) Delete(ctx context.Context, id, userID uint) error {
	result := getDB(ctx, r.db).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&ReviewModel{})

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除评论失败")
	}
	if result.RowsAffected == 0 {
		return review.ErrReviewNotFound
	}
	return nil
}

// ratingAggregate SUM/COUNT查询结果
type ratingAggregate struct {
	BookID uint
	Total  int64
	Cnt    int64
}

// Summarize 计算单本图书的评分统计
// SELECT COALESCE(SUM(rating), 0) AS total, COUNT(*) AS cnt FROM reviews WHERE book_id = ?
func (r *reviewRepository) Summarize(ctx context.Context, bookID uint) (review.Summary, error) {
	var agg ratingAggregate
	err := getDB(ctx, r.db).
		Model(&ReviewModel{}).
		Select("COALESCE(SUM(rating), 0) AS total, COUNT(*) AS cnt").
		Where("book_id = ?", bookID).
		Scan(&agg).Error
	if err != nil {
		return review.Summary{}, apperrors.Wrap(err, "统计评分失败")
	}
	return review.NewSummary(bookID, agg.Total, agg.Cnt), nil
}

// SummarizeMany 批量计算评分统计
// SELECT book_id, SUM(rating) AS total, COUNT(*) AS cnt FROM reviews WHERE book_id IN ? GROUP BY book_id
func (r *reviewRepository) SummarizeMany(ctx context.Context, bookIDs []uint) (map[uint]review.Summary, error) {
	result := make(map[uint]review.Summary, len(bookIDs))
	for _, id := range bookIDs {
		result[id] = review.NewSummary(id, 0, 0)
	}
	if len(bookIDs) == 0 {
		return result, nil
	}

	var rows []ratingAggregate
	err := getDB(ctx, r.db).
		Model(&ReviewModel{}).
		Select("book_id, SUM(rating) AS total, COUNT(*) AS cnt").
		Where("book_id IN ?", bookIDs).
		Group("book_id").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "批量统计评分失败")
	}

	for _, row := range rows {
		result[row.BookID] = review.NewSummary(row.BookID, row.Total, row.Cnt)
	}
	return result, nil
}

// reviewRow 评论列表查询结果(评论 + 作者名)
type reviewRow struct {
	ID        uint
	BookID    uint
	UserID    uint
	Rating    int
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time
	UserName  string
}

// ListByBook 分页查询图书评论
// SELECT r.*, u.name AS user_name FROM reviews r JOIN users u ON u.id = r.user_id
// WHERE r.book_id = ? ORDER BY r.created_at DESC, r.id DESC LIMIT ? OFFSET ?
func (r *reviewRepository) ListByBook(ctx context.Context, bookID uint, page, pageSize int) ([]*review.ReviewWithUser, error) {
	var rows []reviewRow
	err := getDB(ctx, r.db).
		Table("reviews AS r").
		Select("r.id, r.book_id, r.user_id, r.rating, r.comment, r.created_at, r.updated_at, u.name AS user_name").
		Joins("JOIN users AS u ON u.id = r.user_id").
		Where("r.book_id = ?", bookID).
		Order("r.created_at DESC").
		Order("r.id DESC").
		Limit(pageSize).
		Offset(offset(page, pageSize)).
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询评论列表失败")
	}

	reviews := make([]*review.ReviewWithUser, len(rows))
	for i, row := range rows {
		reviews[i] = &review.ReviewWithUser{
			Review: review.Review{
				ID:        row.ID,
				BookID:    row.BookID,
				UserID:    row.UserID,
				Rating:    row.Rating,
				Comment:   row.Comment,
				CreatedAt: row.CreatedAt,
				UpdatedAt: row.UpdatedAt,
			},
			UserName: row.UserName,
		}
	}
	return reviews, nil
}

func notFoundOr(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return review.ErrReviewNotFound
	}
	return apperrors.Wrap(err, msg)
}

func toReviewModel(rv *review.Review) *ReviewModel {
	return &ReviewModel{
		ID:        rv.ID,
		UserID:    rv.UserID,
		BookID:    rv.BookID,
		Rating:    rv.Rating,
		Comment:   rv.Comment,
		CreatedAt: rv.CreatedAt,
		UpdatedAt: rv.UpdatedAt,
	}
}

func toReviewEntity(m *ReviewModel) *review.Review {
	return &review.Review{
		ID:        m.ID,
		BookID:    m.BookID,
		UserID:    m.UserID,
		Rating:    m.Rating,
		Comment:   m.Comment,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
