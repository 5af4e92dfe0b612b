package review

import (
	"context"
)

// Repository 评论仓储接口
// 设计说明:
// 1. 写操作(Update/Delete)都带user_id条件,影响行数为0时返回ErrReviewNotFound
// 2. Create遇到(user_id, book_id)唯一索引冲突时返回ErrReviewDuplicate
// 3. 统计接口只返回SUM和COUNT的计算结果,不缓存
type Repository interface {
	// Create 创建评论
	Create(ctx context.Context, review *Review) error

	// LockByID 悲观锁查询评论(SELECT ... FOR UPDATE),必须在事务中调用
	LockByID(ctx context.Context, id uint) (*Review, error)

	// FindByUserAndBook 查找用户对某本书的评论,不存在返回ErrReviewNotFound
	FindByUserAndBook(ctx context.Context, userID, bookID uint) (*Review, error)

	// Update 更新评分、内容和时间戳(WHERE id = ? AND user_id = ?)
	Update(ctx context.Context, review *Review) error

	// Delete 删除评论(WHERE id = ? AND user_id = ?)
	Delete(ctx context.Context, id, userID uint) error

	// Summarize 计算单本图书的评分统计
	Summarize(ctx context.Context, bookID uint) (Summary, error)

	// SummarizeMany 批量计算评分统计,没有评论的图书返回零值Summary
	SummarizeMany(ctx context.Context, bookIDs []uint) (map[uint]Summary, error)

	// ListByBook 分页查询图书评论(附带作者名),按created_at DESC, id DESC排序
	ListByBook(ctx context.Context, bookID uint, page, pageSize int) ([]*ReviewWithUser, error)
}

// BookChecker 图书存在性校验(由book.Repository实现)
type BookChecker interface {
	Exists(ctx context.Context, id uint) (bool, error)
}

// Transactor 事务执行器(由database.TxManager实现)
// fn中通过ctx获取事务,fn返回错误时回滚
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}
