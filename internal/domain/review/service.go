package review

import (
	"context"
	"errors"
	"time"

	"github.com/xiebiao/bookreview/internal/domain/book"
)

// Service 评论领域服务
// 设计说明:
// 1. 每个写操作在一个事务中完成"校验 → 写入"
// 2. 修改/删除先用SELECT ... FOR UPDATE锁住评论行,再做存在性和归属校验
// 3. 写入语句带id和user_id条件,即使锁失效也不会修改到别人的评论
// 4. 新增评论的重复检查是快速路径,(user_id, book_id)唯一索引才是最终保证
type Service interface {
	// AddReview 发表评论
	// 错误:ErrInvalidRating / ErrEmptyComment(参数) → book.ErrBookNotFound → ErrReviewDuplicate
	AddReview(ctx context.Context, bookID, userID uint, rating int, comment string) (*Review, error)

	// UpdateReview 修改评论(只有作者本人可以修改)
	// 错误:ErrInvalidRating / ErrEmptyComment → ErrReviewNotFound → ErrNotReviewOwner
	UpdateReview(ctx context.Context, reviewID, callerID uint, rating int, comment string) (*Review, error)

	// DeleteReview 删除评论(只有作者本人可以删除),返回被删除的评论
	// 错误:ErrReviewNotFound → ErrNotReviewOwner
	DeleteReview(ctx context.Context, reviewID, callerID uint) (*Review, error)

	// AggregateForBook 实时计算单本图书的评分统计
	AggregateForBook(ctx context.Context, bookID uint) (Summary, error)

	// AggregateForBooks 批量计算评分统计(搜索和列表结果使用)
	AggregateForBooks(ctx context.Context, bookIDs []uint) (map[uint]Summary, error)

	// BookReviews 在同一个事务中读取评分统计和一页评论,保证两者基于同一份评论集合
	BookReviews(ctx context.Context, bookID uint, page, pageSize int) (Summary, []*ReviewWithUser, error)
}

type service struct {
	repo  Repository
	books BookChecker
	tx    Transactor
	now   func() time.Time
}

// NewService 创建评论领域服务
func NewService(repo Repository, books BookChecker, tx Transactor) Service {
	return &service{
		repo:  repo,
		books: books,
		tx:    tx,
		now:   time.Now,
	}
}

// AddReview 发表评论
func (s *service) AddReview(ctx context.Context, bookID, userID uint, rating int, comment string) (*Review, error) {
	r, err := NewReview(bookID, userID, rating, comment)
	if err != nil {
		return nil, err
	}

	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		exists, err := s.books.Exists(ctx, bookID)
		if err != nil {
			return err
		}
		if !exists {
			return book.ErrBookNotFound
		}

		_, err = s.repo.FindByUserAndBook(ctx, userID, bookID)
		switch {
		case err == nil:
			return ErrReviewDuplicate
		case !errors.Is(err, ErrReviewNotFound):
			return err
		}

		now := s.now()
		r.CreatedAt, r.UpdatedAt = now, now
		return s.repo.Create(ctx, r)
	})
	if err != nil {
		return nil, err
	}

	return r, nil
}

// UpdateReview 修改评论
func (s *service) UpdateReview(ctx context.Context, reviewID, callerID uint, rating int, comment string) (*Review, error) {
	if err := ValidateRating(rating); err != nil {
		return nil, err
	}
	if _, err := normalizeComment(comment); err != nil {
		return nil, err
	}

	var updated *Review
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		r, err := s.lockOwned(ctx, reviewID, callerID)
		if err != nil {
			return err
		}

		if err := r.Edit(rating, comment, s.now()); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, r); err != nil {
			return err
		}

		updated = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteReview 删除评论
func (s *service) DeleteReview(ctx context.Context, reviewID, callerID uint) (*Review, error) {
	var deleted *Review
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		r, err := s.lockOwned(ctx, reviewID, callerID)
		if err != nil {
			return err
		}

		if err := s.repo.Delete(ctx, r.ID, callerID); err != nil {
			return err
		}

		deleted = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	return deleted, nil
}

// lockOwned 锁定评论行并校验归属(必须在事务中调用)
func (s *service) lockOwned(ctx context.Context, reviewID, callerID uint) (*Review, error) {
	r, err := s.repo.LockByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if !r.IsOwnedBy(callerID) {
		return nil, ErrNotReviewOwner
	}
	return r, nil
}

// AggregateForBook 实时计算单本图书的评分统计
func (s *service) AggregateForBook(ctx context.Context, bookID uint) (Summary, error) {
	return s.repo.Summarize(ctx, bookID)
}

// AggregateForBooks 批量计算评分统计
func (s *service) AggregateForBooks(ctx context.Context, bookIDs []uint) (map[uint]Summary, error) {
	if len(bookIDs) == 0 {
		return map[uint]Summary{}, nil
	}
	return s.repo.SummarizeMany(ctx, bookIDs)
}

// BookReviews 读取评分统计和一页评论
func (s *service) BookReviews(ctx context.Context, bookID uint, page, pageSize int) (Summary, []*ReviewWithUser, error) {
	var (
		summary Summary
		reviews []*ReviewWithUser
	)

	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		var err error
		if summary, err = s.repo.Summarize(ctx, bookID); err != nil {
			return err
		}
		reviews, err = s.repo.ListByBook(ctx, bookID, page, pageSize)
		return err
	})
	if err != nil {
		return Summary{}, nil, err
	}

	return summary, reviews, nil
}
