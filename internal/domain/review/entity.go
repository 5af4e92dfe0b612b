package review

import (
	"strings"
	"time"
	"unicode/utf8"
)

// 评分范围
const (
	MinRating = 1
	MaxRating = 5

	// MaxCommentLen 评论内容最大长度
	MaxCommentLen = 2000
)

// Review 评论实体(聚合根)
// DDD设计说明:
// 1. 每个用户对每本图书最多一条评论,由(user_id, book_id)唯一索引保证
// 2. 只有作者本人可以修改、删除评论
// 3. 修改评论时CreatedAt刷新为当前时间,使"最新评论"排序反映最近一次编辑;
//    UpdatedAt同样记录最后修改时间
type Review struct {
	ID        uint
	BookID    uint
	UserID    uint
	Rating    int    // 1~5的整数
	Comment   string // 评论内容
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReviewWithUser 评论及作者展示名(图书详情页使用)
type ReviewWithUser struct {
	Review
	UserName string
}

// NewReview 创建新评论(工厂方法)
func NewReview(bookID, userID uint, rating int, comment string) (*Review, error) {
	if err := ValidateRating(rating); err != nil {
		return nil, err
	}
	comment, err := normalizeComment(comment)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &Review{
		BookID:    bookID,
		UserID:    userID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Edit 修改评分和内容(领域行为)
func (r *Review) Edit(rating int, comment string, now time.Time) error {
	if err := ValidateRating(rating); err != nil {
		return err
	}
	comment, err := normalizeComment(comment)
	if err != nil {
		return err
	}

	r.Rating = rating
	r.Comment = comment
	r.CreatedAt = now
	r.UpdatedAt = now
	return nil
}

// IsOwnedBy 检查评论是否由指定用户发表
func (r *Review) IsOwnedBy(userID uint) bool {
	return r.UserID == userID
}

// ValidateRating 评分必须是1~5的整数
func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return ErrInvalidRating
	}
	return nil
}

func normalizeComment(comment string) (string, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return "", ErrEmptyComment
	}
	if utf8.RuneCountInString(comment) > MaxCommentLen {
		return "", ErrCommentTooLong
	}
	return comment, nil
}
