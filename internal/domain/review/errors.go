package review

import (
	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

// 评论领域错误定义
var (
	// ErrInvalidRating 评分不合法
	ErrInvalidRating = apperrors.New(apperrors.ErrCodeInvalidRating, "评分必须是1到5之间的整数")

	// ErrEmptyComment 评论内容为空
	ErrEmptyComment = apperrors.New(apperrors.ErrCodeInvalidParams, "评论内容不能为空")

	// ErrCommentTooLong 评论内容过长
	ErrCommentTooLong = apperrors.New(apperrors.ErrCodeInvalidParams, "评论内容不能超过2000个字符")

	// ErrReviewNotFound 评论不存在
	ErrReviewNotFound = apperrors.New(apperrors.ErrCodeReviewNotFound, "评论不存在")

	// ErrReviewDuplicate 已评论过该图书
	ErrReviewDuplicate = apperrors.New(apperrors.ErrCodeReviewDuplicate, "您已经评论过这本书，请编辑已有的评论")

	// ErrNotReviewOwner 不是评论作者
	ErrNotReviewOwner = apperrors.New(apperrors.ErrCodeNotReviewOwner, "只能修改或删除自己的评论")
)
