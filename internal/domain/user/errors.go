package user

import (
	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

// 用户领域错误定义
var (
	ErrUserNotFound       = apperrors.ErrUserNotFound
	ErrEmailDuplicate     = apperrors.ErrEmailDuplicate
	ErrInvalidCredentials = apperrors.ErrInvalidCredentials
	ErrWeakPassword       = apperrors.ErrWeakPassword

	// ErrInvalidEmail 邮箱格式不正确
	ErrInvalidEmail = apperrors.New(apperrors.ErrCodeInvalidParams, "邮箱格式不正确")

	// ErrInvalidName 用户名长度不合法
	ErrInvalidName = apperrors.New(apperrors.ErrCodeInvalidParams, "用户名长度应为2-50个字符")
)
