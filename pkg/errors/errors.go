package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError 自定义应用错误
// 设计说明：
// 1. Code是业务错误码，Code/100即对应的HTTP状态码（40403 → 404）
// 2. Message是用户友好的提示信息
// 3. Err是内部错误，仅记录到日志，不返回给客户端（防止泄露敏感信息）
type AppError struct {
	Code    int    `json:"code"`    // 业务错误码
	Message string `json:"message"` // 用户友好的错误提示
	Err     error  `json:"-"`       // 内部错误（不序列化）
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus 返回错误对应的HTTP状态码
// 不在4xx/5xx范围内的错误码一律按500处理
func (e *AppError) HTTPStatus() int {
	status := e.Code / 100
	if status < http.StatusBadRequest || status > 599 {
		return http.StatusInternalServerError
	}
	return status
}

// Kind 返回错误分类（BadRequest、NotFound、Forbidden、Conflict、Internal等）
func (e *AppError) Kind() Kind {
	switch e.HTTPStatus() {
	case http.StatusBadRequest:
		return KindBadRequest
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	default:
		return KindInternal
	}
}

// New 创建新的AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装系统错误（如数据库错误、网络错误）
// 用途：将底层错误转换为业务错误，隐藏实现细节
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// Wrapf 格式化包装错误
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// WithMessage 复制一份错误并替换提示信息（错误码不变）
// 用于参数校验失败时带上具体字段原因
func (e *AppError) WithMessage(message string) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: message,
		Err:     e.Err,
	}
}

// Kind 错误分类
type Kind string

const (
	KindBadRequest   Kind = "BadRequest"
	KindUnauthorized Kind = "Unauthorized"
	KindForbidden    Kind = "Forbidden"
	KindNotFound     Kind = "NotFound"
	KindConflict     Kind = "Conflict"
	KindInternal     Kind = "Internal"
)

// =========================================
// 错误码定义
// =========================================
// 规范：错误码前三位即HTTP状态码
// - 400xx: 参数错误、业务规则校验失败
// - 401xx: 认证失败
// - 403xx: 无权限
// - 404xx: 资源不存在
// - 409xx: 资源冲突（重复记录）
// - 500xx: 服务端错误（数据库异常、外部服务调用失败）

const (
	// 系统级错误码（50000-50099）
	ErrCodeInternal      = 50000 // 内部错误
	ErrCodeDatabaseError = 50001 // 数据库错误
	ErrCodeRedisError    = 50002 // Redis错误

	// 参数错误（40000-40099）
	ErrCodeInvalidParams = 40000 // 参数错误(通用)
	ErrCodeBindError     = 40001 // 参数绑定失败
	ErrCodeInvalidRating = 40002 // 评分不合法
	ErrCodeEmptyQuery    = 40003 // 搜索关键词为空
	ErrCodeWeakPassword  = 40004 // 密码强度不足

	// 认证错误（40100-40199）
	ErrCodeUnauthorized       = 40100 // 未登录
	ErrCodeInvalidToken       = 40101 // Token无效
	ErrCodeTokenExpired       = 40102 // Token过期
	ErrCodeInvalidCredentials = 40103 // 邮箱或密码错误

	// 授权错误（40300-40399）
	ErrCodeForbidden      = 40300 // 无权限(通用)
	ErrCodeNotReviewOwner = 40301 // 不是评论作者

	// 资源错误（40400-40499）
	ErrCodeNotFound       = 40400 // 资源不存在(通用)
	ErrCodeUserNotFound   = 40401 // 用户不存在
	ErrCodeBookNotFound   = 40402 // 图书不存在
	ErrCodeReviewNotFound = 40403 // 评论不存在

	// 冲突错误（40900-40999）
	ErrCodeConflict        = 40900 // 重复记录(通用)
	ErrCodeEmailDuplicate  = 40901 // 邮箱已存在
	ErrCodeReviewDuplicate = 40902 // 已评论过该图书
)

// =========================================
// 预定义错误（避免每次都New）
// =========================================

var (
	// 系统错误
	ErrInternal      = New(ErrCodeInternal, "系统内部错误")
	ErrDatabaseError = New(ErrCodeDatabaseError, "数据库错误")
	ErrRedisError    = New(ErrCodeRedisError, "缓存服务错误")

	// 认证授权
	ErrUnauthorized       = New(ErrCodeUnauthorized, "请先登录")
	ErrInvalidToken       = New(ErrCodeInvalidToken, "无效的Token")
	ErrTokenExpired       = New(ErrCodeTokenExpired, "Token已过期")
	ErrInvalidCredentials = New(ErrCodeInvalidCredentials, "邮箱或密码错误")
	ErrForbidden          = New(ErrCodeForbidden, "无权限访问")

	// 资源不存在
	ErrNotFound     = New(ErrCodeNotFound, "资源不存在")
	ErrUserNotFound = New(ErrCodeUserNotFound, "用户不存在")

	// 资源冲突
	ErrEmailDuplicate = New(ErrCodeEmailDuplicate, "该邮箱已注册，请直接登录")

	// 参数错误
	ErrInvalidParams = New(ErrCodeInvalidParams, "参数错误")
	ErrBindError     = New(ErrCodeBindError, "参数格式错误")
	ErrWeakPassword  = New(ErrCodeWeakPassword, "密码强度不足（需8-20位，包含字母和数字）")
)

// =========================================
// 辅助函数
// =========================================

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 提取AppError（如果不是AppError则包装成Internal错误）
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "系统内部错误")
}

// KindOf 返回任意错误的分类，非AppError视为Internal
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return GetAppError(err).Kind()
}

// HasCode 判断错误链中是否包含指定错误码的AppError
func HasCode(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
