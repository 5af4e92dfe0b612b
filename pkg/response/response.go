package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/xiebiao/bookreview/pkg/errors"
	"github.com/xiebiao/bookreview/pkg/logger"
)

// Response 统一响应结构
// 设计说明：
// 1. Success标识请求是否成功，HTTP状态码与之保持一致（2xx/4xx/5xx）
// 2. Message是用户友好的提示信息
// 3. Code是业务错误码，只在失败时返回，方便客户端区分同一状态码下的不同错误
// 4. Data是业务数据，Pagination是分页信息，没有时不输出
type Response struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	Code       int         `json:"code,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination 分页信息
type Pagination struct {
	Total      int64 `json:"total"`       // 总记录数
	Page       int   `json:"page"`        // 当前页码（从1开始）
	PageSize   int   `json:"page_size"`   // 每页大小
	TotalPages int   `json:"total_pages"` // 总页数
}

// NewPagination 创建分页信息
// totalPages = ceil(total / pageSize)，total为0时为0
func NewPagination(total int64, page, pageSize int) *Pagination {
	return &Pagination{
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: TotalPages(total, pageSize),
	}
}

// TotalPages 计算总页数
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	pages := total / int64(pageSize)
	if total%int64(pageSize) != 0 {
		pages++
	}
	return int(pages)
}

// Success 成功响应（200）
func Success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Created 创建成功响应（201）
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// SuccessWithPage 分页成功响应
func SuccessWithPage(c *gin.Context, message string, data interface{}, pagination *Pagination) {
	c.JSON(http.StatusOK, Response{
		Success:    true,
		Message:    message,
		Data:       data,
		Pagination: pagination,
	})
}

// Error 错误响应（自动处理AppError）
// 这是错误的最外层边界：
// 1. 内部错误（appErr.Err）连同请求信息完整写入日志
// 2. 客户端只看到用户友好的Message，不泄露内部细节
//
// 用法：
//
//	result, err := useCase.Execute(...)
//	if err != nil {
//	    response.Error(c, err)
//	    return
//	}
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)
	status := appErr.HTTPStatus()

	if appErr.Err != nil || status >= http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error("request failed",
			zap.Int("code", appErr.Code),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}

	message := appErr.Message
	if status >= http.StatusInternalServerError && appErr.Message == "" {
		message = apperrors.ErrInternal.Message
	}

	c.JSON(status, Response{
		Success: false,
		Message: message,
		Code:    appErr.Code,
	})
}

// ErrorWithCode 自定义错误码和消息
func ErrorWithCode(c *gin.Context, code int, message string) {
	Error(c, apperrors.New(code, message))
}

// Abort 写入错误响应并终止后续Handler（用于中间件）
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}
