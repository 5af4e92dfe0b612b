package handler

import (
	"github.com/gin-gonic/gin"

	appuser "github.com/xiebiao/bookreview/internal/application/user"
	"github.com/xiebiao/bookreview/internal/interface/http/dto"
	"github.com/xiebiao/bookreview/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/bookreview/pkg/errors"
	"github.com/xiebiao/bookreview/pkg/response"
)

// UserHandler 用户HTTP处理器
// 设计说明：
// 1. Handler只负责HTTP相关的事情：解析请求、调用应用层、返回响应
// 2. 不包含业务逻辑（业务逻辑在domain和application层）
type UserHandler struct {
	registerUseCase *appuser.RegisterUseCase
	loginUseCase    *appuser.LoginUseCase
	logoutUseCase   *appuser.LogoutUseCase
}

// NewUserHandler 创建用户处理器
func NewUserHandler(
	registerUseCase *appuser.RegisterUseCase,
	loginUseCase *appuser.LoginUseCase,
	logoutUseCase *appuser.LogoutUseCase,
) *UserHandler {
	return &UserHandler{
		registerUseCase: registerUseCase,
		loginUseCase:    loginUseCase,
		logoutUseCase:   logoutUseCase,
	}
}

// Register 用户注册
// @Summary      用户注册
// @Description  创建新用户账号
// @Tags         用户
// @Accept       json
// @Produce      json
// @Param        request body dto.RegisterRequest true "注册信息"
// @Success      201 {object} response.Response{data=appuser.RegisterResponse} "注册成功"
// @Failure      400 {object} response.Response "参数错误"
// @Failure      409 {object} response.Response "邮箱已存在"
// @Router       /api/v1/users/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	result, err := h.registerUseCase.Execute(c.Request.Context(), appuser.RegisterRequest{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "注册成功", result)
}

// Login 用户登录
// @Summary      用户登录
// @Description  验证邮箱密码，返回JWT Token
// @Tags         用户
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "登录信息"
// @Success      200 {object} response.Response{data=appuser.LoginResponse} "登录成功"
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "邮箱或密码错误"
// @Router       /api/v1/users/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	result, err := h.loginUseCase.Execute(c.Request.Context(), appuser.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "登录成功", result)
}

// Logout 用户登出
// @Summary      用户登出
// @Description  当前Token加入黑名单，剩余有效期内不可再用
// @Tags         用户
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response "登出成功"
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/users/logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	if err := h.logoutUseCase.Execute(c.Request.Context(), claims); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "登出成功", nil)
}
