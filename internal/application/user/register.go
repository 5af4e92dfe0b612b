package user

import (
	"context"
	"time"

	"github.com/xiebiao/bookreview/internal/domain/user"
)

// RegisterUseCase 用户注册用例
// 设计说明：
// 1. Application层负责用例编排，协调领域服务
// 2. 业务规则（邮箱格式、密码强度、邮箱唯一）都在领域服务中
type RegisterUseCase struct {
	userService user.Service
}

// NewRegisterUseCase 创建注册用例
func NewRegisterUseCase(userService user.Service) *RegisterUseCase {
	return &RegisterUseCase{
		userService: userService,
	}
}

// Execute 执行注册
// 返回：RegisterResponse（应用层DTO，不是领域实体）
func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	u, err := uc.userService.Register(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		return nil, err
	}

	return &RegisterResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}, nil
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email    string
	Password string
	Name     string
}

// RegisterResponse 注册响应
// 说明：不返回密码字段
type RegisterResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
