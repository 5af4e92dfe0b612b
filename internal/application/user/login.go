package user

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bookreview/internal/domain/user"
	"github.com/xiebiao/bookreview/pkg/jwt"
	"github.com/xiebiao/bookreview/pkg/logger"
)

// TokenRevoker 使Token失效（由Redis黑名单实现）
type TokenRevoker interface {
	Add(ctx context.Context, tokenID string, ttl time.Duration) error
}

// LoginUseCase 用户登录用例
// 设计说明：
// 1. 验证邮箱密码
// 2. 签发固定有效期的JWT（jwt.access_token_expire）
type LoginUseCase struct {
	userService user.Service
	jwtManager  *jwt.Manager
}

// NewLoginUseCase 创建登录用例
func NewLoginUseCase(userService user.Service, jwtManager *jwt.Manager) *LoginUseCase {
	return &LoginUseCase{
		userService: userService,
		jwtManager:  jwtManager,
	}
}

// Execute 执行登录
func (uc *LoginUseCase) Execute(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	u, err := uc.userService.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	token, err := uc.jwtManager.GenerateToken(u.ID, u.Email, u.Name)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("用户登录", zap.Uint("user_id", u.ID))

	return &LoginResponse{
		User: UserInfo{
			ID:    u.ID,
			Email: u.Email,
			Name:  u.Name,
		},
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresIn:   token.ExpiresIn,
		ExpiresAt:   token.ExpiresAt,
	}, nil
}

// LogoutUseCase 用户登出用例
// 把当前Token的jti加入黑名单，过期时间等于Token剩余有效期
type LogoutUseCase struct {
	revoker    TokenRevoker
	jwtManager *jwt.Manager
}

// NewLogoutUseCase 创建登出用例
func NewLogoutUseCase(revoker TokenRevoker, jwtManager *jwt.Manager) *LogoutUseCase {
	return &LogoutUseCase{revoker: revoker, jwtManager: jwtManager}
}

// Execute 执行登出
func (uc *LogoutUseCase) Execute(ctx context.Context, claims *jwt.Claims) error {
	if err := uc.revoker.Add(ctx, claims.ID, uc.jwtManager.Remaining(claims)); err != nil {
		return err
	}

	logger.FromContext(ctx).Info("用户登出", zap.Uint("user_id", claims.UserID))
	return nil
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string
	Password string
}

// LoginResponse 登录响应
type LoginResponse struct {
	User        UserInfo  `json:"user"`
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int64     `json:"expires_in"` // Token有效期（秒）
	ExpiresAt   time.Time `json:"expires_at"`
}

// UserInfo 用户信息
type UserInfo struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}
