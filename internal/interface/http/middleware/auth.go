package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/bookreview/pkg/errors"
	"github.com/xiebiao/bookreview/pkg/jwt"
	"github.com/xiebiao/bookreview/pkg/response"
)

// Context中的key
const (
	ctxKeyUserID = "user_id"
	ctxKeyEmail  = "email"
	ctxKeyName   = "name"
	ctxKeyClaims = "claims"
)

// TokenBlacklist 查询Token是否已登出（由Redis黑名单实现）
type TokenBlacklist interface {
	IsBlacklisted(ctx context.Context, tokenID string) (bool, error)
}

// AuthMiddleware JWT认证中间件
// 设计说明：
// 1. 从Header提取Token
// 2. 验证Token签名和有效期
// 3. 检查Token黑名单（按jti）
// 4. 将用户信息注入Context
type AuthMiddleware struct {
	jwtManager *jwt.Manager
	blacklist  TokenBlacklist
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *jwt.Manager, blacklist TokenBlacklist) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		blacklist:  blacklist,
	}
}

// RequireAuth 要求登录
// 使用方式：
//
//	authorized := r.Group("/api/v1")
//	authorized.Use(authMiddleware.RequireAuth())
//	authorized.POST("/books/:id/reviews", handler.AddReview)
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. 从Header提取Token
		// 格式：Authorization: Bearer <token>
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Abort(c, apperrors.ErrUnauthorized)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			response.Abort(c, apperrors.ErrInvalidToken.WithMessage("Token格式错误"))
			return
		}

		// 2. 验证Token并解析Claims
		claims, err := m.jwtManager.ParseToken(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Abort(c, err) // ErrTokenExpired / ErrInvalidToken
			return
		}

		// 3. 检查Token是否已登出
		revoked, err := m.blacklist.IsBlacklisted(c.Request.Context(), claims.ID)
		if err != nil {
			response.Abort(c, err)
			return
		}
		if revoked {
			response.Abort(c, apperrors.ErrInvalidToken.WithMessage("Token已失效，请重新登录"))
			return
		}

		// 4. 将用户信息注入到Context
		c.Set(ctxKeyUserID, claims.UserID)
		c.Set(ctxKeyEmail, claims.Email)
		c.Set(ctxKeyName, claims.Name)
		c.Set(ctxKeyClaims, claims)

		c.Next()
	}
}

// GetUserID 从Context获取当前登录用户ID，未登录返回0
func GetUserID(c *gin.Context) uint {
	if userID, exists := c.Get(ctxKeyUserID); exists {
		if uid, ok := userID.(uint); ok {
			return uid
		}
	}
	return 0
}

// GetEmail 从Context获取当前登录用户邮箱
func GetEmail(c *gin.Context) string {
	return c.GetString(ctxKeyEmail)
}

// GetClaims 从Context获取当前Token的Claims
func GetClaims(c *gin.Context) *jwt.Claims {
	if v, exists := c.Get(ctxKeyClaims); exists {
		if claims, ok := v.(*jwt.Claims); ok {
			return claims
		}
	}
	return nil
}

// MustGetUserID 从Context获取用户ID（如果不存在则panic）
// 说明：用于已经通过RequireAuth中间件的Handler
func MustGetUserID(c *gin.Context) uint {
	userID := GetUserID(c)
	if userID == 0 {
		panic("user_id not found in context")
	}
	return userID
}
