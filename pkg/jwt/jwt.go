package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

const issuer = "bookreview"

// Manager JWT管理器
// 设计说明：
// 1. 登录后签发单个Access Token，有效期由配置决定（默认24小时）
// 2. Token无状态，主动失效（登出）依赖Redis黑名单
// 3. 每个Token带唯一ID（jti），黑名单按剩余有效期自动过期
type Manager struct {
	secret string        // JWT签名密钥
	expire time.Duration // Token有效期
	now    func() time.Time
}

// NewManager 创建JWT管理器
func NewManager(secret string, expire time.Duration) *Manager {
	return &Manager{
		secret: secret,
		expire: expire,
		now:    time.Now,
	}
}

// Claims 自定义JWT Claims
// 嵌入jwt.RegisteredClaims获取标准字段（exp、iat、nbf、jti等）
type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// Token 签发结果
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int64     `json:"expires_in"` // 有效期（秒）
	ExpiresAt   time.Time `json:"expires_at"`
}

// GenerateToken 生成Access Token
func (m *Manager) GenerateToken(userID uint, email, name string) (*Token, error) {
	now := m.now()
	expiresAt := now.Add(m.expire)

	claims := Claims{
		UserID: userID,
		Email:  email,
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.secret))
	if err != nil {
		return nil, apperrors.Wrap(err, "生成Token失败")
	}

	return &Token{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int64(m.expire.Seconds()),
		ExpiresAt:   expiresAt,
	}, nil
}

// ParseToken 解析并验证Token
// 1. 验证签名算法和签名（防止伪造）
// 2. 验证exp、nbf
// 3. 验证签发者
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("非法的签名算法: %v", token.Header["alg"])
		}
		return []byte(m.secret), nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(m.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, apperrors.ErrInvalidToken
}

// Remaining 返回Token剩余有效期（用于设置黑名单TTL）
func (m *Manager) Remaining(claims *Claims) time.Duration {
	if claims == nil || claims.ExpiresAt == nil {
		return 0
	}
	d := claims.ExpiresAt.Time.Sub(m.now())
	if d < 0 {
		return 0
	}
	return d
}
