package user

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

// DefaultBcryptCost bcrypt默认cost（每+1耗时翻倍）
const DefaultBcryptCost = 12

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	hasLetter    = regexp.MustCompile(`[a-zA-Z]`)
	hasDigit     = regexp.MustCompile(`[0-9]`)
)

// Service 用户领域服务
// 设计说明：
// 1. Service包含不属于单个实体的业务逻辑（如密码加密、验证）
// 2. Service依赖Repository接口，不依赖具体实现（依赖倒置）
// 3. Service不处理HTTP请求，只处理业务逻辑
type Service interface {
	// Register 用户注册
	Register(ctx context.Context, email, password, name string) (*User, error)

	// Login 用户登录，邮箱不存在或密码错误统一返回ErrInvalidCredentials
	Login(ctx context.Context, email, password string) (*User, error)
}

type service struct {
	repo Repository
	cost int
}

// NewService 创建用户服务
func NewService(repo Repository) Service {
	return NewServiceWithCost(repo, DefaultBcryptCost)
}

// NewServiceWithCost 指定bcrypt cost创建用户服务（测试中使用bcrypt.MinCost）
func NewServiceWithCost(repo Repository, cost int) Service {
	return &service{repo: repo, cost: cost}
}

// Register 用户注册
// 业务规则：
// 1. 邮箱格式校验（统一转小写）
// 2. 密码强度校验（8-20位，包含字母和数字）
// 3. 用户名2-50个字符
// 4. 邮箱唯一性由数据库UNIQUE索引保证
func (s *service) Register(ctx context.Context, email, password, name string) (*User, error) {
	email = normalizeEmail(email)
	if !emailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}

	if err := validatePasswordStrength(password); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n < 2 || n > 50 {
		return nil, ErrInvalidName
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, apperrors.Wrap(err, "密码加密失败")
	}

	user := NewUser(email, string(hashedPassword), name)
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err // Repository已转换为业务错误
	}

	return user, nil
}

// Login 用户登录
// 不区分"邮箱不存在"和"密码错误"，避免暴露已注册邮箱
func (s *service) Login(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, apperrors.Wrap(err, "密码验证失败")
	}

	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validatePasswordStrength 密码强度校验
// 规则：8-20位，必须包含字母和数字
func validatePasswordStrength(password string) error {
	if len(password) < 8 || len(password) > 20 {
		return ErrWeakPassword
	}
	if !hasLetter.MatchString(password) || !hasDigit.MatchString(password) {
		return ErrWeakPassword
	}
	return nil
}
