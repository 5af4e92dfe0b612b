package database

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/bookreview/internal/domain/user"
	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

// userRepository 用户仓储实现
// 设计说明：
// 1. 实现domain/user/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. 处理数据库特定的错误（如邮箱重复），转换为业务错误
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储
// 注意：返回的是domain层的接口类型，不是具体类型（依赖倒置）
func NewUserRepository(db *gorm.DB) user.Repository {
	return &userRepository{db: db}
}

// Create 创建用户
// 邮箱唯一性由数据库UNIQUE索引保证（而非应用层SELECT再INSERT）
func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	model := &UserModel{
		Email:     u.Email,
		Password:  u.Password,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}

	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return user.ErrEmailDuplicate
		}
		return apperrors.Wrap(err, "创建用户失败")
	}

	u.ID = model.ID
	u.CreatedAt = model.CreatedAt
	return nil
}

// FindByID 根据ID查找用户
func (r *userRepository) FindByID(ctx context.Context, id uint) (*user.User, error) {
	var model UserModel
	if err := getDB(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "查询用户失败")
	}
	return toUserEntity(&model), nil
}

// FindByEmail 根据邮箱查找用户
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var model UserModel
	if err := getDB(ctx, r.db).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "查询用户失败")
	}
	return toUserEntity(&model), nil
}

// toUserEntity GORM模型 → 领域实体
func toUserEntity(m *UserModel) *user.User {
	return &user.User{
		ID:        m.ID,
		Email:     m.Email,
		Password:  m.Password,
		Name:      m.Name,
		CreatedAt: m.CreatedAt,
	}
}
