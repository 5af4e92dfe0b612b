package user

import (
	"time"
)

// User 用户实体（聚合根）
// DDD设计说明：
// 1. 密码以bcrypt哈希存储，实体不提供任何获取明文的方法
// 2. 领域实体不依赖GORM tag（Repository负责模型映射）
// 3. Name是评论列表中展示的用户名
type User struct {
	ID        uint
	Email     string
	Password  string // bcrypt哈希值
	Name      string
	CreatedAt time.Time
}

// NewUser 创建新用户（工厂方法）
// hashedPassword必须是bcrypt加密后的密码
func NewUser(email, hashedPassword, name string) *User {
	return &User{
		Email:     email,
		Password:  hashedPassword,
		Name:      name,
		CreatedAt: time.Now(),
	}
}
