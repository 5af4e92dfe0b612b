package dto

// RegisterRequest HTTP层注册请求
// 说明：HTTP层的DTO，包含参数验证tag；密码强度等业务规则由领域服务校验
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email" example:"alice@example.com"`
	Password string `json:"password" binding:"required,min=8,max=20" example:"passw0rd1"`
	Name     string `json:"name" binding:"required,min=2,max=50" example:"Alice"`
}

// LoginRequest HTTP层登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"alice@example.com"`
	Password string `json:"password" binding:"required" example:"passw0rd1"`
}
