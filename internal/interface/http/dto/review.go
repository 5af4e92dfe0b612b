package dto

// ReviewRequest 发表/修改评论请求
// rating使用指针区分"未传"和"传了0"，范围校验由领域层完成（返回具体错误码）
type ReviewRequest struct {
	Rating  *int   `json:"rating" binding:"required" example:"5"`
	Comment string `json:"comment" binding:"max=2000" example:"A masterpiece of world-building."`
}
