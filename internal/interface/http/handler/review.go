package handler

import (
	"github.com/gin-gonic/gin"

	appreview "github.com/xiebiao/bookreview/internal/application/review"
	"github.com/xiebiao/bookreview/internal/interface/http/dto"
	"github.com/xiebiao/bookreview/internal/interface/http/middleware"
	"github.com/xiebiao/bookreview/pkg/response"
)

// ReviewHandler 评论HTTP处理器
type ReviewHandler struct {
	addReviewUseCase    *appreview.AddReviewUseCase
	updateReviewUseCase *appreview.UpdateReviewUseCase
	deleteReviewUseCase *appreview.DeleteReviewUseCase
}

// NewReviewHandler 创建评论处理器
func NewReviewHandler(
	addReviewUseCase *appreview.AddReviewUseCase,
	updateReviewUseCase *appreview.UpdateReviewUseCase,
	deleteReviewUseCase *appreview.DeleteReviewUseCase,
) *ReviewHandler {
	return &ReviewHandler{
		addReviewUseCase:    addReviewUseCase,
		updateReviewUseCase: updateReviewUseCase,
		deleteReviewUseCase: deleteReviewUseCase,
	}
}

// AddReview 发表评论
// @Summary      发表评论
// @Description  每个用户对每本书只能评论一次，重复评论请修改已有评论
// @Tags         评论
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int               true "图书ID"
// @Param        request body dto.ReviewRequest true "评分和内容"
// @Success      201 {object} response.Response{data=appreview.ReviewResponse}
// @Failure      400 {object} response.Response "评分或内容不合法"
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "图书不存在"
// @Failure      409 {object} response.Response "已评论过该图书"
// @Router       /api/v1/books/{id}/reviews [post]
func (h *ReviewHandler) AddReview(c *gin.Context) {
	var uri dto.IDUri
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, bindError(err))
		return
	}
	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	result, err := h.addReviewUseCase.Execute(c.Request.Context(), appreview.AddReviewRequest{
		BookID:  uri.ID,
		UserID:  middleware.MustGetUserID(c),
		Rating:  *req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "评论成功", result)
}

// UpdateReview 修改评论
// @Summary      修改评论
// @Description  只有作者本人可以修改；修改后评论排到最前
// @Tags         评论
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int               true "评论ID"
// @Param        request body dto.ReviewRequest true "评分和内容"
// @Success      200 {object} response.Response{data=appreview.ReviewResponse}
// @Failure      400 {object} response.Response "评分或内容不合法"
// @Failure      401 {object} response.Response "未登录"
// @Failure      403 {object} response.Response "不是评论作者"
// @Failure      404 {object} response.Response "评论不存在"
// @Router       /api/v1/reviews/{id} [put]
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	var uri dto.IDUri
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, bindError(err))
		return
	}
	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	result, err := h.updateReviewUseCase.Execute(c.Request.Context(), appreview.UpdateReviewRequest{
		ReviewID: uri.ID,
		UserID:   middleware.MustGetUserID(c),
		Rating:   *req.Rating,
		Comment:  req.Comment,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "修改成功", result)
}

// DeleteReview 删除评论
// @Summary      删除评论
// @Description  只有作者本人可以删除
// @Tags         评论
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "评论ID"
// @Success      200 {object} response.Response "删除成功"
// @Failure      401 {object} response.Response "未登录"
// @Failure      403 {object} response.Response "不是评论作者"
// @Failure      404 {object} response.Response "评论不存在"
// @Router       /api/v1/reviews/{id} [delete]
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	var uri dto.IDUri
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, bindError(err))
		return
	}

	err := h.deleteReviewUseCase.Execute(c.Request.Context(), appreview.DeleteReviewRequest{
		ReviewID: uri.ID,
		UserID:   middleware.MustGetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "删除成功", nil)
}
