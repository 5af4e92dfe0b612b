package handler

import (
	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/bookreview/internal/application/book"
	"github.com/xiebiao/bookreview/internal/interface/http/dto"
	"github.com/xiebiao/bookreview/internal/interface/http/middleware"
	"github.com/xiebiao/bookreview/pkg/response"
)

// BookHandler 图书HTTP处理器
type BookHandler struct {
	addBookUseCase       *appbook.AddBookUseCase
	listBooksUseCase     *appbook.ListBooksUseCase
	searchBooksUseCase   *appbook.SearchBooksUseCase
	getBookDetailUseCase *appbook.GetBookDetailUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	addBookUseCase *appbook.AddBookUseCase,
	listBooksUseCase *appbook.ListBooksUseCase,
	searchBooksUseCase *appbook.SearchBooksUseCase,
	getBookDetailUseCase *appbook.GetBookDetailUseCase,
) *BookHandler {
	return &BookHandler{
		addBookUseCase:       addBookUseCase,
		listBooksUseCase:     listBooksUseCase,
		searchBooksUseCase:   searchBooksUseCase,
		getBookDetailUseCase: getBookDetailUseCase,
	}
}

// AddBook 添加图书
// @Summary      添加图书
// @Description  登录用户向目录中添加图书
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.AddBookRequest true "图书信息"
// @Success      201 {object} response.Response{data=appbook.BookItem}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/books [post]
func (h *BookHandler) AddBook(c *gin.Context) {
	var req dto.AddBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	result, err := h.addBookUseCase.Execute(c.Request.Context(), appbook.AddBookRequest{
		Title:     req.Title,
		Author:    req.Author,
		Genre:     req.Genre,
		CreatedBy: middleware.MustGetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "添加成功", result)
}

// ListBooks 图书列表
// @Summary      图书列表
// @Description  按id升序分页查询，可按作者、分类过滤（不区分大小写）
// @Tags         图书
// @Produce      json
// @Param        author    query string false "作者（子串）"
// @Param        genre     query string false "分类（子串）"
// @Param        page      query int    false "页码" default(1)
// @Param        page_size query int    false "每页数量" default(10) maximum(100)
// @Success      200 {object} response.Response{data=[]appbook.BookItem}
// @Failure      400 {object} response.Response "参数错误"
// @Router       /api/v1/books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	var q dto.ListBooksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err))
		return
	}

	page, pageSize := q.Values()
	result, err := h.listBooksUseCase.Execute(c.Request.Context(), appbook.ListBooksRequest{
		Page:     page,
		PageSize: pageSize,
		Author:   q.Author,
		Genre:    q.Genre,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPage(c, "查询成功", result.List,
		response.NewPagination(result.Total, result.Page, result.PageSize))
}

// SearchBooks 搜索图书
// @Summary      搜索图书
// @Description  书名或作者包含关键词（不区分大小写）；书名完全匹配优先，其次作者完全匹配，再按书名排序
// @Tags         图书
// @Produce      json
// @Param        query     query string true  "关键词"
// @Param        page      query int    false "页码" default(1)
// @Param        page_size query int    false "每页数量" default(10) maximum(100)
// @Success      200 {object} response.Response{data=[]appbook.SearchItem}
// @Failure      400 {object} response.Response "关键词为空"
// @Router       /api/v1/books/search [get]
func (h *BookHandler) SearchBooks(c *gin.Context) {
	var q dto.SearchBooksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err))
		return
	}

	page, pageSize := q.Values()
	result, err := h.searchBooksUseCase.Execute(c.Request.Context(), appbook.SearchBooksRequest{
		Query:    q.Query,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPage(c, "搜索成功", result.List,
		response.NewPagination(result.Total, result.Page, result.PageSize))
}

// GetBook 图书详情
// @Summary      图书详情
// @Description  图书信息、实时评分统计和一页评论（最新优先）
// @Tags         图书
// @Produce      json
// @Param        id        path  int true  "图书ID"
// @Param        page      query int false "评论页码" default(1)
// @Param        page_size query int false "评论每页数量" default(5) maximum(100)
// @Success      200 {object} response.Response{data=appbook.BookDetailResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	var uri dto.IDUri
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, bindError(err))
		return
	}
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err))
		return
	}

	page, pageSize := q.Values()
	result, err := h.getBookDetailUseCase.Execute(c.Request.Context(), appbook.GetBookDetailRequest{
		BookID:   uri.ID,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPage(c, "查询成功", result,
		response.NewPagination(result.Total, result.Page, result.PageSize))
}
