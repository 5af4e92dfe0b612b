package dto

// AddBookRequest HTTP添加图书请求
type AddBookRequest struct {
	Title  string `json:"title" binding:"required,max=200" example:"Dune"`
	Author string `json:"author" binding:"required,max=100" example:"Frank Herbert"`
	Genre  string `json:"genre" binding:"required,max=50" example:"Science Fiction"`
}

// PageQuery 分页参数
// 不传时由用例填充默认值；传了就必须合法（page=0同样返回400）
// 使用指针区分"未传"和"传了0"，int的零值会被omitempty跳过校验
type PageQuery struct {
	Page     *int `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize *int `form:"page_size" binding:"omitempty,min=1,max=100" example:"10"`
}

// Values 返回页码和每页数量，未传的参数为0
func (q PageQuery) Values() (page, pageSize int) {
	if q.Page != nil {
		page = *q.Page
	}
	if q.PageSize != nil {
		pageSize = *q.PageSize
	}
	return page, pageSize
}

// ListBooksQuery 图书列表查询参数
type ListBooksQuery struct {
	PageQuery
	Author string `form:"author" binding:"max=100"`
	Genre  string `form:"genre" binding:"max=50"`
}

// SearchBooksQuery 图书搜索参数
// query为空（去空白后）由领域层返回400
type SearchBooksQuery struct {
	PageQuery
	Query string `form:"query" binding:"max=200" example:"dune"`
}

// IDUri 路径中的资源ID
type IDUri struct {
	ID uint `uri:"id" binding:"required,min=1"`
}
