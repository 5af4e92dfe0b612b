package book

import (
	"context"
)

// Repository 图书仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 便于Mock测试,不依赖具体数据库实现
type Repository interface {
	// Create 创建图书
	Create(ctx context.Context, book *Book) error

	// FindByID 根据ID查找图书,不存在返回ErrBookNotFound
	FindByID(ctx context.Context, id uint) (*Book, error)

	// Exists 判断图书是否存在(评论写入前的校验,不加载整行)
	Exists(ctx context.Context, id uint) (bool, error)

	// List 分页查询图书列表
	// author/genre为不区分大小写的子串过滤,结果按id升序
	List(ctx context.Context, params ListParams) ([]*Book, int64, error)

	// Search 按关键词搜索并排序
	// 匹配:书名或作者包含关键词(不区分大小写)
	// 排序:书名完全匹配 → 作者完全匹配 → 其他;同级按书名升序、id升序
	// 在完整匹配集上排序后再分页,返回值中的int64为匹配总数
	Search(ctx context.Context, params SearchParams) ([]*Book, int64, error)
}

// ListParams 列表查询参数
type ListParams struct {
	Page     int    // 页码(从1开始)
	PageSize int    // 每页数量
	Author   string // 作者过滤(子串,不区分大小写)
	Genre    string // 分类过滤(子串,不区分大小写)
}

// SearchParams 搜索参数
type SearchParams struct {
	Query    string // 已经NormalizeQuery处理过的关键词(小写、去首尾空白)
	Page     int
	PageSize int
}

// Cache 图书元数据缓存接口
// 图书不可修改,缓存不需要失效逻辑,只需要TTL
type Cache interface {
	// Get 未命中时返回ErrCacheMiss
	Get(ctx context.Context, id uint) (*Book, error)
	Set(ctx context.Context, book *Book) error
}
