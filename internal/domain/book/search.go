package book

import (
	"strings"
)

// 搜索结果匹配等级(数值越小越靠前)
const (
	TierExactTitle  = 0 // 书名与关键词完全相同(不区分大小写)
	TierExactAuthor = 1 // 作者与关键词完全相同
	TierPartial     = 2 // 书名或作者包含关键词
)

// Fold 搜索使用的大小写折叠(完整Unicode)
// 持久化层用它生成检索列,关键词用它规范化,两边规则一致
func Fold(s string) string {
	return strings.ToLower(s)
}

// NormalizeQuery 规范化搜索关键词
// 去除首尾空白并折叠大小写;结果为空返回ErrEmptyQuery
func NormalizeQuery(query string) (string, error) {
	q := Fold(strings.TrimSpace(query))
	if q == "" {
		return "", ErrEmptyQuery
	}
	return q, nil
}

// MatchTier 计算图书相对关键词的匹配等级(query需已规范化)
// 数据库排序使用同样的规则,这里用于给结果标注等级
func MatchTier(query string, b *Book) int {
	switch {
	case Fold(b.Title) == query:
		return TierExactTitle
	case Fold(b.Author) == query:
		return TierExactAuthor
	default:
		return TierPartial
	}
}
