package database

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/xiebiao/bookreview/internal/domain/book"
)

// likeEscape LIKE语句的转义字符
// 使用'!'而不是反斜杠,在mysql/postgres/sqlite中含义一致
const likeEscape = "!"

// isDuplicateError 判断是否为唯一索引冲突错误
// - TranslateError开启时统一为gorm.ErrDuplicatedKey
// - MySQL 1062: Duplicate entry 'xxx' for key 'yyy'
// - SQLite: UNIQUE constraint failed: reviews.user_id, reviews.book_id
// - PostgreSQL 23505: duplicate key value violates unique constraint
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

// containsPattern 生成不区分大小写的子串匹配模式(配合 *_folded LIKE ? ESCAPE '!')
// s中的通配符%和_按字面量匹配
func containsPattern(s string) string {
	return "%" + escapeLike(book.Fold(s)) + "%"
}

func escapeLike(s string) string {
	r := strings.NewReplacer(
		likeEscape, likeEscape+likeEscape,
		"%", likeEscape+"%",
		"_", likeEscape+"_",
	)
	return r.Replace(s)
}

// offset 计算分页偏移量
func offset(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}
