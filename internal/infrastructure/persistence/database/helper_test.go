package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/xiebiao/bookreview/internal/domain/book"
	"github.com/xiebiao/bookreview/internal/domain/user"
)

// newTestDB 创建基于临时文件的sqlite数据库
// 单连接:sqlite的写事务是库级别的,测试中由连接池串行化并发事务
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "bookreview_test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, AutoMigrate(db))
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email, name string) *user.User {
	t.Helper()
	u := user.NewUser(email, "hashed", name)
	require.NoError(t, NewUserRepository(db).Create(context.Background(), u))
	return u
}

func seedBook(t *testing.T, db *gorm.DB, title, author, genre string) *book.Book {
	t.Helper()
	b, err := book.NewBook(title, author, genre, 1)
	require.NoError(t, err)
	require.NoError(t, NewBookRepository(db).Create(context.Background(), b))
	return b
}

// at 生成递增的测试时间
func at(minute int) time.Time {
	return time.Date(2026, 5, 1, 10, minute, 0, 0, time.UTC)
}
