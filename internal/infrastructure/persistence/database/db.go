package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/xiebiao/bookreview/internal/domain/book"
	"github.com/xiebiao/bookreview/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架，按配置选择mysql/postgres/sqlite驱动
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. SQL日志通过zap输出，开发环境打印全部SQL，生产环境只打印慢查询和错误
// 4. 开启TranslateError，唯一索引冲突统一转换为gorm.ErrDuplicatedKey
func NewDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	dialector, err := openDialector(cfg.Database)
	if err != nil {
		return nil, err
	}

	var gormLog gormlogger.Interface = NewGormLogger(log, cfg.Database.SlowThreshold)
	if cfg.Server.Mode == "debug" {
		gormLog = gormLog.LogMode(gormlogger.Info)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLog,
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}

	// 最大打开连接数（sqlite写入是串行的，建议配置为1）
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	log.Info("数据库连接成功", zap.String("driver", cfg.Database.Driver))

	// 生产环境应使用版本化的迁移脚本
	if cfg.Database.AutoMigrate {
		if err := AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("数据库迁移失败: %w", err)
		}
	}

	return db, nil
}

func openDialector(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverMySQL:
		return mysql.Open(cfg.DSN()), nil
	case config.DriverPostgres:
		return postgres.Open(cfg.DSN()), nil
	case config.DriverSQLite:
		return sqlite.Open(cfg.DSN()), nil
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %s", cfg.Driver)
	}
}

// AutoMigrate 自动迁移表结构
// AutoMigrate只会创建表、添加字段和索引，不会删除或修改现有字段
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&BookModel{},
		&ReviewModel{},
	)
}

// Close 关闭底层连接池
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// UserModel GORM用户模型
// 设计说明：
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. domain/user/entity.go是领域实体，不依赖GORM
// 3. Repository负责两者之间的转换
type UserModel struct {
	ID        uint      `gorm:"primaryKey"`
	Email     string    `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password  string    `gorm:"size:255;not null;comment:密码（bcrypt加密）"`
	Name      string    `gorm:"size:50;not null;comment:用户名"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// BookModel GORM图书模型
// 图书创建后不修改、不删除，因此没有updated_at和软删除字段
type BookModel struct {
	ID        uint      `gorm:"primaryKey"`
	Title     string    `gorm:"index;size:200;not null;comment:书名"`
	Author    string    `gorm:"index;size:100;not null;comment:作者"`
	Genre     string    `gorm:"index;size:50;not null;comment:分类"`
	CreatedBy uint      `gorm:"index;not null;default:0;comment:添加者用户ID"`
	CreatedAt time.Time `gorm:"comment:创建时间"`

	// 检索列:写入时用book.Fold折叠大小写,搜索和过滤只查这些列
	// 不依赖数据库LOWER(),sqlite的LOWER只处理ASCII
	TitleFolded  string `gorm:"index;size:200;not null;default:'';comment:书名(检索)"`
	AuthorFolded string `gorm:"index;size:100;not null;default:'';comment:作者(检索)"`
	GenreFolded  string `gorm:"size:50;not null;default:'';comment:分类(检索)"`
}

// BeforeSave 写入前刷新检索列
func (m *BookModel) BeforeSave(*gorm.DB) error {
	m.TitleFolded = book.Fold(m.Title)
	m.AuthorFolded = book.Fold(m.Author)
	m.GenreFolded = book.Fold(m.Genre)
	return nil
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}

// ReviewModel GORM评论模型
// 设计说明:
// 1. (user_id, book_id)唯一索引保证每个用户对每本书只有一条评论,是并发写入的最终防线
// 2. (book_id, created_at)索引服务于图书详情页"最新评论优先"的分页查询
// 3. 评论物理删除,评分统计只基于现存的行
type ReviewModel struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"uniqueIndex:uniq_review_user_book,priority:1;not null;comment:评论者用户ID"`
	BookID    uint      `gorm:"uniqueIndex:uniq_review_user_book,priority:2;index:idx_review_book_created,priority:1;not null;comment:图书ID"`
	Rating    int       `gorm:"not null;check:chk_review_rating,rating >= 1 AND rating <= 5;comment:评分(1-5)"`
	Comment   string    `gorm:"type:text;not null;comment:评论内容"`
	CreatedAt time.Time `gorm:"index:idx_review_book_created,priority:2;comment:创建时间(编辑时刷新)"`
	UpdatedAt time.Time `gorm:"comment:最后修改时间"`
}

// TableName 指定表名
func (ReviewModel) TableName() string {
	return "reviews"
}
