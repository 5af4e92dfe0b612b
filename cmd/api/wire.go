//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 修改Provider后运行 `wire gen ./cmd/api` 重新生成wire_gen.go

package main

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	appbook "github.com/xiebiao/bookreview/internal/application/book"
	appreview "github.com/xiebiao/bookreview/internal/application/review"
	appuser "github.com/xiebiao/bookreview/internal/application/user"
	"github.com/xiebiao/bookreview/internal/domain/book"
	"github.com/xiebiao/bookreview/internal/domain/review"
	"github.com/xiebiao/bookreview/internal/domain/user"
	"github.com/xiebiao/bookreview/internal/infrastructure/config"
	"github.com/xiebiao/bookreview/internal/infrastructure/persistence/database"
	"github.com/xiebiao/bookreview/internal/infrastructure/persistence/redis"
	apihttp "github.com/xiebiao/bookreview/internal/interface/http"
	"github.com/xiebiao/bookreview/internal/interface/http/handler"
	"github.com/xiebiao/bookreview/internal/interface/http/middleware"
)

// infrastructureSet 基础设施层依赖：数据库、Redis、消息队列
var infrastructureSet = wire.NewSet(
	provideDB,
	provideRedisClient,
	provideBookCache,
	provideEventPublisher,
	provideAuditConsumer,
	redis.NewTokenBlacklist,
	wire.Bind(new(middleware.TokenBlacklist), new(*redis.TokenBlacklist)),
	wire.Bind(new(appuser.TokenRevoker), new(*redis.TokenBlacklist)),
)

// repositorySet 仓储层依赖
var repositorySet = wire.NewSet(
	database.NewUserRepository,
	database.NewBookRepository,
	database.NewReviewRepository,
	database.NewTxManager,
	wire.Bind(new(review.BookChecker), new(book.Repository)),
	wire.Bind(new(review.Transactor), new(*database.TxManager)),
)

// domainSet 领域层依赖
var domainSet = wire.NewSet(
	user.NewService,
	book.NewService,
	review.NewService,
)

// applicationSet 应用层依赖
var applicationSet = wire.NewSet(
	appuser.NewRegisterUseCase,
	appuser.NewLoginUseCase,
	appuser.NewLogoutUseCase,
	appbook.NewAddBookUseCase,
	appbook.NewListBooksUseCase,
	appbook.NewSearchBooksUseCase,
	appbook.NewGetBookDetailUseCase,
	appreview.NewAddReviewUseCase,
	appreview.NewUpdateReviewUseCase,
	appreview.NewDeleteReviewUseCase,
)

// interfaceSet 接口层依赖：JWT、中间件、Handler、路由
var interfaceSet = wire.NewSet(
	provideJWTManager,
	middleware.NewAuthMiddleware,
	handler.NewUserHandler,
	handler.NewBookHandler,
	handler.NewReviewHandler,
	apihttp.NewRouter,
)

// InitializeApp 初始化整个应用
// cleanup按创建的逆序关闭连接（消息队列 → Redis → 数据库）
func InitializeApp(cfg *config.Config, logger *zap.Logger) (*App, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		interfaceSet,
		newApp,
	)
	return nil, nil, nil
}
