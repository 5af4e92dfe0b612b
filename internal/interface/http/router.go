package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/xiebiao/bookreview/internal/infrastructure/config"
	"github.com/xiebiao/bookreview/internal/interface/http/handler"
	"github.com/xiebiao/bookreview/internal/interface/http/middleware"
	"github.com/xiebiao/bookreview/pkg/response"
)

// NewRouter 创建Gin引擎并注册所有路由
//
// 中间件执行顺序：Recovery → Tracing → 请求日志 → 指标 → CORS → 路由匹配 → Auth（如果有） → Handler
// 请求日志放在Tracing之后，才能从context中取到trace_id
func NewRouter(
	cfg *config.Config,
	log *zap.Logger,
	userHandler *handler.UserHandler,
	bookHandler *handler.BookHandler,
	reviewHandler *handler.ReviewHandler,
	authMiddleware *middleware.AuthMiddleware,
) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(cfg.Server.Name))
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.Server.AllowOrigins))

	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, "pong", gin.H{"status": "healthy"})
	})

	// Prometheus指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger文档：http://localhost:8080/swagger/index.html
	// 生产环境不暴露
	if cfg.Server.Mode != gin.ReleaseMode {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	requireAuth := authMiddleware.RequireAuth()

	v1 := r.Group("/api/v1")
	{
		// 用户模块
		users := v1.Group("/users")
		{
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)
			users.POST("/logout", requireAuth, userHandler.Logout)
		}

		// 图书模块（查询公开，写操作需要登录）
		books := v1.Group("/books")
		{
			books.GET("", bookHandler.ListBooks)
			books.GET("/search", bookHandler.SearchBooks)
			books.GET("/:id", bookHandler.GetBook)
			books.POST("", requireAuth, bookHandler.AddBook)
			books.POST("/:id/reviews", requireAuth, reviewHandler.AddReview)
		}

		// 评论模块（都需要登录）
		reviews := v1.Group("/reviews")
		reviews.Use(requireAuth)
		{
			reviews.PUT("/:id", reviewHandler.UpdateReview)
			reviews.DELETE("/:id", reviewHandler.DeleteReview)
		}
	}

	return r
}
