package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS 跨域中间件
// origins为空或包含"*"时允许任意来源（此时不允许携带Cookie）
func CORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type", headerRequestID},
		ExposeHeaders: []string{headerRequestID},
		MaxAge:        12 * time.Hour,
	}

	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cors.New(cfg)
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cors.New(cfg)
		}
	}

	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cors.New(cfg)
}
