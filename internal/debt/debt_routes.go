package debt

import (
	"go-crewpay/internal/middleware"

	"github.com/gin-gonic/gin"

	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, redisClient *redis.Client) {
	debts := r.Group("/debts")
	debts.Use(middleware.AuthMiddleware())
	{
		debts.GET("", handler.List)
		debts.GET("/:id", handler.GetById)
		debts.POST("",
			middleware.RateLimitByUser(1, 3),
			middleware.RoleMiddleware("admin", "payroll"),
			middleware.Idempotency(redisClient),
			handler.Create,
		)
		debts.POST("/:id/settlements",
			middleware.RateLimitByUser(1, 3),
			middleware.RoleMiddleware("admin", "payroll"),
			middleware.Idempotency(redisClient),
			handler.Settle,
		)
	}
}
