package batch

import (
	"go-crewpay/internal/middleware"

	"github.com/gin-gonic/gin"

	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, redisClient *redis.Client) {
	batches := r.Group("/payroll-batches")
	batches.Use(middleware.AuthMiddleware())
	{
		batches.GET("", handler.GetAll)
		batches.GET("/history", handler.History)
		batches.GET("/:id", handler.GetById)
		batches.POST("",
			middleware.RateLimitByUser(1, 3),
			middleware.RoleMiddleware("admin", "payroll"),
			middleware.Idempotency(redisClient),
			handler.Create,
		)
		batches.PUT("/:id",
			middleware.RateLimitByUser(1, 3),
			middleware.RoleMiddleware("admin", "payroll"),
			handler.Update,
		)
		batches.DELETE("/:id",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RoleMiddleware("admin", "payroll"),
			handler.Delete,
		)
	}
}
