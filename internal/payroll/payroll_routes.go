package payroll

import (
	"go-crewpay/internal/middleware"

	"github.com/gin-gonic/gin"

	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, redisClient *redis.Client) {
	periods := r.Group("/payroll-periods")
	periods.Use(middleware.AuthMiddleware())
	{
		periods.GET("", handler.GetByEmployee)
		periods.GET("/:id", handler.GetById)
		periods.POST("",
			middleware.RateLimitByUser(1, 3),
			middleware.RoleMiddleware("admin", "payroll"),
			middleware.Idempotency(redisClient),
			handler.Create,
		)
		periods.PATCH("/:id/status",
			middleware.RateLimitByUser(1, 3),
			middleware.RoleMiddleware("admin", "payroll"),
			middleware.Idempotency(redisClient),
			handler.SetStatus,
		)
		periods.DELETE("/:id",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RoleMiddleware("admin", "payroll"),
			handler.Delete,
		)
	}
}
