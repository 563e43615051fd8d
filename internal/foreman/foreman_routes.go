package foreman

import (
	"go-crewpay/internal/middleware"

	"github.com/gin-gonic/gin"

	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, redisClient *redis.Client) {
	ledgers := r.Group("/foreman-ledgers")
	ledgers.Use(middleware.AuthMiddleware())
	{
		ledgers.GET("", handler.GetAll)
		ledgers.GET("/:id", handler.GetById)
		ledgers.POST("",
			middleware.RateLimitByUser(1, 3),
			middleware.RoleMiddleware("admin", "payroll"),
			middleware.Idempotency(redisClient),
			handler.Assign,
		)
		ledgers.DELETE("/:id",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RoleMiddleware("admin"),
			handler.Unassign,
		)

		ledgers.POST("/:id/cash-advances",
			middleware.RateLimitByUser(1, 3),
			middleware.RoleMiddleware("admin", "payroll"),
			middleware.Idempotency(redisClient),
			handler.AddCashAdvance,
		)
		ledgers.DELETE("/:id/cash-advances/:entryId",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RoleMiddleware("admin", "payroll"),
			handler.DeleteCashAdvance,
		)
		ledgers.POST("/:id/invoice-lines",
			middleware.RateLimitByUser(1, 3),
			middleware.RoleMiddleware("admin", "payroll"),
			middleware.Idempotency(redisClient),
			handler.AddInvoiceLine,
		)
		ledgers.DELETE("/:id/invoice-lines/:entryId",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RoleMiddleware("admin", "payroll"),
			handler.DeleteInvoiceLine,
		)
	}
}
