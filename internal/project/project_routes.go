package project

import (
	"go-crewpay/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	projects := r.Group("/projects")
	projects.Use(middleware.AuthMiddleware())
	{
		projects.GET("", handler.GetAll)
		projects.GET("/:id", handler.GetById)
		projects.GET("/:id/costs", handler.GetCosts)
		projects.POST("", middleware.RoleMiddleware("admin"), handler.Create)
	}
}
