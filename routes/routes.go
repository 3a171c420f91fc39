package routes

import (
	"activity-intake-api/controllers"
	"activity-intake-api/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// Public routes: submission flow and health check.
	router.POST("/enviar_formulario", controllers.SubmitForm)
	router.GET("/confirmacion/:id", controllers.ConfirmForm)
	router.GET("/health", controllers.HealthCheck)
	router.POST("/login", controllers.Login)

	// Administration: record inspection requires a valid admin token.
	admin := router.Group("")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRole(middleware.RoleAdmin))
	{
		admin.GET("/formularios", controllers.ListForms)
		admin.GET("/formulario/:id", controllers.GetForm)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"success": false,
			"message": "Recurso no encontrado",
		})
	})
}
