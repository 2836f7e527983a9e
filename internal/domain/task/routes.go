package task

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches the task CRUD surface.
func RegisterRoutes(protected *gin.RouterGroup, handler *Handler) {
	protected.POST("/projects/:id/tasks", handler.Create)
	protected.GET("/projects/:id/tasks", handler.ListByProject)

	group := protected.Group("/tasks")
	{
		group.GET("/:id", handler.Get)
		group.PUT("/:id", handler.Update)
		group.DELETE("/:id", handler.Delete)
	}
}
