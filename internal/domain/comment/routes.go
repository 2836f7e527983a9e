package comment

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches the comment CRUD surface.
func RegisterRoutes(protected *gin.RouterGroup, handler *Handler) {
	protected.POST("/tasks/:id/comments", handler.Create)
	protected.GET("/tasks/:id/comments", handler.ListByTask)

	group := protected.Group("/comments")
	{
		group.PUT("/:id", handler.Update)
		group.DELETE("/:id", handler.Delete)
	}
}
