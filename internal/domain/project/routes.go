package project

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches the project CRUD surface.
func RegisterRoutes(protected *gin.RouterGroup, handler *Handler) {
	group := protected.Group("/projects")
	{
		group.POST("", handler.Create)
		group.GET("", handler.List)
		group.GET("/:id", handler.Get)
		group.PUT("/:id", handler.Update)
		group.DELETE("/:id", handler.Delete)
		group.GET("/:id/members", handler.ListMembers)
		group.POST("/:id/members", handler.AddMember)
		group.DELETE("/:id/members/:userId", handler.RemoveMember)
	}
}
