package notification

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches the notification REST surface.
func RegisterRoutes(protected *gin.RouterGroup, handler *Handler) {
	group := protected.Group("/notifications")
	{
		group.GET("", handler.List)
		group.POST("", handler.Create)
		group.PUT("", handler.Update)
		group.DELETE("", handler.Delete)
		group.GET("/unread-count", handler.UnreadCount)
		group.POST("/read-all", handler.MarkAllRead)
	}
}
