package user

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches the public auth endpoints.
func RegisterRoutes(public *gin.RouterGroup, handler *Handler) {
	auth := public.Group("/auth")
	{
		auth.POST("/register", handler.Register)
		auth.POST("/login", handler.Login)
	}
}

// RegisterProtectedRoutes attaches endpoints that need a valid token.
func RegisterProtectedRoutes(protected *gin.RouterGroup, handler *Handler) {
	protected.GET("/me", handler.Me)
}
