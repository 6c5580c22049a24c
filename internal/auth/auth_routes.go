package auth

import (
	"go-absensi/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, h *Handler) {
	r.POST("/login", h.Login)
	r.POST("/refresh", h.RefreshToken)
	r.POST("/logout", h.Logout)
	r.GET("/me", middleware.AuthMiddleware(), h.Me)
}
