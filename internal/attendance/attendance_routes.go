package attendance

import (
	"go-absensi/internal/middleware"
	"go-absensi/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RegisterPublicRoutes wires the unauthenticated submission flow.
func RegisterPublicRoutes(r *gin.Engine, h *Handler, rdb *redis.Client) {
	absen := r.Group("/absen")
	{
		absen.GET("", h.ShowForm)
		absen.POST("",
			middleware.RateLimitByIP(rate.Limit(1), 5),
			middleware.Idempotency(rdb),
			h.Submit,
		)
		absen.GET("/success", h.ShowSuccess)
	}
}

// RegisterAdminRoutes wires the authenticated dashboard surface.
func RegisterAdminRoutes(r *gin.Engine, h *Handler, rbacService rbac.Service) {
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	{
		admin.GET("/dashboard", middleware.RBACAuthorize(rbacService, "attendance", "read"), h.Dashboard)
		admin.GET("/stats", middleware.RBACAuthorize(rbacService, "attendance", "read"), h.Stats)
		admin.GET("/attendance/filter", middleware.RBACAuthorize(rbacService, "attendance", "read"), h.Filter)
		admin.GET("/attendance/export", middleware.RBACAuthorize(rbacService, "attendance", "export"), h.Export)
	}

	// historical alias for the admin dashboard
	r.GET("/dashboard",
		middleware.AuthMiddleware(),
		middleware.RBACAuthorize(rbacService, "attendance", "read"),
		h.Dashboard,
	)
}
