package middleware

import (
	"net/http"

	"go-absensi/internal/rbac"

	"github.com/gin-gonic/gin"
)

// RBACService is a local interface so the middleware doesn't pin the
// concrete rbac implementation.
type RBACService interface {
	Enforce(req rbac.EnforceRequest) (bool, error)
}

func RBACAuthorize(service RBACService, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		if role == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
			c.Abort()
			return
		}

		allowed, err := service.Enforce(rbac.EnforceRequest{
			Role:     role,
			Resource: resource,
			Action:   action,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		if !allowed {
			c.JSON(http.StatusForbidden, gin.H{
				"error":    "forbidden",
				"message":  "You do not have permission to access this resource",
				"required": resource + ":" + action,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
