package app

import (
	"context"
	"database/sql"
	"os"
	"time"

	"go-absensi/internal/attendance"
	"go-absensi/internal/auth"
	"go-absensi/internal/messaging/kafka"
	"go-absensi/internal/rbac"
	"go-absensi/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	store storage.Store,
) error {
	// --- Repositories ---
	authRepo := auth.NewRepository(gormDB)
	attendanceRepo := attendance.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	rbacService, err := rbac.NewService()
	if err != nil {
		return err
	}

	// --- Services ---
	authService := auth.NewService(authRepo)
	attendanceService := attendance.NewServiceWithOutbox(db, attendanceRepo, store, outboxRepo, rdb)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService)
	attendanceHandler := attendance.NewHandler(attendanceService)

	// --- Routes Registration ---
	auth.RegisterRoutes(router, authHandler)
	attendance.RegisterPublicRoutes(router, attendanceHandler, rdb)
	attendance.RegisterAdminRoutes(router, attendanceHandler, rbacService)

	// --- Seed admin account ---
	if email := os.Getenv("ADMIN_EMAIL"); email != "" {
		name := os.Getenv("ADMIN_NAME")
		if name == "" {
			name = "Admin"
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := authService.EnsureAdmin(ctx, name, email, os.Getenv("ADMIN_PASSWORD")); err != nil {
			return err
		}
		zap.L().Info("admin account ensured", zap.String("email", email))
	}

	return nil
}
