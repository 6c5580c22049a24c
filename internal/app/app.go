package app

import (
	"net/http"
	"os"

	"go-absensi/internal/middleware"
	"go-absensi/internal/shared/connection"
	"go-absensi/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func BuildApp(router *gin.Engine) error {
	// 1. Infrastructure
	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}
	zap.L().Info("database connection established")

	var redisClient *redis.Client
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		redisClient, err = connection.ConnectRedisWithRetry(addr, 5)
		if err != nil {
			return err
		}
		zap.L().Info("redis connection established")
	} else {
		zap.L().Warn("REDIS_ADDR not set, idempotency and stats caching disabled")
	}

	storageRoot := os.Getenv("STORAGE_ROOT")
	if storageRoot == "" {
		storageRoot = "storage"
	}
	store := storage.NewDiskStore(storageRoot)

	// 2. Global middleware and the public file prefix
	router.Use(middleware.RequestID())
	router.Static("/storage", storageRoot)

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}

	router.GET("/healthz", func(c *gin.Context) {
		status := http.StatusOK
		dbHealthy := sqlDB.PingContext(c.Request.Context()) == nil
		redisHealthy := redisClient == nil || redisClient.Ping(c.Request.Context()).Err() == nil
		if !dbHealthy || !redisHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"db": dbHealthy, "redis": redisHealthy})
	})

	// 3. Modules & routes
	return registerModules(router, sqlDB, gormDB, redisClient, store)
}
