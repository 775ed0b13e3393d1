package app

import (
	"context"
	"time"

	"go-leave/internal/config"
	"go-leave/internal/middleware"
	"go-leave/internal/shared/connection"
	"go-leave/internal/shared/migration"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const ipLimitFactor = 10

// BuildApp connects the infrastructure, applies migrations and registers
// every module on router. The returned func releases the connections.
func BuildApp(router *gin.Engine, cfg *config.Config) (func(context.Context), error) {
	logger := zap.L().Named("app")

	gormDB, err := connection.ConnectGORMWithRetry(cfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	logger.Info("database connection established")

	if cfg.AutoMigrate {
		if err := migration.Up(sqlDB, logger); err != nil {
			sqlDB.Close()
			return nil, err
		}
	}

	rdb, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, cfg.DBMaxRetries)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	logger.Info("redis connection established")

	router.Use(middleware.RequestID())
	// Coarse per-IP ceiling; modules add their own per-user limits.
	router.Use(middleware.RateLimitByIP(rate.Limit(cfg.RateLimitRPS*ipLimitFactor), cfg.RateLimitBurst*ipLimitFactor))
	if len(cfg.CORSAllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSAllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Authorization", "Content-Type", "Idempotency-Key", "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID", "Idempotent-Replayed"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if err := registerModules(router, cfg, sqlDB, gormDB, rdb, logger); err != nil {
		rdb.Close()
		sqlDB.Close()
		return nil, err
	}

	return func(context.Context) {
		if err := rdb.Close(); err != nil {
			logger.Warn("close redis failed", zap.Error(err))
		}
		if err := sqlDB.Close(); err != nil {
			logger.Warn("close database failed", zap.Error(err))
		}
	}, nil
}
