package app

import (
	"database/sql"

	"go-leave/internal/audit"
	"go-leave/internal/authz"
	"go-leave/internal/calendar"
	"go-leave/internal/config"
	"go-leave/internal/employee"
	"go-leave/internal/leave"
	"go-leave/internal/ledger"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/rbac"
	"go-leave/internal/rbac/infra"
	"go-leave/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	cfg *config.Config,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	logger *zap.Logger,
) error {
	// --- Repositories ---
	auditRepo := audit.NewRepository(gormDB)
	calendarRepo := calendar.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	ledgerRepo := ledger.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)
	userRepo := user.NewRepository(gormDB)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(enforcer, logger)
	if err := rbacService.LoadPolicy(); err != nil {
		return err
	}

	// --- Services ---
	calendarService := calendar.NewService(calendarRepo, rdb, cfg.HolidayCacheTTL, logger)
	employeeService := employee.NewService(employeeRepo, logger)
	userService := user.NewService(userRepo, logger)
	leaveService := leave.NewService(leave.Dependencies{
		DB:        db,
		Repo:      leaveRepo,
		Ledger:    ledgerRepo,
		Employees: employeeRepo,
		Audit:     auditRepo,
		Outbox:    outboxRepo,
		Calendar:  calendarService,
		Actors:    userService,
		Policy:    authz.NewPolicy(),
	}, leave.Config{
		AnnualLeaveTypeName: cfg.AnnualLeaveTypeName,
		Location:            cfg.Location,
		MaxSpanDays:         cfg.MaxLeaveSpanDays,
	}, logger)

	// --- Handlers ---
	employeeHandler := employee.NewHandler(employeeService, logger)
	leaveHandler := leave.NewHandler(leaveService, logger)
	rbacHandler := rbac.NewHandler(rbacService)
	userHandler := user.NewHandler(userService, logger)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		employee.RegisterRoutes(api, employeeHandler, rbacService, userService, cfg.JWTSecret, logger)
		leave.RegisterRoutes(api, leaveHandler, rbacService, rdb, leave.RouteConfig{
			JWTSecret: cfg.JWTSecret,
			Actors:    userService,
			RateLimit: rate.Limit(cfg.RateLimitRPS),
			RateBurst: cfg.RateLimitBurst,
		}, logger)
		user.RegisterRoutes(api, userHandler, cfg.JWTSecret, logger)
		rbac.RegisterRoutes(api, rbacHandler, cfg.JWTSecret)
	}

	return nil
}
